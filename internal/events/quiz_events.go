package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mnemos/quiz-service/internal/models"
)

// EventType represents different types of quiz events
type EventType string

const (
	// Session events
	EventSessionCompleted EventType = "quiz.session_completed"

	// Attempt events
	EventAttemptRecorded EventType = "quiz.attempt_recorded"
)

// QuizEvent is the base event structure for all quiz events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionCompletedEvent struct {
	SessionID     string    `json:"session_id"`
	Day           string    `json:"day"`
	QuestionCount int       `json:"question_count"`
	TimerEnabled  bool      `json:"timer_enabled"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Attempt event payloads

type AttemptRecordedEvent struct {
	SessionID       string `json:"session_id"`
	QuestionID      uint   `json:"question_id"`
	Day             string `json:"day"`
	AttemptCount    int    `json:"attempt_count"`
	TimeTaken       *int   `json:"time_taken,omitempty"`        // seconds
	FirstGuessScore *int   `json:"first_guess_score,omitempty"` // 0-100
	OverallScore    *int   `json:"overall_score,omitempty"`     // 0-100
}

// Event factory functions

func NewSessionCompletedEvent(sessionID, day string, questionCount int, timerEnabled bool, completedAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        generateEventID(),
		Type:      EventSessionCompleted,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: SessionCompletedEvent{
			SessionID:     sessionID,
			Day:           day,
			QuestionCount: questionCount,
			TimerEnabled:  timerEnabled,
			CompletedAt:   completedAt,
		},
	}
}

func NewAttemptRecordedEvent(sessionID string, record *models.AttemptRecord) *QuizEvent {
	return &QuizEvent{
		ID:        generateEventID(),
		Type:      EventAttemptRecorded,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: AttemptRecordedEvent{
			SessionID:       sessionID,
			QuestionID:      record.QuestionID,
			Day:             record.Day,
			AttemptCount:    record.AttemptCount,
			TimeTaken:       record.TimeTaken,
			FirstGuessScore: record.FirstGuessScore,
			OverallScore:    record.OverallScore,
		},
	}
}

// Helper function to generate unique event IDs
func generateEventID() string {
	return uuid.NewString()
}

// GenerateEventID is the exported version for external use
func GenerateEventID() string {
	return generateEventID()
}
