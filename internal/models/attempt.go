package models

import "time"

// AnswerNone is the sentinel recorded when a timed question expires before
// the user answers. It is stored instead of an absent row so the recorder
// can tell "never answered" apart from "answer lost".
const AnswerNone = "NO_ANSWER"

// AttemptState is the engine's mutable bookkeeping for one question.
type AttemptState struct {
	QuestionID    uint   `json:"question_id"`
	AttemptsUsed  int    `json:"attempts_used"`
	CurrentAnswer string `json:"current_answer"`

	// IsCorrect is set for multiple choice only; nil until graded.
	IsCorrect *bool `json:"is_correct,omitempty"`

	// Score in [0,1] is set for short answers only; nil until graded or
	// when grading failed.
	Score *float64 `json:"score,omitempty"`

	Submitted bool `json:"submitted"`

	// FirstAttemptCorrect is set once on the first graded attempt and never
	// overwritten afterwards.
	FirstAttemptCorrect *bool `json:"first_attempt_correct,omitempty"`

	ElapsedSeconds int `json:"elapsed_seconds"`
}

// HasAnswer reports whether a real answer (not the expiry sentinel) was
// recorded.
func (s *AttemptState) HasAnswer() bool {
	return s.CurrentAnswer != "" && s.CurrentAnswer != AnswerNone
}

// MarkFirstAttempt records the outcome of the first graded attempt. Later
// calls are no-ops.
func (s *AttemptState) MarkFirstAttempt(correct bool) {
	if s.FirstAttemptCorrect != nil {
		return
	}
	s.FirstAttemptCorrect = &correct
}

// AttemptRecord is the persisted outcome of one question in a finished
// session. Scores are on the 0-100 integer scale; nil means the value is
// absent (untimed question, or grading failed).
type AttemptRecord struct {
	ID         uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Day        string `json:"day" gorm:"not null;size:10;index"` // YYYY-MM-DD

	AttemptCount    int  `json:"attempt_count" gorm:"not null" validate:"min=1"`
	TimeTaken       *int `json:"time_taken"` // seconds; nil when the timer was disabled
	FirstGuessScore *int `json:"first_guess_score"`
	OverallScore    *int `json:"overall_score"`

	CreatedAt time.Time `json:"created_at"`
}

func (AttemptRecord) TableName() string {
	return "quiz_attempts"
}
