package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "mcq"
	ShortAnswer    QuestionType = "short"
)

// AttemptLimit is an explicit Limited(n) | Unlimited choice. A zero value is
// Limited(0) and is never produced by the constructors; unlimited is tracked
// with its own flag instead of a numeric infinity.
type AttemptLimit struct {
	max       int
	unlimited bool
}

func LimitedAttempts(n int) AttemptLimit {
	return AttemptLimit{max: n}
}

func UnlimitedAttempts() AttemptLimit {
	return AttemptLimit{unlimited: true}
}

func (l AttemptLimit) IsUnlimited() bool {
	return l.unlimited
}

// Max returns the attempt cap and whether one exists.
func (l AttemptLimit) Max() (int, bool) {
	if l.unlimited {
		return 0, false
	}
	return l.max, true
}

// Exhausted reports whether used attempts have reached the cap.
// An unlimited limit is never exhausted.
func (l AttemptLimit) Exhausted(used int) bool {
	if l.unlimited {
		return false
	}
	return used >= l.max
}

func (l AttemptLimit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.max)
}

type Question struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Type         QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`
	Prompt       string       `json:"prompt" gorm:"not null;type:text" validate:"required,min=1"`
	HasTimeLimit bool         `json:"has_time_limit" gorm:"default:false"`

	// MaxAttempts is the stored default; nil means unlimited. The session
	// config may override it when a session starts.
	MaxAttempts *int `json:"max_attempts" validate:"omitempty,min=1"`

	// Content holds the variant-specific payload (MultipleChoiceContent or
	// ShortAnswerContent) as JSONB.
	Content datatypes.JSON `json:"content" gorm:"type:jsonb;not null"`

	// ProofLocation points at the supporting material shown in the proof
	// phase (e.g. a video timestamp reference).
	ProofLocation string `json:"proof_location" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// MultipleChoiceContent is the payload for MultipleChoice questions.
type MultipleChoiceContent struct {
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// ShortAnswerContent is the payload for ShortAnswer questions. The sample
// answer is the reference text handed to the external scorer.
type ShortAnswerContent struct {
	SampleAnswer string `json:"sample_answer"`
	MinLength    int    `json:"min_length"` // 0 means no lower bound
	MaxLength    int    `json:"max_length"` // 0 means no upper bound
}

// AttemptLimit resolves the stored default into the tagged choice.
func (q *Question) AttemptLimit() AttemptLimit {
	if q.MaxAttempts == nil {
		return UnlimitedAttempts()
	}
	return LimitedAttempts(*q.MaxAttempts)
}

// MultipleChoiceContent decodes the variant payload for an MCQ question.
func (q *Question) MultipleChoiceContent() (*MultipleChoiceContent, error) {
	if q.Type != MultipleChoice {
		return nil, fmt.Errorf("question %d is %s, not %s", q.ID, q.Type, MultipleChoice)
	}
	var content MultipleChoiceContent
	if err := json.Unmarshal(q.Content, &content); err != nil {
		return nil, fmt.Errorf("invalid multiple choice content for question %d: %w", q.ID, err)
	}
	return &content, nil
}

// ShortAnswerContent decodes the variant payload for a short answer question.
func (q *Question) ShortAnswerContent() (*ShortAnswerContent, error) {
	if q.Type != ShortAnswer {
		return nil, fmt.Errorf("question %d is %s, not %s", q.ID, q.Type, ShortAnswer)
	}
	var content ShortAnswerContent
	if err := json.Unmarshal(q.Content, &content); err != nil {
		return nil, fmt.Errorf("invalid short answer content for question %d: %w", q.ID, err)
	}
	return &content, nil
}

// SetContent marshals a variant payload into the Content column.
func (q *Question) SetContent(content interface{}) error {
	bytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal question content: %w", err)
	}
	q.Content = bytes
	return nil
}
