package models

import "time"

type SessionPhase string

const (
	PhaseSettings SessionPhase = "settings"
	PhaseQuestion SessionPhase = "question"
	PhaseProof    SessionPhase = "proof"
	PhaseComplete SessionPhase = "complete"
)

// Limits carried over from the original settings form.
const (
	MinMCQTimeLimit         = 5
	MaxMCQTimeLimit         = 300
	MinShortAnswerTimeLimit = 10
	MaxShortAnswerTimeLimit = 600
)

// SessionConfig is confirmed once before a session starts and is frozen for
// the session's lifetime.
type SessionConfig struct {
	EnableTimer          bool      `json:"enable_timer"`
	MCQTimeLimit         int       `json:"mcq_time_limit"`          // seconds, only checked when the timer is on
	ShortAnswerTimeLimit int       `json:"short_answer_time_limit"` // seconds, only checked when the timer is on
	UnlimitedMCQAttempts bool      `json:"unlimited_mcq_attempts"`
	TestDate             time.Time `json:"test_date"`
	Age                  int       `json:"age" validate:"min=1,max=120"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		EnableTimer:          false,
		MCQTimeLimit:         10,
		ShortAnswerTimeLimit: 30,
		UnlimitedMCQAttempts: true,
		TestDate:             time.Now(),
		Age:                  1,
	}
}

// TimeLimitFor returns the per-type limit in seconds.
func (c SessionConfig) TimeLimitFor(qt QuestionType) int {
	if qt == MultipleChoice {
		return c.MCQTimeLimit
	}
	return c.ShortAnswerTimeLimit
}

// AttemptLimitFor resolves the effective attempt limit for a question type.
// Short answers always get a single graded submission; MCQs get two attempts
// unless the config allows unlimited ones.
func (c SessionConfig) AttemptLimitFor(qt QuestionType) AttemptLimit {
	if qt == ShortAnswer {
		return LimitedAttempts(1)
	}
	if c.UnlimitedMCQAttempts {
		return UnlimitedAttempts()
	}
	return LimitedAttempts(2)
}

// Day formats the configured test date the way attempt records store it.
func (c SessionConfig) Day() string {
	date := c.TestDate
	if date.IsZero() {
		date = time.Now()
	}
	return date.Format("2006-01-02")
}
