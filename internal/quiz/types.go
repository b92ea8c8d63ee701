package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/utils"
)

// Config holds tunables for the session engine.
type Config struct {
	// AutoAdvanceDelay is the grace period between an MCQ attempt that ends
	// the question (correct, or attempts exhausted) and the transition to
	// the proof phase, so the correctness feedback is visible first.
	AutoAdvanceDelay time.Duration

	// EventBuffer sizes the engine's event queue.
	EventBuffer int
}

func DefaultConfig() *Config {
	return &Config{
		AutoAdvanceDelay: 500 * time.Millisecond,
		EventBuffer:      64,
	}
}

// QuestionSource supplies the ordered question set at session start.
type QuestionSource interface {
	FetchQuestions(ctx context.Context) ([]models.Question, error)
}

// FreeTextScorer grades a short answer against its reference text and
// returns a score in [0,1]. Calls may fail with transport errors.
type FreeTextScorer interface {
	Score(ctx context.Context, userAnswer, referenceAnswer string) (float64, error)
}

// AttemptSink receives one record per question once a session completes.
// Submissions are independent; a failure on one record must not block the
// others.
type AttemptSink interface {
	SaveAttempt(ctx context.Context, record *models.AttemptRecord) error
}

// Dependencies wires the engine to its external collaborators.
type Dependencies struct {
	Questions QuestionSource
	Scorer    FreeTextScorer
	Sink      AttemptSink
	Logger    utils.Logger
}

// ===== ENGINE ERRORS =====

var (
	ErrSessionNotStarted  = errors.New("session has not started")
	ErrSessionCompleted   = errors.New("session already completed")
	ErrSessionAbandoned   = errors.New("session was abandoned")
	ErrNoQuestions        = errors.New("question set is empty")
	ErrInvalidPhase       = errors.New("event not valid in current phase")
	ErrQuestionNotActive  = errors.New("question is not the active one")
	ErrAttemptsExhausted  = errors.New("no attempts remaining")
	ErrAlreadyCorrect     = errors.New("question already answered correctly")
	ErrSubmitPending      = errors.New("a proof transition is already scheduled")
	ErrGradingInFlight    = errors.New("grading call is still outstanding")
	ErrMissingScoreInput  = errors.New("scorer input is missing or empty")
	ErrConfigFrozen       = errors.New("session config is frozen after start")
	ErrQuestionLoadFailed = errors.New("failed to load question set")
)
