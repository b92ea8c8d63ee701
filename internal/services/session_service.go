package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mnemos/quiz-service/internal/events"
	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/quiz"
	"github.com/mnemos/quiz-service/internal/repositories"
	"github.com/mnemos/quiz-service/internal/utils"
	"github.com/mnemos/quiz-service/internal/validator"
)

// completedSessionRetention is how long a finished session stays addressable
// so clients can still fetch its final state.
const completedSessionRetention = 10 * time.Minute

// SessionService owns the registry of live quiz sessions. Each session wraps
// one engine; the service wires engines to the question source, the scorer
// and the attempt sink, and evicts them once they finish.
type SessionService struct {
	questions quiz.QuestionSource
	scorer    quiz.FreeTextScorer
	attempts  repositories.AttemptRepository
	publisher events.EventPublisher
	validator *validator.Validator
	logger    utils.Logger
	engineCfg *quiz.Config

	mu       sync.RWMutex
	sessions map[string]*quiz.Engine
}

func NewSessionService(
	questions quiz.QuestionSource,
	scorer quiz.FreeTextScorer,
	attempts repositories.AttemptRepository,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger utils.Logger,
) *SessionService {
	return &SessionService{
		questions: questions,
		scorer:    scorer,
		attempts:  attempts,
		publisher: publisher,
		validator: v,
		logger:    logger,
		engineCfg: quiz.DefaultConfig(),
		sessions:  make(map[string]*quiz.Engine),
	}
}

// CreateSession validates the settings, starts a new engine and registers it.
func (s *SessionService) CreateSession(ctx context.Context, config models.SessionConfig) (quiz.StateView, error) {
	if err := s.validator.Validate(&config); err != nil {
		return quiz.StateView{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	id := uuid.NewString()
	engine := quiz.NewEngine(id, s.engineCfg, &quiz.Dependencies{
		Questions: s.questions,
		Scorer:    s.scorer,
		Sink:      newRecordSink(id, s.attempts, s.publisher, s.logger),
		Logger:    s.logger,
	})

	if err := engine.Start(ctx, config); err != nil {
		return quiz.StateView{}, err
	}

	s.mu.Lock()
	s.sessions[id] = engine
	s.mu.Unlock()

	go s.watch(engine, config)

	return engine.Snapshot()
}

// GetSession returns the current view of a live session.
func (s *SessionService) GetSession(id string) (quiz.StateView, error) {
	engine, err := s.engine(id)
	if err != nil {
		return quiz.StateView{}, err
	}
	return engine.Snapshot()
}

// Answer stores an answer update for the active question.
func (s *SessionService) Answer(id string, questionID uint, text string) (quiz.StateView, error) {
	return s.apply(id, func(engine *quiz.Engine) error {
		return engine.Answer(questionID, text)
	})
}

// CheckAnswer grades the stored multiple choice answer as one attempt.
func (s *SessionService) CheckAnswer(id string, questionID uint) (quiz.StateView, error) {
	return s.apply(id, func(engine *quiz.Engine) error {
		return engine.CheckAnswer(questionID)
	})
}

// Submit finishes the active question and moves toward the proof phase.
func (s *SessionService) Submit(id string, questionID uint) (quiz.StateView, error) {
	return s.apply(id, func(engine *quiz.Engine) error {
		return engine.Submit(questionID)
	})
}

// Next advances past the proof phase.
func (s *SessionService) Next(id string) (quiz.StateView, error) {
	return s.apply(id, func(engine *quiz.Engine) error {
		return engine.Next()
	})
}

// AbandonSession closes a session and removes it from the registry. Attempt
// records are only written for completed sessions, so abandoning discards
// progress.
func (s *SessionService) AbandonSession(id string) error {
	s.mu.Lock()
	engine, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	engine.Close()
	s.logger.Info("session abandoned", "session_id", id)
	return nil
}

// Shutdown closes every live session.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	engines := make([]*quiz.Engine, 0, len(s.sessions))
	for _, engine := range s.sessions {
		engines = append(engines, engine)
	}
	s.sessions = make(map[string]*quiz.Engine)
	s.mu.Unlock()

	for _, engine := range engines {
		engine.Close()
	}
}

func (s *SessionService) engine(id string) (*quiz.Engine, error) {
	s.mu.RLock()
	engine, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return engine, nil
}

func (s *SessionService) apply(id string, op func(*quiz.Engine) error) (quiz.StateView, error) {
	engine, err := s.engine(id)
	if err != nil {
		return quiz.StateView{}, err
	}
	if err := op(engine); err != nil {
		return quiz.StateView{}, err
	}
	return engine.Snapshot()
}

// watch publishes the completion event once the engine finishes and evicts
// the session after the retention window.
func (s *SessionService) watch(engine *quiz.Engine, config models.SessionConfig) {
	<-engine.Done()

	view, err := engine.Snapshot()
	if err != nil {
		s.logger.Warn("completed session snapshot failed", "session_id", engine.ID(), "error", err)
		view = quiz.StateView{SessionID: engine.ID()}
	}

	completed := events.NewSessionCompletedEvent(
		engine.ID(), config.Day(), view.QuestionCount, config.EnableTimer, time.Now())
	if err := s.publisher.PublishQuizEvent(context.Background(), completed); err != nil {
		s.logger.Warn("failed to publish session completed event",
			"session_id", engine.ID(), "error", err)
	}

	time.AfterFunc(completedSessionRetention, func() {
		s.mu.Lock()
		if current, ok := s.sessions[engine.ID()]; ok && current == engine {
			delete(s.sessions, engine.ID())
		}
		s.mu.Unlock()
		engine.Close()
	})
}

// recordSink persists attempt records and emits one event per record. The
// event is best effort; a publish failure never fails the save.
type recordSink struct {
	sessionID string
	attempts  repositories.AttemptRepository
	publisher events.EventPublisher
	logger    utils.Logger
}

func newRecordSink(sessionID string, attempts repositories.AttemptRepository, publisher events.EventPublisher, logger utils.Logger) *recordSink {
	return &recordSink{
		sessionID: sessionID,
		attempts:  attempts,
		publisher: publisher,
		logger:    logger,
	}
}

func (r *recordSink) SaveAttempt(ctx context.Context, record *models.AttemptRecord) error {
	if err := r.attempts.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to save attempt record: %w", err)
	}

	recorded := events.NewAttemptRecordedEvent(r.sessionID, record)
	if err := r.publisher.PublishQuizEvent(ctx, recorded); err != nil {
		r.logger.Warn("failed to publish attempt recorded event",
			"session_id", r.sessionID,
			"question_id", record.QuestionID,
			"error", err)
	}
	return nil
}
