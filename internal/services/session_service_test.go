package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos/quiz-service/internal/events"
	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/repositories"
	"github.com/mnemos/quiz-service/internal/scoring"
	"github.com/mnemos/quiz-service/internal/utils"
	"github.com/mnemos/quiz-service/internal/validator"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ===== TEST DOUBLES =====

type stubQuestionSource struct {
	questions []models.Question
}

func (s *stubQuestionSource) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	return s.questions, nil
}

type fakeAttemptRepo struct {
	mu      sync.Mutex
	records []*models.AttemptRecord
}

func (f *fakeAttemptRepo) Create(ctx context.Context, record *models.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = uint(len(f.records) + 1)
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAttemptRepo) GetByDay(ctx context.Context, day string) ([]*models.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AttemptRecord
	for _, r := range f.records {
		if r.Day == day {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) GetAll(ctx context.Context) ([]*models.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.AttemptRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeAttemptRepo) ListDays(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var days []string
	for _, r := range f.records {
		if !seen[r.Day] {
			seen[r.Day] = true
			days = append(days, r.Day)
		}
	}
	return days, nil
}

func (f *fakeAttemptRepo) GetDayStats(ctx context.Context, day string) (*repositories.DayStats, error) {
	records, _ := f.GetByDay(ctx, day)
	stats := &repositories.DayStats{Day: day, QuestionCount: len(records)}
	for _, r := range records {
		stats.TotalAttempts += r.AttemptCount
	}
	return stats, nil
}

func (f *fakeAttemptRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func mcqTestQuestion(id uint, correct string) models.Question {
	q := models.Question{ID: id, Type: models.MultipleChoice, Prompt: "pick"}
	if err := q.SetContent(models.MultipleChoiceContent{
		Options:       []string{correct, "wrong"},
		CorrectAnswer: correct,
	}); err != nil {
		panic(err)
	}
	return q
}

func newTestSessionService(t *testing.T, questions []models.Question) (*SessionService, *fakeAttemptRepo, *events.MockEventPublisher) {
	t.Helper()
	repo := &fakeAttemptRepo{}
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewSessionService(
		&stubQuestionSource{questions: questions},
		scoring.NewStaticScorer(),
		repo,
		publisher,
		validator.New(),
		testLogger(),
	)
	t.Cleanup(svc.Shutdown)
	return svc, repo, publisher
}

// ===== TESTS =====

func TestCreateSession_InvalidTimerConfig(t *testing.T) {
	svc, _, _ := newTestSessionService(t, []models.Question{mcqTestQuestion(1, "a")})

	config := models.DefaultSessionConfig()
	config.EnableTimer = true
	config.MCQTimeLimit = 3 // below the minimum

	_, err := svc.CreateSession(context.Background(), config)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateSession_NoQuestions(t *testing.T) {
	svc, _, _ := newTestSessionService(t, nil)

	_, err := svc.CreateSession(context.Background(), models.DefaultSessionConfig())
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	svc, repo, publisher := newTestSessionService(t, []models.Question{mcqTestQuestion(1, "a")})

	view, err := svc.CreateSession(context.Background(), models.DefaultSessionConfig())
	require.NoError(t, err)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, models.PhaseQuestion, view.Phase)

	id := view.SessionID

	view, err = svc.Answer(id, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", view.Attempt.CurrentAnswer)

	_, err = svc.CheckAnswer(id, 1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, err := svc.GetSession(id)
		return err == nil && v.Phase == models.PhaseProof
	}, 2*time.Second, 5*time.Millisecond)

	view, err = svc.Next(id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseComplete, view.Phase)

	// One record per question lands in the sink.
	require.Eventually(t, func() bool { return repo.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	// Both the per-record and the completion events go out.
	require.Eventually(t, func() bool {
		types := make(map[events.EventType]int)
		for _, e := range publisher.GetPublishedEvents() {
			types[e.Type]++
		}
		return types[events.EventAttemptRecorded] == 1 && types[events.EventSessionCompleted] == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The finished session stays addressable for a while.
	_, err = svc.GetSession(id)
	assert.NoError(t, err)
}

func TestAbandonSession(t *testing.T) {
	svc, repo, _ := newTestSessionService(t, []models.Question{mcqTestQuestion(1, "a")})

	view, err := svc.CreateSession(context.Background(), models.DefaultSessionConfig())
	require.NoError(t, err)

	require.NoError(t, svc.AbandonSession(view.SessionID))

	_, err = svc.GetSession(view.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Abandoned sessions never write records.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, repo.count())

	assert.ErrorIs(t, svc.AbandonSession(view.SessionID), ErrSessionNotFound)
}

func TestConcurrentSessionsAreIsolated(t *testing.T) {
	svc, _, _ := newTestSessionService(t, []models.Question{mcqTestQuestion(1, "a")})

	first, err := svc.CreateSession(context.Background(), models.DefaultSessionConfig())
	require.NoError(t, err)
	second, err := svc.CreateSession(context.Background(), models.DefaultSessionConfig())
	require.NoError(t, err)
	require.NotEqual(t, first.SessionID, second.SessionID)

	_, err = svc.Answer(first.SessionID, 1, "wrong")
	require.NoError(t, err)

	view, err := svc.GetSession(second.SessionID)
	require.NoError(t, err)
	assert.Nil(t, view.Attempt, "second session must not see the first session's answer")
}
