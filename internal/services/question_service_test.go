package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos/quiz-service/internal/cache"
	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/validator"
)

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []models.Question
	getCalls  int
}

func (f *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	question.ID = uint(len(f.questions) + 1)
	f.questions = append(f.questions, *question)
	return nil
}

func (f *fakeQuestionRepo) CreateBatch(ctx context.Context, questions []models.Question) error {
	for i := range questions {
		if err := f.Create(ctx, &questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.questions {
		if f.questions[i].ID == id {
			q := f.questions[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestionRepo) GetAll(ctx context.Context) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	out := make([]models.Question, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

func (f *fakeQuestionRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.questions)), nil
}

// fakeCache is an in-memory CacheService with no TTL handling.
type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = data
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	data, ok := f.items[key]
	f.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string][]byte)
	return nil
}

func newTestQuestionService(t *testing.T, seed []models.Question) (*QuestionService, *fakeQuestionRepo) {
	t.Helper()
	repo := &fakeQuestionRepo{questions: seed}
	svc := NewQuestionService(repo, newFakeCache(), validator.New(), testLogger())
	return svc, repo
}

func TestFetchQuestions_ReadThroughCache(t *testing.T) {
	svc, repo := newTestQuestionService(t, []models.Question{mcqTestQuestion(1, "a")})

	first, err := svc.FetchQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.FetchQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, 1, repo.getCalls, "second fetch must come from the cache")
}

func TestFetchQuestions_EmptyBank(t *testing.T) {
	svc, _ := newTestQuestionService(t, nil)

	_, err := svc.FetchQuestions(context.Background())
	assert.ErrorIs(t, err, ErrNoQuestionsLoaded)
}

func TestCreateQuestion_InvalidContentRejected(t *testing.T) {
	svc, repo := newTestQuestionService(t, nil)

	q := models.Question{Type: models.MultipleChoice, Prompt: "pick"}
	require.NoError(t, q.SetContent(models.MultipleChoiceContent{
		Options:       []string{"a", "b"},
		CorrectAnswer: "c", // not among the options
	}))

	err := svc.CreateQuestion(context.Background(), &q)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	count, _ := repo.Count(context.Background())
	assert.Zero(t, count)
}

func TestCreateQuestion_InvalidatesCache(t *testing.T) {
	svc, repo := newTestQuestionService(t, []models.Question{mcqTestQuestion(1, "a")})

	_, err := svc.FetchQuestions(context.Background())
	require.NoError(t, err)

	q := mcqTestQuestion(0, "b")
	q.ID = 0
	require.NoError(t, svc.CreateQuestion(context.Background(), &q))

	questions, err := svc.FetchQuestions(context.Background())
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Equal(t, 2, repo.getCalls)
}

func TestSeedQuestions_SkipsNonEmptyBank(t *testing.T) {
	svc, repo := newTestQuestionService(t, []models.Question{mcqTestQuestion(1, "a")})

	err := svc.SeedQuestions(context.Background(), []models.Question{mcqTestQuestion(0, "b")})
	require.NoError(t, err)

	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(1), count)
}

func TestSeedQuestions_PopulatesEmptyBank(t *testing.T) {
	svc, repo := newTestQuestionService(t, nil)

	err := svc.SeedQuestions(context.Background(), []models.Question{
		mcqTestQuestion(0, "a"),
		mcqTestQuestion(0, "b"),
	})
	require.NoError(t, err)

	count, _ := repo.Count(context.Background())
	assert.Equal(t, int64(2), count)
}
