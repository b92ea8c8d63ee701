package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mnemos/quiz-service/internal/cache"
	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/repositories"
	"github.com/mnemos/quiz-service/internal/utils"
	"github.com/mnemos/quiz-service/internal/validator"
)

const (
	questionSetCacheKey = "quiz:questions:all"
	questionSetCacheTTL = 10 * time.Minute
)

// QuestionService manages the question bank and serves the ordered question
// set to sessions, read-through cached in Redis. It implements
// quiz.QuestionSource.
type QuestionService struct {
	repo      repositories.QuestionRepository
	cache     cache.CacheService
	validator *validator.Validator
	logger    utils.Logger
}

func NewQuestionService(
	repo repositories.QuestionRepository,
	cacheService cache.CacheService,
	v *validator.Validator,
	logger utils.Logger,
) *QuestionService {
	return &QuestionService{
		repo:      repo,
		cache:     cacheService,
		validator: v,
		logger:    logger,
	}
}

// FetchQuestions returns the full ordered question set. Cache failures fall
// back to the database; only a database failure is fatal.
func (s *QuestionService) FetchQuestions(ctx context.Context) ([]models.Question, error) {
	var cached []models.Question
	if err := s.cache.Get(ctx, questionSetCacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("question cache read failed, falling back to database", "error", err)
	}

	questions, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsLoaded
	}

	if err := s.cache.Set(ctx, questionSetCacheKey, questions, questionSetCacheTTL); err != nil {
		s.logger.Warn("question cache write failed", "error", err)
	}
	return questions, nil
}

// GetQuestion returns a single question by ID.
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// CreateQuestion validates and stores a new question, invalidating the
// cached set.
func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.repo.Create(ctx, question); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// SeedQuestions loads an initial question set when the bank is empty.
func (s *QuestionService) SeedQuestions(ctx context.Context, questions []models.Question) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := s.validator.Question().ValidateBatch(questions); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.repo.CreateBatch(ctx, questions); err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("question bank seeded", "count", len(questions))
	return nil
}

func (s *QuestionService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, questionSetCacheKey); err != nil {
		s.logger.Warn("question cache invalidation failed", "error", err)
	}
}
