package repositories

import (
	"context"

	"github.com/mnemos/quiz-service/internal/models"
)

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetAll(ctx context.Context) ([]models.Question, error)
	Count(ctx context.Context) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, record *models.AttemptRecord) error
	GetByDay(ctx context.Context, day string) ([]*models.AttemptRecord, error)
	GetAll(ctx context.Context) ([]*models.AttemptRecord, error)
	ListDays(ctx context.Context) ([]string, error)
	GetDayStats(ctx context.Context, day string) (*DayStats, error)
}

// ===== SHARED STATISTICS STRUCTS =====

type DayStats struct {
	Day               string   `json:"day"`
	TotalAttempts     int      `json:"total_attempts"`
	QuestionCount     int      `json:"question_count"`
	AverageFirstGuess *float64 `json:"average_first_guess,omitempty"`
	AverageOverall    *float64 `json:"average_overall,omitempty"`
	AverageTimeTaken  *float64 `json:"average_time_taken,omitempty"` // seconds
}
