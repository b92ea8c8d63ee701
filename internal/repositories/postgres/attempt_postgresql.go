package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, record *models.AttemptRecord) error {
	return a.db.WithContext(ctx).Create(record).Error
}

func (a AttemptPostgreSQL) GetByDay(ctx context.Context, day string) ([]*models.AttemptRecord, error) {
	var records []*models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Where("day = ?", day).
		Order("created_at asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a AttemptPostgreSQL) GetAll(ctx context.Context) ([]*models.AttemptRecord, error) {
	var records []*models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Order("day asc, created_at asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a AttemptPostgreSQL) ListDays(ctx context.Context) ([]string, error) {
	var days []string
	if err := a.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Distinct("day").
		Order("day asc").
		Pluck("day", &days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

func (a AttemptPostgreSQL) GetDayStats(ctx context.Context, day string) (*repositories.DayStats, error) {
	var row struct {
		TotalAttempts     int
		QuestionCount     int
		AverageFirstGuess *float64
		AverageOverall    *float64
		AverageTimeTaken  *float64
	}

	err := a.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Select(
			"COALESCE(SUM(attempt_count), 0) AS total_attempts, "+
				"COUNT(*) AS question_count, "+
				"AVG(first_guess_score) AS average_first_guess, "+
				"AVG(overall_score) AS average_overall, "+
				"AVG(time_taken) AS average_time_taken").
		Where("day = ?", day).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &repositories.DayStats{
		Day:               day,
		TotalAttempts:     row.TotalAttempts,
		QuestionCount:     row.QuestionCount,
		AverageFirstGuess: row.AverageFirstGuess,
		AverageOverall:    row.AverageOverall,
		AverageTimeTaken:  row.AverageTimeTaken,
	}, nil
}
