package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/repositories"
	"github.com/mnemos/quiz-service/internal/utils"
)

// DayResults bundles the raw records of one day with its aggregates.
type DayResults struct {
	Stats   *repositories.DayStats  `json:"stats"`
	Records []*models.AttemptRecord `json:"records"`
}

// ResultService reads back recorded attempts, per day and across days, and
// exports them as a spreadsheet.
type ResultService struct {
	attempts repositories.AttemptRepository
	logger   utils.Logger
}

func NewResultService(attempts repositories.AttemptRepository, logger utils.Logger) *ResultService {
	return &ResultService{
		attempts: attempts,
		logger:   logger,
	}
}

// GetDayResults returns the records and aggregates for one day.
func (s *ResultService) GetDayResults(ctx context.Context, day string) (*DayResults, error) {
	records, err := s.attempts.GetByDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for %s: %w", day, err)
	}
	if len(records) == 0 {
		return nil, ErrNoResultsForDay
	}

	stats, err := s.attempts.GetDayStats(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate results for %s: %w", day, err)
	}

	return &DayResults{
		Stats:   stats,
		Records: records,
	}, nil
}

// ListDays returns every day with at least one recorded attempt.
func (s *ResultService) ListDays(ctx context.Context) ([]string, error) {
	return s.attempts.ListDays(ctx)
}

// ExportResults renders all recorded attempts into an Excel workbook.
func (s *ResultService) ExportResults(ctx context.Context) ([]byte, error) {
	records, err := s.attempts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt records: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Attempts"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Day", "Question ID", "Attempt Count", "Time Taken (s)",
		"First Guess Score", "Overall Score", "Recorded At",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		row := []interface{}{
			record.Day,
			record.QuestionID,
			record.AttemptCount,
		}

		if record.TimeTaken != nil {
			row = append(row, *record.TimeTaken)
		} else {
			row = append(row, "")
		}

		if record.FirstGuessScore != nil {
			row = append(row, *record.FirstGuessScore)
		} else {
			row = append(row, "")
		}

		if record.OverallScore != nil {
			row = append(row, *record.OverallScore)
		} else {
			row = append(row, "")
		}

		row = append(row, record.CreatedAt.Format("2006-01-02 15:04:05"))

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("exported attempt records", "count", len(records))
	return buf.Bytes(), nil
}
