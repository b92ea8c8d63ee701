package quiz

import (
	"context"
	"math"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/utils"
)

// Recorder reduces a finished session into one attempt record per question
// and dispatches them to the external sink.
type Recorder struct {
	sink   AttemptSink
	logger utils.Logger
}

func NewRecorder(sink AttemptSink, logger utils.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: logger,
	}
}

// BuildRecords produces one record per question in question order. States
// are looked up by question ID; a question the user never touched still
// yields a record with a single counted attempt.
func (r *Recorder) BuildRecords(config models.SessionConfig, questions []models.Question, states map[uint]models.AttemptState) []*models.AttemptRecord {
	day := config.Day()
	records := make([]*models.AttemptRecord, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		state := states[q.ID]
		records = append(records, buildRecord(config, q, state, day))
	}
	return records
}

// Flush submits every record independently. A failure on one record does
// not block the others; failures are logged and collected, never retried.
func (r *Recorder) Flush(ctx context.Context, records []*models.AttemptRecord) []error {
	var failures []error
	for _, record := range records {
		if err := r.sink.SaveAttempt(ctx, record); err != nil {
			r.logger.Error("failed to save attempt record",
				"question_id", record.QuestionID,
				"day", record.Day,
				"error", err)
			failures = append(failures, err)
		}
	}
	return failures
}

func buildRecord(config models.SessionConfig, q *models.Question, state models.AttemptState, day string) *models.AttemptRecord {
	record := &models.AttemptRecord{
		QuestionID:   q.ID,
		Day:          day,
		AttemptCount: state.AttemptsUsed,
	}

	// A question that expired with zero interactions still counts as one
	// attempt.
	if record.AttemptCount < 1 {
		record.AttemptCount = 1
	}

	if config.EnableTimer {
		elapsed := state.ElapsedSeconds
		record.TimeTaken = &elapsed
	}

	switch q.Type {
	case models.MultipleChoice:
		first := 0
		if state.FirstAttemptCorrect != nil && *state.FirstAttemptCorrect {
			first = 100
		}
		overall := 0
		if state.IsCorrect != nil && *state.IsCorrect {
			overall = 100
		}
		record.FirstGuessScore = &first
		record.OverallScore = &overall
	case models.ShortAnswer:
		// Single graded submission: first guess and overall coincide.
		// Both stay absent when grading failed or never ran.
		if state.Score != nil {
			scaled := int(math.Round(*state.Score * 100))
			record.FirstGuessScore = &scaled
			record.OverallScore = &scaled
		}
	}

	return record
}
