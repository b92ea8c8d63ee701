package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos/quiz-service/internal/models"
)

type memorySink struct {
	mu      sync.Mutex
	records []*models.AttemptRecord
	failOn  map[uint]error
}

func (m *memorySink) SaveAttempt(ctx context.Context, record *models.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOn[record.QuestionID]; ok {
		return err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memorySink) saved() []*models.AttemptRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AttemptRecord, len(m.records))
	copy(out, m.records)
	return out
}

func timedConfig() models.SessionConfig {
	config := models.DefaultSessionConfig()
	config.EnableTimer = true
	config.TestDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return config
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

func TestBuildRecords_MultipleChoice(t *testing.T) {
	recorder := NewRecorder(&memorySink{}, testLogger())
	questions := []models.Question{mcqQuestion(1, []string{"a", "b"}, "a")}

	states := map[uint]models.AttemptState{
		1: {
			QuestionID:          1,
			AttemptsUsed:        2,
			FirstAttemptCorrect: boolPtr(false),
			IsCorrect:           boolPtr(true),
			ElapsedSeconds:      7,
		},
	}

	records := recorder.BuildRecords(timedConfig(), questions, states)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, uint(1), record.QuestionID)
	assert.Equal(t, "2026-03-14", record.Day)
	assert.Equal(t, 2, record.AttemptCount)
	require.NotNil(t, record.TimeTaken)
	assert.Equal(t, 7, *record.TimeTaken)
	require.NotNil(t, record.FirstGuessScore)
	assert.Equal(t, 0, *record.FirstGuessScore)
	require.NotNil(t, record.OverallScore)
	assert.Equal(t, 100, *record.OverallScore)
}

func TestBuildRecords_ShortAnswerScoreScaling(t *testing.T) {
	recorder := NewRecorder(&memorySink{}, testLogger())
	questions := []models.Question{shortQuestion(5, "reference")}

	states := map[uint]models.AttemptState{
		5: {QuestionID: 5, AttemptsUsed: 1, Score: floatPtr(0.847)},
	}

	records := recorder.BuildRecords(timedConfig(), questions, states)
	require.Len(t, records, 1)

	record := records[0]
	require.NotNil(t, record.FirstGuessScore)
	assert.Equal(t, 85, *record.FirstGuessScore)
	require.NotNil(t, record.OverallScore)
	assert.Equal(t, 85, *record.OverallScore)
}

func TestBuildRecords_UntouchedQuestionCountsOneAttempt(t *testing.T) {
	recorder := NewRecorder(&memorySink{}, testLogger())
	questions := []models.Question{shortQuestion(9, "reference")}

	records := recorder.BuildRecords(timedConfig(), questions, map[uint]models.AttemptState{})
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].AttemptCount)
	assert.Nil(t, records[0].FirstGuessScore)
	assert.Nil(t, records[0].OverallScore)
}

func TestBuildRecords_TimerDisabledOmitsTimeTaken(t *testing.T) {
	recorder := NewRecorder(&memorySink{}, testLogger())
	questions := []models.Question{mcqQuestion(1, []string{"a", "b"}, "a")}

	config := models.DefaultSessionConfig()
	states := map[uint]models.AttemptState{
		1: {QuestionID: 1, AttemptsUsed: 1, ElapsedSeconds: 12},
	}

	records := recorder.BuildRecords(config, questions, states)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].TimeTaken)
}

func TestFlush_FailuresDoNotBlockOthers(t *testing.T) {
	boom := errors.New("db down")
	sink := &memorySink{failOn: map[uint]error{2: boom}}
	recorder := NewRecorder(sink, testLogger())

	records := []*models.AttemptRecord{
		{QuestionID: 1, Day: "2026-03-14", AttemptCount: 1},
		{QuestionID: 2, Day: "2026-03-14", AttemptCount: 1},
		{QuestionID: 3, Day: "2026-03-14", AttemptCount: 1},
	}

	failures := recorder.Flush(context.Background(), records)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], boom)
	assert.Len(t, sink.saved(), 2)
}
