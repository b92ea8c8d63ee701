package quiz

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/utils"
)

type stubScorer struct {
	score      float64
	err        error
	calls      int
	lastAnswer string
	lastRef    string
}

func (s *stubScorer) Score(ctx context.Context, userAnswer, referenceAnswer string) (float64, error) {
	s.calls++
	s.lastAnswer = userAnswer
	s.lastRef = referenceAnswer
	return s.score, s.err
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mcqQuestion(id uint, options []string, correct string) models.Question {
	q := models.Question{ID: id, Type: models.MultipleChoice, Prompt: "pick one"}
	if err := q.SetContent(models.MultipleChoiceContent{Options: options, CorrectAnswer: correct}); err != nil {
		panic(err)
	}
	return q
}

func shortQuestion(id uint, sample string) models.Question {
	q := models.Question{ID: id, Type: models.ShortAnswer, Prompt: "explain"}
	if err := q.SetContent(models.ShortAnswerContent{SampleAnswer: sample, MinLength: 1, MaxLength: 200}); err != nil {
		panic(err)
	}
	return q
}

func TestGradeMultipleChoice(t *testing.T) {
	grader := NewGrader(&stubScorer{}, testLogger())
	q := mcqQuestion(1, []string{"Paris", "Lyon"}, "Paris")

	correct, err := grader.GradeMultipleChoice(&q, "Paris")
	require.NoError(t, err)
	assert.True(t, correct)

	correct, err = grader.GradeMultipleChoice(&q, "Lyon")
	require.NoError(t, err)
	assert.False(t, correct)

	// Exact match only, no normalization.
	correct, err = grader.GradeMultipleChoice(&q, "paris")
	require.NoError(t, err)
	assert.False(t, correct)
}

func TestGradeMultipleChoice_SentinelNeverMatches(t *testing.T) {
	grader := NewGrader(&stubScorer{}, testLogger())
	q := mcqQuestion(1, []string{models.AnswerNone, "other"}, models.AnswerNone)

	correct, err := grader.GradeMultipleChoice(&q, models.AnswerNone)
	require.NoError(t, err)
	assert.False(t, correct)
}

func TestGradeFreeText(t *testing.T) {
	scorer := &stubScorer{score: 0.85}
	grader := NewGrader(scorer, testLogger())
	q := shortQuestion(2, "the mitochondria is the powerhouse of the cell")

	score, err := grader.GradeFreeText(context.Background(), &q, "mitochondria produce energy")
	require.NoError(t, err)
	assert.Equal(t, 0.85, score)
	assert.Equal(t, "mitochondria produce energy", scorer.lastAnswer)
	assert.Equal(t, "the mitochondria is the powerhouse of the cell", scorer.lastRef)
}

func TestGradeFreeText_ClampsScore(t *testing.T) {
	grader := NewGrader(&stubScorer{score: 1.7}, testLogger())
	q := shortQuestion(2, "reference")

	score, err := grader.GradeFreeText(context.Background(), &q, "answer")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestGradeFreeText_MissingInput(t *testing.T) {
	scorer := &stubScorer{score: 1}
	grader := NewGrader(scorer, testLogger())
	q := shortQuestion(2, "reference")

	_, err := grader.GradeFreeText(context.Background(), &q, "")
	assert.ErrorIs(t, err, ErrMissingScoreInput)

	_, err = grader.GradeFreeText(context.Background(), &q, models.AnswerNone)
	assert.ErrorIs(t, err, ErrMissingScoreInput)

	empty := shortQuestion(3, "")
	_, err = grader.GradeFreeText(context.Background(), &empty, "answer")
	assert.ErrorIs(t, err, ErrMissingScoreInput)

	// The scorer must never be reached with missing input.
	assert.Zero(t, scorer.calls)
}

func TestGradeFreeText_ScorerError(t *testing.T) {
	sentinel := errors.New("rate limited")
	grader := NewGrader(&stubScorer{err: sentinel}, testLogger())
	q := shortQuestion(2, "reference")

	_, err := grader.GradeFreeText(context.Background(), &q, "answer")
	assert.ErrorIs(t, err, sentinel)
}
