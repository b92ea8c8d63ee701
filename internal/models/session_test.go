package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimit(t *testing.T) {
	limited := LimitedAttempts(2)
	assert.False(t, limited.IsUnlimited())

	max, ok := limited.Max()
	assert.True(t, ok)
	assert.Equal(t, 2, max)

	assert.False(t, limited.Exhausted(0))
	assert.False(t, limited.Exhausted(1))
	assert.True(t, limited.Exhausted(2))
	assert.True(t, limited.Exhausted(3))
	assert.Equal(t, "2", limited.String())

	unlimited := UnlimitedAttempts()
	assert.True(t, unlimited.IsUnlimited())

	_, ok = unlimited.Max()
	assert.False(t, ok)

	assert.False(t, unlimited.Exhausted(1_000_000))
	assert.Equal(t, "unlimited", unlimited.String())
}

func TestSessionConfig_AttemptLimitFor(t *testing.T) {
	config := DefaultSessionConfig()

	config.UnlimitedMCQAttempts = true
	assert.True(t, config.AttemptLimitFor(MultipleChoice).IsUnlimited())

	config.UnlimitedMCQAttempts = false
	max, ok := config.AttemptLimitFor(MultipleChoice).Max()
	assert.True(t, ok)
	assert.Equal(t, 2, max)

	// Short answers always get exactly one graded submission.
	for _, unlimited := range []bool{true, false} {
		config.UnlimitedMCQAttempts = unlimited
		max, ok := config.AttemptLimitFor(ShortAnswer).Max()
		assert.True(t, ok)
		assert.Equal(t, 1, max)
	}
}

func TestSessionConfig_TimeLimitFor(t *testing.T) {
	config := DefaultSessionConfig()
	config.MCQTimeLimit = 15
	config.ShortAnswerTimeLimit = 45

	assert.Equal(t, 15, config.TimeLimitFor(MultipleChoice))
	assert.Equal(t, 45, config.TimeLimitFor(ShortAnswer))
}

func TestSessionConfig_Day(t *testing.T) {
	config := DefaultSessionConfig()
	config.TestDate = time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-14", config.Day())

	config.TestDate = time.Time{}
	assert.Equal(t, time.Now().Format("2006-01-02"), config.Day())
}

func TestQuestionContentRoundTrip(t *testing.T) {
	q := Question{Type: MultipleChoice, Prompt: "pick"}
	assert.NoError(t, q.SetContent(MultipleChoiceContent{
		Options:       []string{"a", "b"},
		CorrectAnswer: "a",
	}))

	content, err := q.MultipleChoiceContent()
	assert.NoError(t, err)
	assert.Equal(t, "a", content.CorrectAnswer)

	// Decoding as the wrong variant is refused.
	_, err = q.ShortAnswerContent()
	assert.Error(t, err)
}

func TestQuestionAttemptLimit(t *testing.T) {
	q := Question{Type: MultipleChoice}
	assert.True(t, q.AttemptLimit().IsUnlimited())

	three := 3
	q.MaxAttempts = &three
	max, ok := q.AttemptLimit().Max()
	assert.True(t, ok)
	assert.Equal(t, 3, max)
}
