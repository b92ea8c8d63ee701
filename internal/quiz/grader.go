package quiz

import (
	"context"
	"fmt"

	"github.com/mnemos/quiz-service/internal/models"
	"github.com/mnemos/quiz-service/internal/utils"
)

// Grader evaluates answers per question variant. Multiple choice grading is
// synchronous and cannot fail; short answer grading delegates to the
// external scorer and may.
type Grader struct {
	scorer FreeTextScorer
	logger utils.Logger
}

func NewGrader(scorer FreeTextScorer, logger utils.Logger) *Grader {
	return &Grader{
		scorer: scorer,
		logger: logger,
	}
}

// GradeMultipleChoice compares the answer against the correct option with an
// exact string match, no normalization. The expiry sentinel never matches.
func (g *Grader) GradeMultipleChoice(question *models.Question, answer string) (bool, error) {
	content, err := question.MultipleChoiceContent()
	if err != nil {
		return false, err
	}
	if answer == models.AnswerNone {
		return false, nil
	}
	return answer == content.CorrectAnswer, nil
}

// GradeFreeText scores a short answer against the question's sample answer.
// Both inputs must be present; missing input is rejected before any call is
// dispatched. The returned score is in [0,1].
func (g *Grader) GradeFreeText(ctx context.Context, question *models.Question, answer string) (float64, error) {
	content, err := question.ShortAnswerContent()
	if err != nil {
		return 0, err
	}
	if answer == "" || answer == models.AnswerNone || content.SampleAnswer == "" {
		return 0, ErrMissingScoreInput
	}

	score, err := g.scorer.Score(ctx, answer, content.SampleAnswer)
	if err != nil {
		return 0, fmt.Errorf("free text scoring failed for question %d: %w", question.ID, err)
	}
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return score, nil
}
