package validator

import (
	"fmt"

	"github.com/mnemos/quiz-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Prompt == "" {
		return fmt.Errorf("question prompt is required")
	}

	if question.MaxAttempts != nil && *question.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}

	return v.ValidateContent(question)
}

// ValidateContent validates the content payload against the question type.
func (v *QuestionValidator) ValidateContent(question *models.Question) error {
	switch question.Type {
	case models.MultipleChoice:
		return v.validateMultipleChoiceContent(question)
	case models.ShortAnswer:
		return v.validateShortAnswerContent(question)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i := range questions {
		if err := v.ValidateQuestion(&questions[i]); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMultipleChoiceContent(question *models.Question) error {
	content, err := question.MultipleChoiceContent()
	if err != nil {
		return fmt.Errorf("invalid multiple choice content: %w", err)
	}

	if len(content.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}

	if len(content.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}

	if content.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is required")
	}

	if content.CorrectAnswer == models.AnswerNone {
		return fmt.Errorf("correct answer collides with the no-answer sentinel")
	}

	found := false
	for _, option := range content.Options {
		if option == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if option == content.CorrectAnswer {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("correct answer %q does not match any option", content.CorrectAnswer)
	}

	return nil
}

func (v *QuestionValidator) validateShortAnswerContent(question *models.Question) error {
	content, err := question.ShortAnswerContent()
	if err != nil {
		return fmt.Errorf("invalid short answer content: %w", err)
	}

	if content.SampleAnswer == "" {
		return fmt.Errorf("sample answer is required")
	}

	if content.MinLength < 0 {
		return fmt.Errorf("min length cannot be negative")
	}

	if content.MaxLength > 0 && content.MinLength > content.MaxLength {
		return fmt.Errorf("min length cannot exceed max length")
	}

	return nil
}
