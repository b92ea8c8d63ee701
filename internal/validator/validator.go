package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mnemos/quiz-service/internal/models"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs complete validation (struct tags plus any variant rules)
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	if config, ok := s.(*models.SessionConfig); ok {
		if errors := v.validateSessionConfig(config); len(errors) > 0 {
			return errors
		}
	}

	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func (v *Validator) GetQuestionValidator() *QuestionValidator {
	return v.questionValidator
}

// validateSessionConfig applies the rules struct tags cannot express.
func (v *Validator) validateSessionConfig(config *models.SessionConfig) ValidationErrors {
	var errors ValidationErrors

	if config.EnableTimer {
		if config.MCQTimeLimit < models.MinMCQTimeLimit || config.MCQTimeLimit > models.MaxMCQTimeLimit {
			errors = append(errors, *NewValidationErrorWithRule(
				"mcq_time_limit", "must be between 5 and 300 seconds", "mcq_time_limit", config.MCQTimeLimit))
		}
		if config.ShortAnswerTimeLimit < models.MinShortAnswerTimeLimit || config.ShortAnswerTimeLimit > models.MaxShortAnswerTimeLimit {
			errors = append(errors, *NewValidationErrorWithRule(
				"short_time_limit", "must be between 10 and 600 seconds", "short_time_limit", config.ShortAnswerTimeLimit))
		}
	}

	return errors
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	// Question type validation
	validate.RegisterValidation("question_type", validateQuestionType)

	// Session phase validation
	validate.RegisterValidation("session_phase", validateSessionPhase)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.ShortAnswer,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateSessionPhase(fl validator.FieldLevel) bool {
	validPhases := []models.SessionPhase{
		models.PhaseSettings,
		models.PhaseQuestion,
		models.PhaseProof,
		models.PhaseComplete,
	}

	value := fl.Field().String()
	for _, validPhase := range validPhases {
		if string(validPhase) == value {
			return true
		}
	}
	return false
}
