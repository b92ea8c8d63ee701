package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("time_limit_mcq", "must be between 5 and 300 seconds", "3")

	if err.Field != "time_limit_mcq" {
		t.Errorf("Expected field to be 'time_limit_mcq', got '%s'", err.Field)
	}

	if err.Message != "must be between 5 and 300 seconds" {
		t.Errorf("Expected message to be 'must be between 5 and 300 seconds', got '%s'", err.Message)
	}

	if err.Value != "3" {
		t.Errorf("Expected value to be '3', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'time_limit_mcq': must be between 5 and 300 seconds"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("time_limit_mcq", "must be between 5 and 300 seconds", "required", "3")

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "time_limit_mcq" {
		t.Errorf("Expected field to be 'time_limit_mcq', got '%s'", err.Field)
	}
}
