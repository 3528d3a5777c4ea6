package apperrors

import (
	"errors"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestValidationErrorError(t *testing.T) {
	withField := &ValidationError{Field: "tenure", Message: "must be positive"}
	if withField.Error() != "validation failed for field 'tenure': must be positive" {
		t.Errorf("unexpected message: %q", withField.Error())
	}

	withoutField := &ValidationError{Message: "bad payload"}
	if withoutField.Error() != "validation failed: bad payload" {
		t.Errorf("unexpected message: %q", withoutField.Error())
	}
}

func TestSentinelWrapping(t *testing.T) {
	if !errors.Is(ErrCustomerNotFound, ErrNotFound) {
		t.Error("ErrCustomerNotFound should wrap ErrNotFound")
	}
	if !errors.Is(ErrLoanNotFound, ErrNotFound) {
		t.Error("ErrLoanNotFound should wrap ErrNotFound")
	}
	if !errors.Is(NewValidationError("age", "required"), ErrValidation) {
		t.Error("NewValidationError should wrap ErrValidation")
	}
	if !errors.Is(WrapDatabaseError(errors.New("boom"), "insert failed"), ErrDatabase) {
		t.Error("WrapDatabaseError should wrap ErrDatabase")
	}
}
