package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorMessage checks both the code and the client-facing message.
func AssertAppErrorMessage(t *testing.T, err error, expectedCode, expectedMessage string) {
	t.Helper()

	AssertAppError(t, err, expectedCode)

	var appErr *apperrors.AppError
	errors.As(err, &appErr)
	if appErr.Message != expectedMessage {
		t.Errorf("expected message %q, got %q", expectedMessage, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal fails the test unless got equals want numerically.
func AssertDecimal(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	w := decimal.RequireFromString(want)
	if !got.Equal(w) {
		t.Errorf("expected amount %s, got %s", w, got)
	}
}
