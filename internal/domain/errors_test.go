package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	if verr.OrNil() != nil {
		t.Error("empty ValidationError should be nil")
	}

	verr.Add("amount", "Amount must be positive")
	verr.Add("description", "Description is required")

	err := verr.OrNil()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if got := err.Error(); got != "validation failed: amount: Amount must be positive; description: Description is required" {
		t.Errorf("unexpected message %q", got)
	}
	if !verr.HasField("amount") || verr.HasField("kind") {
		t.Error("HasField mismatch")
	}
}

func TestNotFoundErrors(t *testing.T) {
	for _, err := range []error{ErrMovementNotFound, ErrServiceNotFound, fmt.Errorf("wrapped: %w", ErrMovementNotFound)} {
		if !IsNotFound(err) {
			t.Errorf("%v should be a not-found error", err)
		}
	}
	if IsNotFound(ErrInvalidInput) {
		t.Error("ErrInvalidInput is not a not-found error")
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("database is locked")
	err := error(&PersistenceError{Op: "insert movement", Err: cause})

	if !errors.Is(err, ErrPersistence) {
		t.Error("should match ErrPersistence")
	}
	if !errors.Is(err, cause) {
		t.Error("should match the cause")
	}
	if err.Error() != "persistence insert movement: database is locked" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidateService(t *testing.T) {
	if err := ValidateService("Escova", mustAmount("30")); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	err := ValidateService(" ", mustAmount("0"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !verr.HasField("name") || !verr.HasField("price") {
		t.Errorf("expected name and price violations, got %v", verr.Fields)
	}
}

func mustAmount(s string) decimal.Decimal {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}
