package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestValidationError_AddKeepsFirstMessage(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	v.add("startDate", "startDate is required")
	v.add("startDate", "startDate must be a date")
	if got := v.FieldErrors["startDate"]; got != "startDate is required" {
		t.Fatalf("expected first message to win, got %q", got)
	}
}

func TestConflictError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create: %w", &ConflictError{Reason: "room(s) ARES already booked for overlapping time"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected wrapped conflict to match ErrConflict")
	}
	var cErr *ConflictError
	if !errors.As(err, &cErr) || cErr.Reason == "" {
		t.Fatalf("expected ConflictError with reason, got %v", err)
	}
	if errors.Is(err, ErrStore) {
		t.Fatalf("conflict must not match ErrStore")
	}
}

func TestStoreError_UnwrapAndIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("database is locked")
	err := storeError("list bookings", cause)
	if !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore match")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to remain in the chain")
	}
	if again := storeError("outer", err); again != err {
		t.Fatalf("expected existing StoreError to be returned unchanged")
	}
	if storeError("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
