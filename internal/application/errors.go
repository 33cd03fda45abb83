package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when an admin login does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrInvalidTransition is returned in strict approval mode when a booking
	// is no longer pending.
	ErrInvalidTransition = errors.New("application: invalid status transition")
	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("application: booking conflict")
	// ErrStore matches every *StoreError.
	ErrStore = errors.New("application: store failure")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message per field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ConflictError reports that requested rooms are already booked for an
// overlapping slot.
type ConflictError struct {
	Reason string
}

func (c *ConflictError) Error() string {
	if c == nil {
		return ""
	}
	return c.Reason
}

// Is makes errors.Is(err, ErrConflict) hold.
func (c *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StoreError wraps a persistence failure. The underlying error stays in the chain.
type StoreError struct {
	Op  string
	Err error
}

func (s *StoreError) Error() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("store: %s: %v", s.Op, s.Err)
}

// Is makes errors.Is(err, ErrStore) hold.
func (s *StoreError) Is(target error) bool {
	return target == ErrStore
}

func (s *StoreError) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.Err
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StoreError
	if errors.As(err, &existing) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
