package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the caller may not access submissions at all.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned both for missing submissions and for submissions
	// outside the caller's zone.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed decision input. Nothing is written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps any failure raised by the transactional store. The
// transaction it happened in has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
