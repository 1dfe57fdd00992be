// Package apperr holds the error conditions shared by the comment and vote
// core and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a mutating operation runs without an identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidationFailed is returned for rejected input, e.g. empty comment content.
	ErrValidationFailed = errors.New("validation failed")
	// ErrNotFound is returned when a single entity lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("conflict")
)

// StoreError wraps any failure reported by the persistence boundary. The
// store gives no structured taxonomy, so Err is kept opaque.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError for op. A nil err stays nil, and the
// ErrNotFound / ErrConflict sentinels pass through unwrapped.
func Store(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStore reports whether err came from the persistence boundary.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// Validation builds an ErrValidationFailed with a human readable reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}
