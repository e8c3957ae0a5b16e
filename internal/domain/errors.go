package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetNotFound is returned when no asset exists for an id
	ErrAssetNotFound = errors.New("asset not found")

	// ErrVersionConflict is returned when a save races with another writer
	ErrVersionConflict = errors.New("asset was modified concurrently")
)

// ValidationError reports malformed input
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PersistenceError wraps an opaque store failure
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err as a failure of op
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
