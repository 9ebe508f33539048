package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPersistence      = errors.New("persistence failure")
	ErrConflict         = errors.New("resource already exists")
	ErrMovementNotFound = fmt.Errorf("movement %w", ErrNotFound)
	ErrServiceNotFound  = fmt.Errorf("service %w", ErrNotFound)
	ErrServiceExists    = fmt.Errorf("service %w", ErrConflict)
)

// Validation constants
const (
	MaxCategoryLength    = 255
	MaxDescriptionLength = 1000
	MaxServiceNameLength = 255
)

// FieldError describes a single violated field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add records a violated field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether the given field was recorded
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when no field was recorded
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// PersistenceError wraps a storage failure that survived the retry.
// It matches ErrPersistence with errors.Is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// IsNotFound reports whether err is any of the not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
