package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadySubmitted is returned when the student already has a submission for the quiz.
	// It is not transient and must not be retried.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizNotPublished is returned when a student submits a draft quiz.
	ErrQuizNotPublished = errors.New("quiz is not published")
	// ErrSubmissionNotFound is returned when the student has not submitted the quiz.
	ErrSubmissionNotFound = errors.New("submission not found")
)

// FieldError describes a problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports invalid caller input.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Err.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage or transaction failure. The transaction
// has been rolled back by the time a caller sees it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
