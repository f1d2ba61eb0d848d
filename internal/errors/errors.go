// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrHeaderNotFound   = errors.New("header row not found")
	ErrInvalidPosition  = errors.New("invalid opening position")
	ErrPositionNotFound = errors.New("opening position not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrReadFailed       = errors.New("failed to read input")
)

// RowError describes a data row that was rejected by the parser.
type RowError struct {
	Line   int
	Reason string
	Value  string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Reason, e.Value)
}

// NewRowError creates a new RowError.
func NewRowError(line int, reason, value string) *RowError {
	return &RowError{
		Line:   line,
		Reason: reason,
		Value:  value,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any validation failure with ErrInvalidPosition.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidPosition
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// FileError ties an I/O failure to the input it came from.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(name string, err error) *FileError {
	return &FileError{
		Name: name,
		Err:  err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
