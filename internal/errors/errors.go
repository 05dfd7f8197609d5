// Package apperrors defines the structured error types shared across the
// application and the exit codes they map to. Every type carrying a cause
// implements Unwrap so that errors.Is and errors.As see through it.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes returned by the binary.
const (
	ExitSuccess       = 0   // Successful execution.
	ExitErrorGeneric  = 1   // Unclassified failure.
	ExitErrorTimeout  = 2   // The execution limit was reached.
	ExitErrorMismatch = 3   // Two multipliers disagreed beyond tolerance.
	ExitErrorConfig   = 4   // Invalid flags or an inconsistent size/leaf-size pair.
	ExitErrorCanceled = 130 // Interrupted (e.g., SIGINT).
)

// ConfigError reports a configuration the application cannot run with:
// invalid flags, or a matrix size that cannot be halved down to the leaf
// size. It is never retried.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
	// Cause is the lower-level error that exposed the problem, if any.
	Cause error
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e ConfigError) Unwrap() error { return e.Cause }

// NewConfigError creates a ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// NewConfigErrorWithCause creates a ConfigError that wraps cause.
func NewConfigErrorWithCause(cause error, format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...), Cause: cause}
}

// MultiplicationError wraps a failure of one multiplier on one input size.
type MultiplicationError struct {
	// Algorithm is the name of the multiplier that failed.
	Algorithm string
	// Size is the dimension of the operands.
	Size int
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message, prefixed with the failing algorithm.
func (e MultiplicationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s (n=%d): %v", e.Algorithm, e.Size, e.Cause)
}

// Unwrap returns the underlying cause.
func (e MultiplicationError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error combines the message and the underlying cause if present.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// ValidationError represents invalid input received by the API or the
// service layer.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// WrapError wraps err with a formatted context message using %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err is a context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}
