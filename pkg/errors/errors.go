package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur during a run
type ErrorType string

const (
	// ErrorTypeAuthRequired means the session hit a login wall and the run
	// cannot continue until the user re-authenticates.
	ErrorTypeAuthRequired ErrorType = "auth_required"
	// ErrorTypeTransient covers rendering/network hiccups that are worth
	// retrying (timeouts waiting for entries, a failed scroll step).
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypeInfrastructure covers browser-level or page-structure faults
	// that survived the retry budget.
	ErrorTypeInfrastructure ErrorType = "infrastructure"
	// ErrorTypeParsing marks a single entry whose required fields could not
	// be extracted. Never fatal to the run.
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a run error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error wrapping a cause
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// AuthRequired creates an authentication-required error. Callers distinguish
// it from infrastructure faults so they can re-login instead of retrying.
func AuthRequired(message string) *Error {
	return New(ErrorTypeAuthRequired, message)
}

// Transient creates a retryable error
func Transient(message string, err error) *Error {
	return Wrap(ErrorTypeTransient, message, err)
}

// Infrastructure creates a fatal non-auth error
func Infrastructure(message string, err error) *Error {
	return Wrap(ErrorTypeInfrastructure, message, err)
}

// TypeOf returns the error type of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsAuthRequired reports whether err carries an auth_required type
func IsAuthRequired(err error) bool {
	return TypeOf(err) == ErrorTypeAuthRequired
}

// IsInfrastructure reports whether err carries an infrastructure type
func IsInfrastructure(err error) bool {
	return TypeOf(err) == ErrorTypeInfrastructure
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransient:
		return true
	case ErrorTypeAuthRequired, ErrorTypeInfrastructure, ErrorTypeParsing:
		return false
	default:
		return false
	}
}
