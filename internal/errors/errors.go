package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig    = "CONFIG"    // bad flags, forbidden sudo, unusable paths
	ErrValidate  = "VALIDATE"  // unknown task identifiers in a selection
	ErrExec      = "EXEC"      // a spawned command exited non-zero
	ErrState     = "STATE"     // marker or journal persistence failed
	ErrCancelled = "CANCELLED" // operator aborted an interactive selection
)

// Error is a structured error with a code, message, suggestion, and optional
// cause. Rendered as:
//
//	✗ <what failed>
//
//	  <why it failed>
//
//	  <how to fix it>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrExec code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrExec,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewCancelled creates the error used whenever the operator backs out of an
// interactive selection. Cancellation always aborts the whole run.
func NewCancelled(what string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Message: fmt.Sprintf("Selection aborted: %s", what),
	}
}

// Error implements the error interface with the formatted three-part output.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
