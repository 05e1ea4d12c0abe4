package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrValidate, "Invalid task identifiers: bogus", "Valid tasks: os, ssh")
	out := err.Error()

	assert.Contains(t, out, "✗ Invalid task identifiers: bogus")
	assert.Contains(t, out, "Valid tasks: os, ssh")
}

func TestErrorFormattingIncludesCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapWithCode(cause, ErrConfig, "Cannot open log file", "Check the directory")

	out := err.Error()
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "Cannot open log file")
	assert.Contains(t, out, "Check the directory")
}

func TestWrapDefaultsToExec(t *testing.T) {
	err := Wrap(stderrors.New("boom"), "command blew up")
	assert.Equal(t, ErrExec, err.Code)
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("root cause")
	wrapped := fmt.Errorf("outer: %w", Wrap(cause, "inner"))

	assert.True(t, stderrors.Is(wrapped, cause))
}

func TestIsCode(t *testing.T) {
	cancelled := NewCancelled("context menu")

	assert.True(t, IsCode(cancelled, ErrCancelled))
	assert.False(t, IsCode(cancelled, ErrExec))
	assert.False(t, IsCode(nil, ErrCancelled))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCancelled))

	// Codes survive wrapping.
	wrapped := fmt.Errorf("while picking: %w", cancelled)
	assert.True(t, IsCode(wrapped, ErrCancelled))
}

func TestNewCancelledMessage(t *testing.T) {
	err := NewCancelled("task selection")
	assert.Contains(t, err.Error(), "Selection aborted: task selection")
}
