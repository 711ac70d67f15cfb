// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Extraction errors.
	ErrExtraction = errors.New("content extraction failed")
	ErrNoImages   = errors.New("no page images available")

	// Classification service errors.
	ErrServiceUnavailable = errors.New("classification service unavailable")
	ErrServiceOverloaded  = errors.New("classification service overloaded")

	// Metadata errors (non-fatal to the pipeline).
	ErrMetadata = errors.New("metadata extraction failed")

	// Filesystem errors.
	ErrRename = errors.New("rename failed")

	// Configuration errors.
	ErrMissingAPIKey = errors.New("api key not configured")
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Startup errors.
	ErrSingletonConflict = errors.New("another instance is already running")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsOverloaded reports whether an error's failure signature indicates
// transient service congestion worth backing off on. The Anthropic API
// signals this with HTTP 529 or an "overloaded" error type.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServiceOverloaded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "529") || strings.Contains(msg, "overload")
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if IsOverloaded(err) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
