package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Request errors
	ErrMalformedInput = errors.New("malformed input: neither free text nor structured intent supplied")

	// Routing errors
	ErrNoCandidateFound = errors.New("no candidate provider found; consider broadening the query terms")
	ErrNoMatchingTool   = errors.New("no matching tool on any evaluated provider")

	// Collaborator errors
	ErrUpstreamTimeout  = errors.New("upstream operation timed out")
	ErrUpstreamFailure  = errors.New("upstream operation failed")
	ErrProviderNotFound = errors.New("provider not found")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")

	// Operation errors
	ErrConnectionFailed   = errors.New("connection failed")
	ErrContextCanceled    = errors.New("context canceled")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// RoutingError provides structured error information with context.
// It implements the error interface and supports error wrapping.
type RoutingError struct {
	Op      string // Operation that failed (e.g., "catalog.Query")
	Kind    string // Error kind (e.g., "catalog", "invoker", "config")
	ID      string // Optional ID of the entity involved
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *RoutingError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *RoutingError) Unwrap() error {
	return e.Err
}

// NewRoutingError creates a new RoutingError
func NewRoutingError(op, kind string, err error) *RoutingError {
	return &RoutingError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// IsRetryable checks if an error is retryable.
// Retryable errors are transient upstream or connectivity issues.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamFailure) ||
		errors.Is(err, ErrConnectionFailed)
}

// IsNoMatch checks if an error represents "the engine found nothing"
// as opposed to "the engine broke".
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoCandidateFound) ||
		errors.Is(err, ErrNoMatchingTool)
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
