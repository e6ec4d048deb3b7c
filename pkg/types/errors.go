// Package types defines the error taxonomy shared by the retry engine.
package types

import (
	"errors"
	"fmt"
	"time"
)

// Predefined errors
var (
	// ErrRegionsExhausted indicates every region in the failover sequence
	// has been tried
	ErrRegionsExhausted = errors.New("all failover regions exhausted")

	// ErrOperationCancelled indicates the caller's cancellation signal fired
	ErrOperationCancelled = errors.New("operation was cancelled")
)

// TransientError marks an error as explicitly safe to retry. Classifiers
// honor the mark regardless of the underlying error's shape.
type TransientError struct {
	// Err is the underlying error
	Err error

	// RetryAfter is the suggested retry delay, zero when the producer has
	// no opinion
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *TransientError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *TransientError) Unwrap() error {
	return e.Err
}

// MarkTransient wraps err so classifiers treat it as retryable.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsMarkedTransient reports whether err carries an explicit transient mark
// anywhere in its chain.
func IsMarkedTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ThresholdExceededError is returned when the total elapsed time of one
// logical call passes the configured threshold. It replaces the attempt's
// own error: the guard aborts before the next attempt starts.
type ThresholdExceededError struct {
	// Threshold is the configured elapsed-time cap
	Threshold time.Duration

	// Elapsed is the wall-clock time spent across all attempts so far
	Elapsed time.Duration

	// Attempts is the number of attempts completed before the abort
	Attempts int
}

// Error implements the error interface
func (e *ThresholdExceededError) Error() string {
	return fmt.Sprintf("retry threshold of %v exceeded after %v and %d attempt(s)", e.Threshold, e.Elapsed, e.Attempts)
}

// Timeout reports true so callers treating this as a cancellation-kind
// error via the net.Error convention do the right thing.
func (e *ThresholdExceededError) Timeout() bool {
	return true
}

// IncidentError is returned when the attempt index passes the configured
// incident retry limit. The original error is preserved as the cause.
type IncidentError struct {
	// Attempts is the number of attempts made before giving up
	Attempts int

	// Cause is the last error returned by the action
	Cause error
}

// Error implements the error interface
func (e *IncidentError) Error() string {
	return fmt.Sprintf("incident retry limit reached after %d attempt(s): %v", e.Attempts, e.Cause)
}

// Unwrap returns the original error
func (e *IncidentError) Unwrap() error {
	return e.Cause
}

// StatusError carries a transport status code, the shape throttle and
// transport classifiers test for.
type StatusError struct {
	// Code is the HTTP-style status code
	Code int

	// Message is the provider-supplied failure text
	Message string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// StatusCode returns the carried status code
func (e *StatusError) StatusCode() int {
	return e.Code
}

// NewStatusError creates a status-carrying error.
func NewStatusError(code int, message string) *StatusError {
	return &StatusError{Code: code, Message: message}
}
