package types

import "time"

// Result is the completion record of an asynchronous execution.
type Result[T any] struct {
	// Value is the execution result
	Value T

	// Error is the execution error
	Error error

	// Duration is the execution time including retry delays
	Duration time.Duration
}
