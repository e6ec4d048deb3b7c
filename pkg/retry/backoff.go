// Package retry provides backoff strategy implementations
package retry

import (
	"math"
	"math/rand"
	"time"
)

// MaxClampDelay caps every computed delay. Anything negative or above it is
// replaced by it before waiting, so misconfigured or overflowed arithmetic
// can never produce an unbounded sleep.
const MaxClampDelay = 60 * time.Second

// Strategy decides whether another attempt is allowed and how long to wait
// before it. attempt is zero-based: attempt 0 is the wait decision taken
// after the first execution failed.
type Strategy interface {
	// NextDelay returns whether to retry and the delay before the retry
	NextDelay(attempt int) (bool, time.Duration)
}

// ClampDelay normalizes a computed delay into [0, MaxClampDelay].
func ClampDelay(d time.Duration) time.Duration {
	if d < 0 || d > MaxClampDelay {
		return MaxClampDelay
	}
	return d
}

// NoRetry never allows a retry.
type NoRetry struct{}

// NewNoRetry creates a strategy that always declines to retry
func NewNoRetry() NoRetry {
	return NoRetry{}
}

// NextDelay always declines
func (NoRetry) NextDelay(int) (bool, time.Duration) {
	return false, 0
}

// FixedInterval waits the same interval before every retry.
type FixedInterval struct {
	maxRetries int
	interval   time.Duration
}

// NewFixedInterval creates a fixed interval strategy
func NewFixedInterval(maxRetries int, interval time.Duration) *FixedInterval {
	return &FixedInterval{
		maxRetries: maxRetries,
		interval:   interval,
	}
}

// NextDelay returns the fixed interval while attempts remain
func (s *FixedInterval) NextDelay(attempt int) (bool, time.Duration) {
	if attempt >= s.maxRetries {
		return false, 0
	}
	return true, s.interval
}

// ExponentialJitter grows the delay exponentially with the attempt index
// while randomizing each step to spread concurrent retriers apart.
type ExponentialJitter struct {
	maxRetries   int
	minBackoff   time.Duration
	maxBackoff   time.Duration
	deltaBackoff time.Duration
}

// NewExponentialJitter creates an exponential backoff strategy with jitter
func NewExponentialJitter(maxRetries int, minBackoff, maxBackoff, deltaBackoff time.Duration) *ExponentialJitter {
	return &ExponentialJitter{
		maxRetries:   maxRetries,
		minBackoff:   minBackoff,
		maxBackoff:   maxBackoff,
		deltaBackoff: deltaBackoff,
	}
}

// NextDelay computes min(minBackoff + (2^attempt - 1) * U(0.8*delta, 1.2*delta), maxBackoff).
// The random draw is fresh on every call.
func (s *ExponentialJitter) NextDelay(attempt int) (bool, time.Duration) {
	if attempt >= s.maxRetries {
		return false, 0
	}

	jittered := (0.8 + 0.4*rand.Float64()) * float64(s.deltaBackoff)
	delta := (math.Pow(2, float64(attempt)) - 1) * jittered

	delay := s.minBackoff + time.Duration(delta)
	if delay > s.maxBackoff || delay < s.minBackoff {
		// the second condition catches float overflow going negative
		delay = s.maxBackoff
	}

	return true, delay
}

// Incremental grows the delay linearly with the attempt index.
type Incremental struct {
	maxRetries int
	initial    time.Duration
	increment  time.Duration
}

// NewIncremental creates a linear backoff strategy
func NewIncremental(maxRetries int, initial, increment time.Duration) *Incremental {
	return &Incremental{
		maxRetries: maxRetries,
		initial:    initial,
		increment:  increment,
	}
}

// NextDelay returns initial + increment * attempt while attempts remain
func (s *Incremental) NextDelay(attempt int) (bool, time.Duration) {
	if attempt >= s.maxRetries {
		return false, 0
	}
	return true, s.initial + time.Duration(attempt)*s.increment
}
