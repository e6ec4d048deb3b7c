package retry

import "time"

// ThresholdGuard caps the total wall-clock time of one logical call. The
// executor consults it before every attempt, including the first.
type ThresholdGuard interface {
	// IsExceeded reports whether elapsed has passed threshold
	IsExceeded(threshold, elapsed time.Duration) bool
}

// AllowAll never aborts.
type AllowAll struct{}

// IsExceeded always returns false
func (AllowAll) IsExceeded(threshold, elapsed time.Duration) bool {
	return false
}

// StopOnElapsed aborts once elapsed time passes the threshold. A threshold
// of zero or less is exceeded by the first pre-attempt check, so the call
// aborts without executing at all.
type StopOnElapsed struct{}

// IsExceeded returns elapsed > threshold
func (StopOnElapsed) IsExceeded(threshold, elapsed time.Duration) bool {
	return elapsed > threshold
}
