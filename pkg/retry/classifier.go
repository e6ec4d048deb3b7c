// Package retry provides transient fault classification
package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/jzx17/goresilient/pkg/types"
)

// Classifier decides whether an error is safe to retry.
type Classifier interface {
	// IsTransient reports whether the error is retryable
	IsTransient(err error) bool
}

// statusCoder is the shape status-carrying errors expose.
type statusCoder interface {
	StatusCode() int
}

// RootCause unwraps single and multi wrappers down to the innermost error.
// When a node wraps several errors the first branch is followed.
func RootCause(err error) error {
	for err != nil {
		switch unwrapped := err.(type) {
		case interface{ Unwrap() error }:
			inner := unwrapped.Unwrap()
			if inner == nil {
				return err
			}
			err = inner
		case interface{ Unwrap() []error }:
			inners := unwrapped.Unwrap()
			if len(inners) == 0 || inners[0] == nil {
				return err
			}
			err = inners[0]
		default:
			return err
		}
	}
	return err
}

// StatusCode extracts a status code from anywhere in the error chain.
func StatusCode(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

// AlwaysTransient treats every error as retryable. This is the default
// classifier.
type AlwaysTransient struct{}

// IsTransient returns true for any non-nil error
func (AlwaysTransient) IsTransient(err error) bool {
	return err != nil
}

// defaultDenylist holds provider failure messages known to be retryable.
// Matching is case-sensitive substring matching against the full message.
var defaultDenylist = []string{
	"request rate is large",
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"service unavailable",
}

// TransportClassifier retries cancellation/timeout signals, transport-level
// failures, service-unavailable statuses, explicitly marked transient
// errors, and anything whose message contains a denylisted substring.
type TransportClassifier struct {
	denylist []string
}

// NewTransportClassifier creates a transport classifier. Extra denylist
// entries are appended to the built-in list.
func NewTransportClassifier(extra ...string) *TransportClassifier {
	denylist := make([]string, 0, len(defaultDenylist)+len(extra))
	denylist = append(denylist, defaultDenylist...)
	denylist = append(denylist, extra...)
	return &TransportClassifier{denylist: denylist}
}

// NewDenylistClassifier creates a transport classifier matching only the
// given substrings, without the built-in entries.
func NewDenylistClassifier(entries ...string) *TransportClassifier {
	denylist := make([]string, len(entries))
	copy(denylist, entries)
	return &TransportClassifier{denylist: denylist}
}

// IsTransient reports whether the error is retryable
func (c *TransportClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if types.IsMarkedTransient(err) {
		return true
	}

	cause := RootCause(err)

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if code, ok := StatusCode(err); ok {
		if code == http.StatusServiceUnavailable || code == http.StatusRequestTimeout {
			return true
		}
	}

	msg := err.Error()
	for _, entry := range c.denylist {
		if entry != "" && strings.Contains(msg, entry) {
			return true
		}
	}

	return false
}

// ThrottleClassifier retries only "too many requests" statuses. It is the
// classifier failover hooks use to tell throttling from ordinary faults.
type ThrottleClassifier struct{}

// IsTransient returns true only for a 429 status
func (ThrottleClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	code, ok := StatusCode(err)
	return ok && code == http.StatusTooManyRequests
}
