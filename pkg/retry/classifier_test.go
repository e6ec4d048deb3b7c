package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jzx17/goresilient/pkg/types"
)

// timeoutError implements net.Error
type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: handshake stalled" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestAlwaysTransient(t *testing.T) {
	c := AlwaysTransient{}

	if c.IsTransient(nil) {
		t.Error("Expected nil to not be transient")
	}
	if !c.IsTransient(errors.New("anything")) {
		t.Error("Expected any error to be transient")
	}
}

func TestTransportClassifier_ContextSignals(t *testing.T) {
	c := NewTransportClassifier()

	if !c.IsTransient(context.DeadlineExceeded) {
		t.Error("Expected deadline exceeded to be transient")
	}
	if !c.IsTransient(fmt.Errorf("store read: %w", context.Canceled)) {
		t.Error("Expected wrapped cancellation to be transient")
	}
}

func TestTransportClassifier_StatusCodes(t *testing.T) {
	c := NewTransportClassifier()

	if !c.IsTransient(types.NewStatusError(503, "upstream restarting")) {
		t.Error("Expected 503 to be transient")
	}
	if !c.IsTransient(fmt.Errorf("call failed: %w", types.NewStatusError(408, "slow"))) {
		t.Error("Expected wrapped 408 to be transient")
	}
	if c.IsTransient(types.NewStatusError(404, "missing")) {
		t.Error("Expected 404 to not be transient")
	}
}

func TestTransportClassifier_NetTimeout(t *testing.T) {
	c := NewTransportClassifier()

	if !c.IsTransient(fmt.Errorf("read: %w", timeoutError{})) {
		t.Error("Expected net timeout to be transient")
	}
}

func TestTransportClassifier_ExplicitMark(t *testing.T) {
	c := NewTransportClassifier()

	if !c.IsTransient(types.MarkTransient(errors.New("weird but retryable"))) {
		t.Error("Expected marked error to be transient")
	}
	if c.IsTransient(errors.New("weird and fatal")) {
		t.Error("Expected unmarked error to not be transient")
	}
}

func TestTransportClassifier_BuiltinDenylist(t *testing.T) {
	c := NewTransportClassifier()

	if !c.IsTransient(errors.New("write tcp 10.0.0.1:443: connection reset by peer")) {
		t.Error("Expected denylisted message to be transient")
	}
}

func TestDenylistClassifier_RoundTrip(t *testing.T) {
	c := NewDenylistClassifier("Request rate is large")

	cases := []struct {
		msg  string
		want bool
	}{
		{"Request rate is large", true},
		{"cosmos: Request rate is large, retry later", true},
		{"request rate is large", false}, // case-sensitive
		{"rate exceeded", false},
	}

	for _, tc := range cases {
		if got := c.IsTransient(errors.New(tc.msg)); got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.msg, tc.want, got)
		}
	}

	if c.IsTransient(nil) {
		t.Error("Expected nil to not be transient")
	}
}

func TestThrottleClassifier(t *testing.T) {
	c := ThrottleClassifier{}

	if !c.IsTransient(types.NewStatusError(429, "request rate is large")) {
		t.Error("Expected 429 to be transient")
	}
	if !c.IsTransient(fmt.Errorf("upsert: %w", types.NewStatusError(429, "throttled"))) {
		t.Error("Expected wrapped 429 to be transient")
	}
	if c.IsTransient(types.NewStatusError(503, "unavailable")) {
		t.Error("Expected 503 to not be throttling")
	}
	if c.IsTransient(errors.New("plain failure")) {
		t.Error("Expected codeless error to not be throttling")
	}
	if c.IsTransient(nil) {
		t.Error("Expected nil to not be transient")
	}
}

func TestRootCause(t *testing.T) {
	inner := errors.New("disk full")
	chain := fmt.Errorf("layer two: %w", fmt.Errorf("layer one: %w", inner))

	if RootCause(chain) != inner {
		t.Errorf("Expected innermost error, got %v", RootCause(chain))
	}
	if RootCause(inner) != inner {
		t.Error("Expected unwrapped error to be its own root")
	}

	// aggregate wrappers follow the first branch
	first := errors.New("first")
	joined := errors.Join(first, errors.New("second"))
	if RootCause(joined) != first {
		t.Errorf("Expected first branch of aggregate, got %v", RootCause(joined))
	}
}

func TestStatusCode(t *testing.T) {
	if code, ok := StatusCode(types.NewStatusError(429, "x")); !ok || code != 429 {
		t.Errorf("Expected (429, true), got (%d, %v)", code, ok)
	}
	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("Expected no status code on plain error")
	}
}
