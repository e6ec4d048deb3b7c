package retry

import (
	"testing"
	"time"
)

func TestAllowAll(t *testing.T) {
	g := AllowAll{}

	if g.IsExceeded(0, time.Hour) {
		t.Error("Expected AllowAll to never report exceeded")
	}
	if g.IsExceeded(time.Second, 2*time.Second) {
		t.Error("Expected AllowAll to never report exceeded")
	}
}

func TestStopOnElapsed(t *testing.T) {
	g := StopOnElapsed{}

	if g.IsExceeded(time.Second, 500*time.Millisecond) {
		t.Error("Expected elapsed below threshold to pass")
	}
	if g.IsExceeded(time.Second, time.Second) {
		t.Error("Expected elapsed equal to threshold to pass")
	}
	if !g.IsExceeded(time.Second, time.Second+time.Nanosecond) {
		t.Error("Expected elapsed above threshold to be exceeded")
	}

	// a zero threshold is exceeded by any positive elapsed time
	if !g.IsExceeded(0, time.Nanosecond) {
		t.Error("Expected zero threshold to be exceeded immediately")
	}
}
