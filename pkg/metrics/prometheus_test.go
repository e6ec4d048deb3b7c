package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPromSink_Counters(t *testing.T) {
	sink := NewPromSink(prometheus.NewRegistry())

	sink.RecordAttempt("upsert")
	sink.RecordAttempt("upsert")
	sink.RecordRetry("upsert", 100*time.Millisecond)
	sink.RecordSuccess("upsert", 2)
	sink.RecordFailure("read", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.attempts.WithLabelValues("upsert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.retries.WithLabelValues("upsert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.successes.WithLabelValues("upsert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failures.WithLabelValues("read")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.failures.WithLabelValues("upsert")))
}

func TestPromSink_DelayHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPromSink(reg)

	sink.RecordRetry("upsert", 250*time.Millisecond)
	sink.RecordRetry("upsert", 2*time.Second)

	count := testutil.CollectAndCount(sink.delay, "resilient_retry_delay_seconds")
	assert.Equal(t, 1, count, "one labelled series expected")
}

func TestPromSink_SeparateRegistries(t *testing.T) {
	// two sinks on distinct registries must not collide
	a := NewPromSink(prometheus.NewRegistry())
	b := NewPromSink(prometheus.NewRegistry())

	a.RecordAttempt("op")
	assert.Equal(t, 1.0, testutil.ToFloat64(a.attempts.WithLabelValues("op")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.attempts.WithLabelValues("op")))
}
