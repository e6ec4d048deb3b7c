// Package metrics provides a Prometheus-backed metrics sink for the retry
// executor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromSink implements retry.MetricsSink on Prometheus collectors, labelled
// by operation name.
type PromSink struct {
	attempts  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	delay     *prometheus.HistogramVec
}

// NewPromSink registers the retry collectors with reg and returns the sink.
// Pass prometheus.DefaultRegisterer for the default registry.
func NewPromSink(reg prometheus.Registerer) *PromSink {
	factory := promauto.With(reg)

	return &PromSink{
		attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resilient_attempts_total",
				Help: "Total number of attempts, including first tries",
			},
			[]string{"operation"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resilient_retries_total",
				Help: "Total number of scheduled retries",
			},
			[]string{"operation"},
		),
		successes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resilient_successes_total",
				Help: "Total number of calls that eventually succeeded",
			},
			[]string{"operation"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resilient_failures_total",
				Help: "Total number of calls that gave up",
			},
			[]string{"operation"},
		),
		delay: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resilient_retry_delay_seconds",
				Help:    "Backoff delay applied before each retry",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAttempt counts one attempt
func (s *PromSink) RecordAttempt(operation string) {
	s.attempts.WithLabelValues(operation).Inc()
}

// RecordRetry counts one retry and observes its delay
func (s *PromSink) RecordRetry(operation string, delay time.Duration) {
	s.retries.WithLabelValues(operation).Inc()
	s.delay.WithLabelValues(operation).Observe(delay.Seconds())
}

// RecordSuccess counts one eventual success
func (s *PromSink) RecordSuccess(operation string, attempts int) {
	s.successes.WithLabelValues(operation).Inc()
}

// RecordFailure counts one abandoned call
func (s *PromSink) RecordFailure(operation string, attempts int) {
	s.failures.WithLabelValues(operation).Inc()
}
