// Package retry implements the resilience engine: a retry executor with
// pluggable backoff strategies, transient fault classifiers and an
// elapsed-time threshold guard.
//
// Key Features:
//
// 1. Backoff strategies:
//   - NoRetry: never retry
//   - FixedInterval: same wait between every retry
//   - ExponentialJitter: (2^n-1) scaled by a fresh random draw, bounded by min/max
//   - Incremental: linear growth
//
// All delays are clamped into [0, MaxClampDelay] before waiting.
//
// 2. Transient fault classifiers:
//   - AlwaysTransient: every error retries (default)
//   - TransportClassifier: cancellation/timeout signals, transport failures,
//     503s and a message denylist
//   - ThrottleClassifier: 429 only, for failover decisions
//
// 3. Threshold guard:
//   - AllowAll: no elapsed-time cap
//   - StopOnElapsed: abort once total elapsed time passes the configured
//     threshold, checked before every attempt
//
// 4. Retry executor:
//   - Blocking Execute, cancellable ExecuteContext, channel-based ExecuteAsync
//   - Statically typed per-call state handed to onError/onSuccess hooks
//   - Result validation hook that can turn a success into a failure
//   - Event handler and metrics sink capabilities
//   - Clock injection for deterministic tests
//
// Basic usage:
//
//	cfg := retry.DefaultConfig()
//	executor := retry.NewExecutor[string, retry.NoState](cfg)
//
//	result, err := executor.Execute(func() (string, error) {
//		return fetchDocument()
//	}, retry.NoState{})
//
// Failover-aware usage:
//
//	st := failover.NewState()
//	executor := retry.NewExecutor[string, *failover.State](cfg,
//		retry.WithClassifier[string, *failover.State](retry.NewTransportClassifier()),
//		retry.WithOnError[string, *failover.State](failover.ErrorHook(regions, nil)),
//	)
//	result, err := executor.Execute(readFromCurrentRegion(st), st)
//
// Error contract:
//
// When the classifier or strategy declines a retry, the action's original
// error is returned unchanged so callers can keep matching on its type. The
// executor only substitutes its own error types for threshold aborts
// (types.ThresholdExceededError), incident-limit aborts (types.IncidentError)
// and external cancellation (types.ErrOperationCancelled).
//
// Thread safety:
//
// Executors hold no cross-call mutable state; one executor may serve many
// goroutines. Attempts of a single call are strictly sequential.
package retry
