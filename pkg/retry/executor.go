// Package retry provides the retry executor implementation
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jzx17/goresilient/pkg/types"
)

// Action is a retryable operation.
type Action[T any] func() (T, error)

// ContextAction is a retryable operation observing cancellation.
type ContextAction[T any] func(ctx context.Context) (T, error)

// NoState is the state type for call sites that carry no per-call state.
type NoState struct{}

// EventHandler observes retry events. Implementations must be fast; they
// run synchronously inside the retry loop.
type EventHandler interface {
	// OnAttempt fires before each attempt executes
	OnAttempt(attempt int)
	// OnRetryScheduled fires after a failure that will be retried
	OnRetryScheduled(attempt int, delay time.Duration, err error)
	// OnSuccess fires when an attempt succeeds
	OnSuccess(attempts int, elapsed time.Duration)
	// OnFailure fires when the executor gives up
	OnFailure(attempts int, err error)
}

// MetricsSink receives retry events for aggregation. It replaces shared
// process-wide counters: each executor publishes to whatever sink it was
// constructed with.
type MetricsSink interface {
	RecordAttempt(operation string)
	RecordRetry(operation string, delay time.Duration)
	RecordSuccess(operation string, attempts int)
	RecordFailure(operation string, attempts int)
}

// Executor runs actions under a retry policy. T is the action result type,
// S the caller-owned state type handed to the hooks. The executor itself
// holds no cross-call mutable state and is safe for concurrent use;
// synchronizing a shared S is the caller's job.
type Executor[T, S any] struct {
	name       string
	cfg        Config
	strategy   Strategy
	classifier Classifier
	guard      ThresholdGuard
	onError    func(err error, state S)
	onSuccess  func(result T, state S)
	validate   func(result T) error
	events     EventHandler
	metrics    MetricsSink
	clock      types.Clock
}

// NewExecutor creates an executor from a config. Defaults: the config's
// backoff strategy, an AlwaysTransient classifier, a StopOnElapsed guard
// and the real clock.
func NewExecutor[T, S any](cfg Config, opts ...Option[T, S]) *Executor[T, S] {
	e := &Executor[T, S]{
		name:       "default",
		cfg:        cfg,
		strategy:   cfg.Strategy(),
		classifier: AlwaysTransient{},
		guard:      StopOnElapsed{},
		clock:      types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs the action until it succeeds, the policy declines a retry,
// or the threshold guard aborts. The calling goroutine blocks through every
// delay. Non-retry failures propagate the action's original error
// unchanged.
func (e *Executor[T, S]) Execute(action Action[T], state S) (T, error) {
	return e.run(context.Background(), func(context.Context) (T, error) {
		return action()
	}, state, false)
}

// ExecuteContext is Execute with cooperative cancellation: the signal is
// checked at every loop entry and during delays. An in-flight action is
// never interrupted forcibly.
func (e *Executor[T, S]) ExecuteContext(ctx context.Context, action ContextAction[T], state S) (T, error) {
	return e.run(ctx, action, state, true)
}

// ExecuteAsync runs ExecuteContext on its own goroutine and delivers the
// completion on the returned channel.
func (e *Executor[T, S]) ExecuteAsync(ctx context.Context, action ContextAction[T], state S) <-chan types.Result[T] {
	resultChan := make(chan types.Result[T], 1)

	go func() {
		defer close(resultChan)

		start := e.clock.Now()
		value, err := e.ExecuteContext(ctx, action, state)

		resultChan <- types.Result[T]{
			Value:    value,
			Error:    err,
			Duration: e.clock.Since(start),
		}
	}()

	return resultChan
}

func (e *Executor[T, S]) run(ctx context.Context, action ContextAction[T], state S, cancellable bool) (T, error) {
	var zero T
	start := e.clock.Now()
	attempt := 0

	for {
		if cancellable {
			select {
			case <-ctx.Done():
				return zero, fmt.Errorf("%w: %v", types.ErrOperationCancelled, ctx.Err())
			default:
			}
		}

		elapsed := e.clock.Since(start)
		if e.guard.IsExceeded(e.cfg.ThresholdInterval.Std(), elapsed) {
			err := &types.ThresholdExceededError{
				Threshold: e.cfg.ThresholdInterval.Std(),
				Elapsed:   elapsed,
				Attempts:  attempt,
			}
			e.recordFailure(attempt, err)
			return zero, err
		}

		if e.metrics != nil {
			e.metrics.RecordAttempt(e.name)
		}
		if e.events != nil {
			e.events.OnAttempt(attempt)
		}

		result, err := action(ctx)
		if err == nil && e.validate != nil {
			// a failed validation turns the success into a failure
			err = e.validate(result)
		}
		if err == nil {
			if e.onSuccess != nil {
				e.onSuccess(result, state)
			}
			if e.events != nil {
				e.events.OnSuccess(attempt+1, e.clock.Since(start))
			}
			if e.metrics != nil {
				e.metrics.RecordSuccess(e.name, attempt+1)
			}
			return result, nil
		}

		if e.onError != nil {
			e.onError(err, state)
		}

		if !e.classifier.IsTransient(err) {
			e.recordFailure(attempt+1, err)
			return zero, err
		}

		retry, delay := e.strategy.NextDelay(attempt)
		if !retry {
			e.recordFailure(attempt+1, err)
			return zero, err
		}

		if e.cfg.IncidentRetryLimit > 0 && attempt > e.cfg.IncidentRetryLimit {
			// stop retrying even though the fault is still transient
			incident := &types.IncidentError{Attempts: attempt + 1, Cause: err}
			e.recordFailure(attempt+1, incident)
			return zero, incident
		}

		if attempt == 0 && e.cfg.FastFirstRetry {
			delay = 0
		} else {
			delay = ClampDelay(delay)
		}

		if e.events != nil {
			e.events.OnRetryScheduled(attempt+1, delay, err)
		}
		if e.metrics != nil {
			e.metrics.RecordRetry(e.name, delay)
		}

		attempt++

		if delay > 0 {
			if cancellable {
				timer := e.clock.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return zero, fmt.Errorf("%w: %v", types.ErrOperationCancelled, ctx.Err())
				case <-timer.C():
				}
			} else {
				e.clock.Sleep(delay)
			}
		}
	}
}

func (e *Executor[T, S]) recordFailure(attempts int, err error) {
	if e.events != nil {
		e.events.OnFailure(attempts, err)
	}
	if e.metrics != nil {
		e.metrics.RecordFailure(e.name, attempts)
	}
}

// Option configures an executor.
type Option[T, S any] func(*Executor[T, S])

// WithName sets the operation name reported to the metrics sink
func WithName[T, S any](name string) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.name = name
	}
}

// WithStrategy overrides the backoff strategy built from the config
func WithStrategy[T, S any](s Strategy) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.strategy = s
	}
}

// WithClassifier sets the transient fault classifier
func WithClassifier[T, S any](c Classifier) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.classifier = c
	}
}

// WithGuard sets the threshold guard
func WithGuard[T, S any](g ThresholdGuard) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.guard = g
	}
}

// WithOnError sets the error-observation hook invoked with every failure
// and the caller's state before the retry decision
func WithOnError[T, S any](fn func(err error, state S)) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.onError = fn
	}
}

// WithOnSuccess sets the success-observation hook
func WithOnSuccess[T, S any](fn func(result T, state S)) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.onSuccess = fn
	}
}

// WithValidator sets a result validation hook; a non-nil return converts
// the attempt's success into a failure
func WithValidator[T, S any](fn func(result T) error) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.validate = fn
	}
}

// WithEventHandler sets the event handler
func WithEventHandler[T, S any](h EventHandler) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.events = h
	}
}

// WithMetricsSink sets the metrics sink
func WithMetricsSink[T, S any](m MetricsSink) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.metrics = m
	}
}

// WithClock sets the clock for time operations
func WithClock[T, S any](clock types.Clock) Option[T, S] {
	return func(e *Executor[T, S]) {
		e.clock = clock
	}
}

// SlogEventHandler logs retry events through log/slog.
type SlogEventHandler struct {
	logger *slog.Logger
}

// NewSlogEventHandler creates an event handler backed by logger
func NewSlogEventHandler(logger *slog.Logger) *SlogEventHandler {
	return &SlogEventHandler{logger: logger}
}

// OnAttempt handles attempt events
func (h *SlogEventHandler) OnAttempt(attempt int) {
	h.logger.Debug("attempt starting", "attempt", attempt)
}

// OnRetryScheduled handles retry events
func (h *SlogEventHandler) OnRetryScheduled(attempt int, delay time.Duration, err error) {
	h.logger.Warn("retrying after failure", "attempt", attempt, "delay", delay, "error", err)
}

// OnSuccess handles success events
func (h *SlogEventHandler) OnSuccess(attempts int, elapsed time.Duration) {
	h.logger.Debug("succeeded", "attempts", attempts, "elapsed", elapsed)
}

// OnFailure handles give-up events
func (h *SlogEventHandler) OnFailure(attempts int, err error) {
	h.logger.Error("giving up", "attempts", attempts, "error", err)
}
