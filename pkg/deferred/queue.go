// Package deferred batches many timeout registrations under one periodic
// sweep instead of dedicating a timer per waiter.
package deferred

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jzx17/goresilient/pkg/types"
)

const (
	// DefaultSweepInterval bounds how late a callback can fire
	DefaultSweepInterval = 50 * time.Millisecond

	// DefaultInitialDelay is the wait before the first sweep
	DefaultInitialDelay = 500 * time.Millisecond
)

// Callback is a zero-argument timeout notification.
type Callback func()

type registration struct {
	id uuid.UUID
	fn Callback
}

// Queue groups registrations into buckets keyed by their exact deadline
// and fires every bucket whose deadline has passed on each sweep, each
// bucket exactly once. Precision is bounded by the sweep interval; the
// structure is meant for many concurrent waiters that do not need
// sub-interval accuracy.
type Queue struct {
	mu      sync.Mutex
	buckets map[int64][]registration

	clock        types.Clock
	sweepEvery   time.Duration
	initialDelay time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// QueueOption configures a queue.
type QueueOption func(*Queue)

// WithSweepInterval sets the interval between sweeps
func WithSweepInterval(d time.Duration) QueueOption {
	return func(q *Queue) {
		q.sweepEvery = d
	}
}

// WithInitialDelay sets the wait before the first sweep
func WithInitialDelay(d time.Duration) QueueOption {
	return func(q *Queue) {
		q.initialDelay = d
	}
}

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) QueueOption {
	return func(q *Queue) {
		q.clock = clock
	}
}

// NewQueue creates a queue and starts its sweep goroutine.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		buckets:      make(map[int64][]registration),
		clock:        types.NewRealClock(),
		sweepEvery:   DefaultSweepInterval,
		initialDelay: DefaultInitialDelay,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	go q.sweepLoop()

	return q
}

// Enqueue registers fn to fire once deadline has passed, on the sweep
// following it. Registrations sharing an exact deadline land in the same
// bucket and fire together, in enqueue order. The returned handle can
// withdraw the registration with Cancel.
func (q *Queue) Enqueue(deadline time.Time, fn Callback) uuid.UUID {
	id := uuid.New()
	key := deadline.UnixNano()

	q.mu.Lock()
	q.buckets[key] = append(q.buckets[key], registration{id: id, fn: fn})
	q.mu.Unlock()

	return id
}

// EnqueueAfter registers fn to fire once d has elapsed.
func (q *Queue) EnqueueAfter(d time.Duration, fn Callback) uuid.UUID {
	return q.Enqueue(q.clock.Now().Add(d), fn)
}

// Cancel withdraws a pending registration. It reports false when the
// registration already fired, was cancelled before, or never existed.
func (q *Queue) Cancel(id uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for key, regs := range q.buckets {
		for i, reg := range regs {
			if reg.id != id {
				continue
			}
			regs = append(regs[:i], regs[i+1:]...)
			if len(regs) == 0 {
				delete(q.buckets, key)
			} else {
				q.buckets[key] = regs
			}
			return true
		}
	}
	return false
}

// HasPending reports whether any bucket remains.
func (q *Queue) HasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buckets) > 0
}

// Len returns the number of pending registrations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, regs := range q.buckets {
		n += len(regs)
	}
	return n
}

// Stop halts the sweep goroutine. Pending registrations never fire after
// Stop returns. Stop is idempotent.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	<-q.done
}

func (q *Queue) sweepLoop() {
	defer close(q.done)

	initial := q.clock.NewTimer(q.initialDelay)
	select {
	case <-q.stop:
		initial.Stop()
		return
	case <-initial.C():
	}

	q.sweep(q.clock.Now())

	ticker := q.clock.NewTicker(q.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case now := <-ticker.C():
			q.sweep(now)
		}
	}
}

// sweep consumes every bucket with key <= now in ascending order and fires
// its registrations. Consumed buckets are removed before the callbacks run,
// so a bucket is never visited twice.
func (q *Queue) sweep(now time.Time) {
	cutoff := now.UnixNano()

	q.mu.Lock()
	var due []int64
	for key := range q.buckets {
		if key <= cutoff {
			due = append(due, key)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })

	var fired []registration
	for _, key := range due {
		fired = append(fired, q.buckets[key]...)
		delete(q.buckets, key)
	}
	q.mu.Unlock()

	// callbacks run on the sweep goroutine, outside the lock, so they may
	// re-enqueue without deadlocking
	for _, reg := range fired {
		reg.fn()
	}
}
