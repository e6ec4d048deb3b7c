// Package failover tracks which alternate region a throttled logical
// request is currently targeting.
package failover

import (
	"sync"

	"github.com/jzx17/goresilient/pkg/types"
)

// State is the per-request failover cursor. Create one State per logical
// request and drive it from the executor's error hook; it must not be
// shared across concurrent requests.
type State struct {
	mu          sync.Mutex
	attempt     uint16
	regionIndex int
	regions     []string
	lastErr     error
}

// NewState creates a cursor pointing at the primary region.
func NewState() *State {
	return &State{regionIndex: -1}
}

// Attempts returns how many retries this request has gone through.
func (s *State) Attempts() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// LastError returns the most recently recorded error.
func (s *State) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// IsPrimaryRegion reports whether no failover has happened yet.
func (s *State) IsPrimaryRegion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionIndex == -1
}

// HasRegionSequence reports whether the fallback sequence has been seeded.
func (s *State) HasRegionSequence() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regions != nil
}

// SetRegionSequence seeds the ordered fallback regions. The slice is copied
// in. Only the first call has any effect; the sequence is immutable once
// set.
func (s *State) SetRegionSequence(regions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.regions != nil {
		return
	}
	s.regions = make([]string, len(regions))
	copy(s.regions, regions)
}

// WillRetry records a same-region retry.
func (s *State) WillRetry(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempt++
	s.lastErr = err
}

// WillRetryNextRegion advances the cursor to the next fallback region and
// records the retry. It returns ErrRegionsExhausted when the sequence is
// unset or the new index runs off its end.
func (s *State) WillRetryNextRegion(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regionIndex++
	s.attempt++
	s.lastErr = err

	if s.regions == nil || s.regionIndex >= len(s.regions) {
		return types.ErrRegionsExhausted
	}
	return nil
}

// CurrentRegion returns the region the next attempt should target. On the
// primary region, or past the end of the sequence, it returns
// ErrRegionsExhausted rather than a silent default.
func (s *State) CurrentRegion() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.regions == nil || s.regionIndex < 0 || s.regionIndex >= len(s.regions) {
		return "", types.ErrRegionsExhausted
	}
	return s.regions[s.regionIndex], nil
}
