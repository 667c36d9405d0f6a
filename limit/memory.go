package limit

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often MemoryStore evicts expired entries.
const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a mutex-guarded map of fixed-window counters with a
// background sweep that evicts expired entries, bounding memory to the set of
// currently active keys.
//
// Limits are enforced per process: N instances each admit up to MaxRequests,
// so the effective global budget is N×MaxRequests. Use RedisStore when that
// matters.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*entry
	now        func() time.Time
	sweepEvery time.Duration
	done       chan struct{}
	closed     sync.Once
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithSweepInterval overrides the sweep period.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

// WithClock substitutes the time source. Test hook.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates the store and starts its sweep goroutine. The sweep
// is owned by the store: Close stops it, making teardown deterministic.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]*entry),
		now:        time.Now,
		sweepEvery: DefaultSweepInterval,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.sweepLoop()
	return s
}

// Check implements Store with fixed-window semantics. A denied request does
// not increment the counter, so denials are idempotent under retries and
// cannot extend the window.
func (s *MemoryStore) Check(_ context.Context, key string, cfg Config) (Decision, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		resetAt := now.Add(cfg.Interval)
		s.entries[key] = &entry{count: 1, resetAt: resetAt}
		return Decision{
			Allowed:   true,
			Remaining: cfg.MaxRequests - 1,
			ResetIn:   cfg.Interval,
			ResetAt:   resetAt,
		}, nil
	}
	if e.count >= cfg.MaxRequests {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetIn:   e.resetAt.Sub(now),
			ResetAt:   e.resetAt,
		}, nil
	}
	e.count++
	return Decision{
		Allowed:   true,
		Remaining: cfg.MaxRequests - e.count,
		ResetIn:   e.resetAt.Sub(now),
		ResetAt:   e.resetAt,
	}, nil
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closed.Do(func() { close(s.done) })
	return nil
}

// Len reports the number of live entries. Test hook; not part of Store.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, key)
		}
	}
}
