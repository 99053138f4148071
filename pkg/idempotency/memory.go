package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	fingerprint string
	resp        *CachedResponse
	committedAt time.Time
	// ready is closed once the reserving caller commits or aborts.
	ready chan struct{}
	done  bool
}

// MemoryStore is the default process-local Store. Committed entries
// expire ttl after commit and are pruned lazily on Begin.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Begin(ctx context.Context, key, fingerprint string) (Outcome, *CachedResponse, error) {
	for {
		s.mu.Lock()
		s.cleanupExpiredLocked()

		e, ok := s.entries[key]
		if !ok {
			s.entries[key] = &entry{
				fingerprint: fingerprint,
				ready:       make(chan struct{}),
			}
			s.mu.Unlock()
			return Proceed, nil, nil
		}

		if e.fingerprint != fingerprint {
			s.mu.Unlock()
			return Conflict, nil, nil
		}

		if e.resp != nil {
			resp := e.resp
			s.mu.Unlock()
			return Replay, resp, nil
		}

		// Same key, same fingerprint, execution still in flight: wait
		// for the winner, then re-check. An aborted winner removes the
		// entry, letting this caller take the reservation.
		ready := e.ready
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Proceed, nil, ctx.Err()
		case <-ready:
		}
	}
}

func (s *MemoryStore) Commit(_ context.Context, key string, resp *CachedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil
	}

	e.resp = resp
	e.committedAt = s.now()
	if !e.done {
		e.done = true
		close(e.ready)
	}
	return nil
}

func (s *MemoryStore) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil
	}

	delete(s.entries, key)
	if !e.done {
		e.done = true
		close(e.ready)
	}
	return nil
}

// cleanupExpiredLocked drops committed entries older than ttl. Pending
// reservations never expire here; they resolve through Commit or Abort.
func (s *MemoryStore) cleanupExpiredLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for key, e := range s.entries {
		if e.resp != nil && now.Sub(e.committedAt) > s.ttl {
			delete(s.entries, key)
		}
	}
}
