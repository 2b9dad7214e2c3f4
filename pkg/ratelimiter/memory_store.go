package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens   int
	refilled time.Time
	touched  time.Time
}

// MemoryStore keeps buckets in a map. Stale buckets are dropped lazily on
// every sweepEvery-th call.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
	now     func() time.Time
}

const sweepEvery = 1024

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket), now: time.Now}
}

// Consume implements Store.
func (s *MemoryStore) Consume(_ context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now, cfg.ttl())
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, refilled: now}
		s.buckets[key] = b
	}

	// Advance by whole intervals only so partial progress is kept.
	if intervals := int(now.Sub(b.refilled) / cfg.RefillInterval); intervals > 0 {
		full := (cfg.Capacity + cfg.RefillRate - 1) / cfg.RefillRate
		b.tokens = min(b.tokens+min(intervals, full)*cfg.RefillRate, cfg.Capacity)
		b.refilled = b.refilled.Add(time.Duration(intervals) * cfg.RefillInterval)
	}
	b.touched = now

	remaining := b.tokens - n
	if remaining >= 0 {
		b.tokens = remaining
	}
	return remaining, b.refilled.Add(cfg.RefillInterval), nil
}

func (s *MemoryStore) sweep(now time.Time, ttl time.Duration) {
	for key, b := range s.buckets {
		if now.Sub(b.touched) > ttl {
			delete(s.buckets, key)
		}
	}
}
