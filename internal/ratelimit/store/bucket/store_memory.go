package bucket

import (
	"context"
	"sync"
	"time"

	"rentwise/internal/ratelimit/models"
)

// InMemory is a per-process sliding window store. Limits are not shared
// between replicas; use Redis for that.
type InMemory struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

type MemoryOption func(*InMemory)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemory) {
		s.now = now
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records a request under key if the window has room.
func (s *InMemory) Allow(_ context.Context, key string, limit models.Limit) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	timestamps := evict(s.windows[key], now.Add(-limit.Window))

	allowed := len(timestamps) < limit.Requests
	if allowed {
		timestamps = append(timestamps, now)
	}
	if len(timestamps) == 0 {
		delete(s.windows, key)
	} else {
		s.windows[key] = timestamps
	}

	var oldest time.Time
	if len(timestamps) > 0 {
		oldest = timestamps[0]
	}
	return models.NewResult(limit, allowed, len(timestamps), oldest, now), nil
}

// evict drops timestamps at or before cutoff. timestamps is ascending.
func evict(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(timestamps); i++ {
		if timestamps[i].After(cutoff) {
			break
		}
	}
	return timestamps[i:]
}
