package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryStore keeps token buckets in process memory. Suitable for a single
// node; shared deployments should use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens  float64
	updated time.Time
}

type MemoryStoreOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Take(ctx context.Context, key string, limit Limit) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(limit.Requests), updated: now}
		s.buckets[key] = b
	}

	rate := limit.Rate()
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(limit.Requests), b.tokens+elapsed*rate)
	}
	b.updated = now

	result := &Result{Limit: limit.Requests}
	if b.tokens >= 1 {
		b.tokens--
		result.Allowed = true
	} else {
		result.RetryAfter = retryAfter(b.tokens, rate)
	}
	result.Remaining = int(b.tokens)
	result.ResetAt = resetAt(now, b.tokens, limit)
	return result, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Len reports the number of live buckets.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// retryAfter is the whole number of seconds until one token is available,
// rounded up so clients never retry early.
func retryAfter(tokens, rate float64) int {
	if rate <= 0 {
		return 0
	}
	return int(math.Ceil((1 - tokens) / rate))
}

// resetAt is the time at which the bucket is full again.
func resetAt(now time.Time, tokens float64, limit Limit) time.Time {
	rate := limit.Rate()
	if rate <= 0 {
		return now
	}
	deficit := float64(limit.Requests) - tokens
	return now.Add(time.Duration(deficit / rate * float64(time.Second)))
}
