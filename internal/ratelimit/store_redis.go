package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript implements the token bucket atomically server-side. The clock is
// passed in so concurrent instances agree on refill arithmetic regardless of
// script execution time.
var takeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'updated')
local tokens = tonumber(state[1])
local updated = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  updated = now
end

local elapsed = now - updated
if elapsed > 0 then
  tokens = math.min(capacity, tokens + elapsed * rate)
end

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'updated', tostring(now))
redis.call('EXPIRE', key, ttl)
return {allowed, tostring(tokens)}
`)

// RedisStore keeps token buckets in redis so limits hold across instances.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

type RedisStoreOption func(*RedisStore)

func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Take(ctx context.Context, key string, limit Limit) (*Result, error) {
	now := s.now()
	nowSeconds := float64(now.UnixNano()) / float64(time.Second)

	// Keys expire two windows after the last touch so idle buckets clean
	// themselves up.
	ttl := int(limit.Window.Seconds()) * 2
	if ttl < 1 {
		ttl = 1
	}

	raw, err := takeScript.Run(ctx, s.client, []string{key},
		limit.Requests,
		limit.Rate(),
		nowSeconds,
		ttl,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("run token bucket script: %w", err)
	}

	values, ok := raw.([]any)
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected token bucket reply %T", raw)
	}
	allowed, ok := values[0].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected allowed flag %T", values[0])
	}
	tokensStr, ok := values[1].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected token count %T", values[1])
	}
	tokens, err := strconv.ParseFloat(tokensStr, 64)
	if err != nil {
		return nil, fmt.Errorf("parse token count %q: %w", tokensStr, err)
	}

	result := &Result{
		Allowed:   allowed == 1,
		Limit:     limit.Requests,
		Remaining: int(tokens),
		ResetAt:   resetAt(now, tokens, limit),
	}
	if !result.Allowed {
		result.RetryAfter = retryAfter(tokens, limit.Rate())
	}
	return result, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete bucket %s: %w", key, err)
	}
	return nil
}
