// Package ratelimit limits how often each user may generate copy, using a
// token bucket kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix is the Redis key prefix for per-user generation buckets.
	keyPrefix = "nouscopy:ratelimit:generate:"
	// keyTTL is how long an idle bucket is kept.
	keyTTL = 120 * time.Second
)

// Result contains the result of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Limiter limits generations per user. A nil *Limiter allows everything.
type Limiter struct {
	client    *redis.Client
	perMinute int
	burst     int
}

// New connects to Redis at redisURL. An empty URL or a non-positive rate
// disables limiting and returns a nil Limiter.
func New(ctx context.Context, redisURL string, perMinute, burst int) (*Limiter, error) {
	if redisURL == "" || perMinute <= 0 {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client, perMinute, burst), nil
}

// NewWithClient creates a Limiter on an existing Redis client. A burst
// below one is raised to one.
func NewWithClient(client *redis.Client, perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{client: client, perMinute: perMinute, burst: burst}
}

// Allow takes one token from the user's bucket. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, userID string) Result {
	if l == nil {
		return Result{Allowed: true}
	}

	rate := float64(l.perMinute) / 60.0
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{keyPrefix + userID},
		rate, l.burst, time.Now().Unix(), int(keyTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		slog.Warn("rate limit check failed, allowing request", "error", err, "user_id", userID)
		return Result{Allowed: true, Remaining: int64(l.burst)}
	}

	return Result{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Second,
		Remaining:  res[2],
	}
}

// Close closes the Redis client. Closing a nil Limiter is a no-op.
func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}
