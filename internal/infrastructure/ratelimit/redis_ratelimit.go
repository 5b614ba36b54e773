// Package ratelimit provides distributed sliding-window rate limiting on Redis,
// so the limit holds across every instance of the service.
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// slidingWindow keeps one sorted-set member per accepted request, scored by its
// arrival time in milliseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

if redis.call('ZCARD', key) < limit then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, window)
    return 1
end

return 0
`)

// RedisRateLimiter implements ports.RateLimitService.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

var _ ports.RateLimitService = (*RedisRateLimiter)(nil)

// NewRedisRateLimiter creates a limiter whose keys live under prefix+"ratelimit:".
func NewRedisRateLimiter(client *redis.Client, prefix string, logger *zap.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: prefix + "ratelimit:",
		now:    time.Now,
		logger: logger,
	}
}

// Allow records the request and reports whether identifier is still within
// limit requests per window.
func (r *RedisRateLimiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	ctx, span := otel.Tracer("ratelimit").Start(ctx, "RateLimit.Allow")
	defer span.End()

	span.SetAttributes(
		attribute.String("ratelimit.identifier", identifier),
		attribute.Int("ratelimit.limit", limit),
		attribute.String("ratelimit.window", window.String()),
	)

	result, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + identifier},
		limit, window.Milliseconds(), r.now().UnixMilli(), uuid.NewString(),
	).Int()

	if err != nil {
		span.RecordError(err)
		r.logger.Error("rate limit eval error", zap.String("identifier", identifier), zap.Error(err))

		return false, err
	}

	allowed := result == 1
	span.SetAttributes(attribute.Bool("ratelimit.allowed", allowed))

	if !allowed {
		r.logger.Debug("rate limit exceeded", zap.String("identifier", identifier), zap.Int("limit", limit))
	}

	return allowed, nil
}

// Reset forgets the request history of identifier.
func (r *RedisRateLimiter) Reset(ctx context.Context, identifier string) error {
	ctx, span := otel.Tracer("ratelimit").Start(ctx, "RateLimit.Reset")
	defer span.End()

	span.SetAttributes(attribute.String("ratelimit.identifier", identifier))

	if err := r.client.Del(ctx, r.prefix+identifier).Err(); err != nil {
		span.RecordError(err)
		r.logger.Error("rate limit reset error", zap.String("identifier", identifier), zap.Error(err))

		return err
	}

	return nil
}
