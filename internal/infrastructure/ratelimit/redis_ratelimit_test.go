package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimiter(t *testing.T) (*RedisRateLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRedisRateLimiter(client, "explorer:", zap.NewNop())
	limiter.now = func() time.Time { return clock }

	return limiter, mr, &clock
}

func TestRedisRateLimiter_BurstWithinSameMillisecond(t *testing.T) {
	limiter, _, _ := newLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per identifier")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	limiter, _, clock := newLimiter(t)
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "client", 1, time.Second)
	assert.True(t, allowed)

	*clock = clock.Add(500 * time.Millisecond)
	allowed, _ = limiter.Allow(ctx, "client", 1, time.Second)
	assert.False(t, allowed)

	*clock = clock.Add(600 * time.Millisecond)
	allowed, _ = limiter.Allow(ctx, "client", 1, time.Second)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	limiter, mr, _ := newLimiter(t)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "client", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("explorer:ratelimit:client"))

	require.NoError(t, limiter.Reset(ctx, "client"))

	allowed, err := limiter.Allow(ctx, "client", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_RedisDown(t *testing.T) {
	limiter, mr, _ := newLimiter(t)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "client", 1, time.Minute)

	assert.Error(t, err)
}
