// Package services implements the core use cases: geocoding, current weather,
// places search and favorites. Every operation returns a domain.Result.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// CacheRecorder receives cache hit and miss notifications, keyed by namespace.
type CacheRecorder interface {
	RecordCacheHit(ctx context.Context, namespace string)
	RecordCacheMiss(ctx context.Context, namespace string)
}

// ResultCache stores Results in a CacheService and collapses concurrent
// computations of the same key into a single call.
type ResultCache struct {
	store      ports.CacheService
	failureTTL time.Duration
	recorder   CacheRecorder
	logger     *zap.Logger
	group      singleflight.Group
}

// NewResultCache creates a ResultCache on top of store.
//
// API errors are kept for at most failureTTL; a non-positive failureTTL keeps
// them for the full TTL of the entry. recorder may be nil.
func NewResultCache(store ports.CacheService, failureTTL time.Duration, recorder CacheRecorder, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		store:      store,
		failureTTL: failureTTL,
		recorder:   recorder,
		logger:     logger,
	}
}

// ttlFor returns how long a result with the given outcome may be cached.
// Zero means the result must not be cached.
func (c *ResultCache) ttlFor(success bool, code domain.ErrorCode, ttl time.Duration) time.Duration {
	if success {
		return ttl
	}

	switch code {
	case domain.ErrNoResults:
		return ttl
	case domain.ErrAPI, domain.ErrAPIUnavailable:
		if c.failureTTL > 0 && c.failureTTL < ttl {
			return c.failureTTL
		}

		return ttl
	default:
		return 0
	}
}

func (c *ResultCache) hit(ctx context.Context, key string) {
	c.logger.Debug("result cache hit", zap.String("cache_key", key))

	if c.recorder != nil {
		c.recorder.RecordCacheHit(ctx, namespace(key))
	}
}

func (c *ResultCache) miss(ctx context.Context, key string) {
	c.logger.Debug("result cache miss", zap.String("cache_key", key))

	if c.recorder != nil {
		c.recorder.RecordCacheMiss(ctx, namespace(key))
	}
}

// remember returns the cached Result for key, or runs compute and caches its outcome.
// Store failures degrade to an uncached computation.
func remember[T any](
	ctx context.Context,
	c *ResultCache,
	key string,
	ttl time.Duration,
	compute func(context.Context) domain.Result[T],
) domain.Result[T] {
	if c == nil || c.store == nil {
		return compute(ctx)
	}

	data, err := c.store.Get(ctx, key)

	switch {
	case err == nil:
		var cached domain.Result[T]

		decodeErr := json.Unmarshal(data, &cached)

		if decodeErr == nil {
			c.hit(ctx, key)

			return cached
		}

		c.logger.Warn("discarding undecodable cache entry",
			zap.String("cache_key", key),
			zap.Error(decodeErr))
	case errors.Is(err, ports.ErrCacheMiss):
	default:
		c.logger.Warn("cache read failed, computing directly",
			zap.String("cache_key", key),
			zap.Error(err))
	}

	c.miss(ctx, key)

	// The first caller's context must not cancel the computation shared with others.
	shared := context.WithoutCancel(ctx)

	v, _, _ := c.group.Do(key, func() (any, error) {
		result := compute(shared)

		expiry := c.ttlFor(result.IsSuccess(), result.ErrorCode(), ttl)

		if expiry <= 0 {
			return result, nil
		}

		encoded, err := json.Marshal(result)

		if err != nil {
			c.logger.Warn("failed to encode result for cache",
				zap.String("cache_key", key),
				zap.Error(err))

			return result, nil
		}

		if err := c.store.Set(shared, key, encoded, expiry); err != nil {
			c.logger.Warn("cache write failed",
				zap.String("cache_key", key),
				zap.Error(err))
		}

		return result, nil
	})

	return v.(domain.Result[T])
}

// queryKey builds a cache key from a namespace and a set of query parameters.
// url.Values.Encode sorts by parameter name, so equivalent queries collide.
func queryKey(prefix string, params url.Values) string {
	sum := sha256.Sum256([]byte(params.Encode()))

	return prefix + ":" + hex.EncodeToString(sum[:])
}

func namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}

	return key
}

// recoverToFailure converts a panic in a service method into an UNEXPECTED_ERROR result.
func recoverToFailure[T any](logger *zap.Logger, operation string, out *domain.Result[T]) {
	if r := recover(); r != nil {
		logger.Error("unexpected panic in service",
			zap.String("operation", operation),
			zap.Any("panic", r),
			zap.Stack("stack"))

		*out = domain.Failure[T](domain.ErrUnexpected, "", map[string]any{"operation": operation})
	}
}
