// Package cache provides the key-value stores behind the result cache: a Redis
// store shared across instances and an in-process fallback.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

const scanBatch = 500

// RedisCache stores entries in Redis under a key prefix so several services
// can share one database.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

var _ ports.CacheService = (*RedisCache)(nil)

// NewRedisCache creates a cache over an existing client.
func NewRedisCache(client *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

// Get returns ports.ErrCacheMiss when the key is absent.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := otel.Tracer("cache").Start(ctx, "RedisCache.Get")
	defer span.End()

	span.SetAttributes(attribute.String("cache.key", key))

	start := time.Now()
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	duration := time.Since(start)

	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		r.logger.Debug("cache miss", zap.String("key", key), zap.Duration("duration", duration))

		return nil, ports.ErrCacheMiss
	}

	if err != nil {
		span.RecordError(err)
		r.logger.Error("cache get error", zap.String("key", key), zap.Error(err))

		return nil, err
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	r.logger.Debug("cache hit", zap.String("key", key), zap.Duration("duration", duration))

	return result, nil
}

// Set stores value for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := otel.Tracer("cache").Start(ctx, "RedisCache.Set")
	defer span.End()

	span.SetAttributes(
		attribute.String("cache.key", key),
		attribute.Int("cache.value_size", len(value)),
		attribute.String("cache.ttl", ttl.String()),
	)

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		span.RecordError(err)
		r.logger.Error("cache set error", zap.String("key", key), zap.Error(err))

		return err
	}

	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, span := otel.Tracer("cache").Start(ctx, "RedisCache.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("cache.key", key))

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		span.RecordError(err)
		r.logger.Error("cache delete error", zap.String("key", key), zap.Error(err))

		return err
	}

	return nil
}

// Clear deletes every key under the cache prefix. Keys outside the prefix are
// left alone, unlike FLUSHDB.
func (r *RedisCache) Clear(ctx context.Context) error {
	ctx, span := otel.Tracer("cache").Start(ctx, "RedisCache.Clear")
	defer span.End()

	start := time.Now()
	deleted := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}

		deleted += len(batch)
		batch = batch[:0]

		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())

		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				span.RecordError(err)

				return err
			}
		}
	}

	if err := iter.Err(); err != nil {
		span.RecordError(err)
		r.logger.Error("cache clear scan error", zap.Error(err))

		return err
	}

	if err := flush(); err != nil {
		span.RecordError(err)

		return err
	}

	r.logger.Info("cache cleared",
		zap.Int("deleted", deleted),
		zap.Duration("duration", time.Since(start)))

	return nil
}
