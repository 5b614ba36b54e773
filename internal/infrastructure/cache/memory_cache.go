package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// MemoryCache keeps entries in process memory. It backs single-instance
// deployments and stands in when Redis is unreachable at startup.
type MemoryCache struct {
	cache  *gocache.Cache
	logger *zap.Logger
}

var _ ports.CacheService = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache. Entries stored with a non-positive
// TTL use defaultTTL; expired entries are swept every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration, logger *zap.Logger) *MemoryCache {
	return &MemoryCache{
		cache:  gocache.New(defaultTTL, cleanupInterval),
		logger: logger,
	}
}

// Get returns a copy of the stored value or ports.ErrCacheMiss.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, span := otel.Tracer("cache").Start(ctx, "MemoryCache.Get")
	defer span.End()

	span.SetAttributes(attribute.String("cache.key", key))

	value, found := m.cache.Get(key)

	if !found {
		span.SetAttributes(attribute.Bool("cache.hit", false))

		return nil, ports.ErrCacheMiss
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))

	stored := value.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)

	return out, nil
}

// Set stores a copy of value, so callers may reuse their buffer.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, span := otel.Tracer("cache").Start(ctx, "MemoryCache.Set")
	defer span.End()

	span.SetAttributes(
		attribute.String("cache.key", key),
		attribute.Int("cache.value_size", len(value)),
		attribute.String("cache.ttl", ttl.String()),
	)

	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.cache.Set(key, stored, ttl)

	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	_, span := otel.Tracer("cache").Start(ctx, "MemoryCache.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("cache.key", key))
	m.cache.Delete(key)

	return nil
}

func (m *MemoryCache) Clear(ctx context.Context) error {
	_, span := otel.Tracer("cache").Start(ctx, "MemoryCache.Clear")
	defer span.End()

	m.cache.Flush()
	m.logger.Info("memory cache cleared")

	return nil
}

// Len reports the number of stored entries, including expired ones not yet swept.
func (m *MemoryCache) Len() int {
	return m.cache.ItemCount()
}
