package middleware

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// MemoryRateLimiter is a per-process token bucket limiter. It refills limit
// tokens per window and allows bursts of up to limit requests.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	now     func() time.Time
	idleTTL time.Duration
	logger  *zap.Logger
}

type bucket struct {
	limiter  *rate.Limiter
	limit    int
	window   time.Duration
	lastSeen time.Time
}

var _ ports.RateLimitService = (*MemoryRateLimiter)(nil)

// NewMemoryRateLimiter creates a limiter and starts a sweeper that forgets
// clients idle for longer than idleTTL. The sweeper stops with ctx.
func NewMemoryRateLimiter(ctx context.Context, idleTTL time.Duration, logger *zap.Logger) *MemoryRateLimiter {
	rl := &MemoryRateLimiter{
		clients: make(map[string]*bucket),
		now:     time.Now,
		idleTTL: idleTTL,
		logger:  logger,
	}

	go rl.sweep(ctx)

	return rl
}

// Allow takes one token from identifier's bucket.
func (rl *MemoryRateLimiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if limit <= 0 || window <= 0 {
		return true, nil
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[identifier]

	if !ok || b.limit != limit || b.window != window {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			limit:   limit,
			window:  window,
		}
		rl.clients[identifier] = b
	}

	b.lastSeen = now

	return b.limiter.AllowN(now, 1), nil
}

// Reset refills identifier's bucket.
func (rl *MemoryRateLimiter) Reset(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.mu.Lock()
	delete(rl.clients, identifier)
	rl.mu.Unlock()

	return nil
}

func (rl *MemoryRateLimiter) sweep(ctx context.Context) {
	if rl.idleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.forgetIdle()
		}
	}
}

func (rl *MemoryRateLimiter) forgetIdle() {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0

	for id, b := range rl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(rl.clients, id)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.Debug("forgot idle rate limit clients", zap.Int("count", removed))
	}
}
