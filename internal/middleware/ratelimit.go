package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// RateLimiter rejects clients that exceed limit requests per window with 429.
// When the backing store fails the request is let through.
type RateLimiter struct {
	service ports.RateLimitService
	limit   int
	window  time.Duration
	onLimit func(r *http.Request)
	logger  *zap.Logger
}

// NewRateLimiter creates the middleware. onLimit may be nil.
func NewRateLimiter(service ports.RateLimitService, limit int, window time.Duration, onLimit func(r *http.Request), logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		service: service,
		limit:   limit,
		window:  window,
		onLimit: onLimit,
		logger:  logger,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := GetClientIP(r)

		allowed, err := rl.service.Allow(r.Context(), clientIP, rl.limit, rl.window)

		if err != nil {
			rl.logger.Warn("rate limiter unavailable, allowing request",
				zap.String("client_ip", clientIP),
				zap.Error(err))

			next.ServeHTTP(w, r)

			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))

		if !allowed {
			if rl.onLimit != nil {
				rl.onLimit(r)
			}

			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")

			return
		}

		next.ServeHTTP(w, r)
	})
}
