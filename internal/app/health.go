package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/version"
)

const readinessTimeout = 2 * time.Second

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (a *App) versionHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, version.Get())
}

// readinessHandler pings the optional dependencies that were connected at startup.
// A dependency running in fallback mode is reported as "disabled" and does not
// fail readiness.
func (a *App) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"redis":    "disabled",
		"database": "disabled",
	}
	ready := true

	if a.redis != nil {
		checks["redis"] = "up"

		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("readiness: redis ping failed", zap.Error(err))
			checks["redis"] = "down"
			ready = false
		}
	}

	if a.pool != nil {
		checks["database"] = "up"

		if err := a.pool.Ping(ctx); err != nil {
			a.logger.Warn("readiness: database ping failed", zap.Error(err))
			checks["database"] = "down"
			ready = false
		}
	}

	status := http.StatusOK

	if !ready {
		status = http.StatusServiceUnavailable
	}

	a.writeJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// statsHandler reports the provider circuit breakers and the connection pool.
func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"circuit_breakers": a.breakers.Stats(),
	}

	if a.pool != nil {
		poolStats := a.pool.Stat()
		stats["database"] = map[string]interface{}{
			"total_connections":    poolStats.TotalConns(),
			"idle_connections":     poolStats.IdleConns(),
			"acquired_connections": poolStats.AcquiredConns(),
			"max_connections":      poolStats.MaxConns(),
		}
	}

	a.writeJSON(w, http.StatusOK, stats)
}
