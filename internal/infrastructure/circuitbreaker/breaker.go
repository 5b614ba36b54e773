// Package circuitbreaker isolates the service from failing providers.
// It wraps Sony's GoBreaker with tracing, logging and a per-provider registry.
package circuitbreaker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Breaker guards calls to a single provider.
type Breaker struct {
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	name    string
}

// Config defines when a breaker opens and how long it stays open.
type Config struct {
	Name string
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval is the closed-state window after which counts are cleared.
	Interval time.Duration
	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration
	// MinRequests and FailureRatio trip the breaker once both are reached.
	MinRequests  uint32
	FailureRatio float64
}

// New creates a breaker from cfg. Zero thresholds fall back to three requests
// with a 50% failure ratio.
func New(cfg Config, logger *zap.Logger) *Breaker {
	minRequests := cfg.MinRequests

	if minRequests == 0 {
		minRequests = 3
	}

	ratio := cfg.FailureRatio

	if ratio <= 0 {
		ratio = 0.5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Breaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		name:    cfg.Name,
	}
}

// Execute runs fn unless the breaker is open. An error returned by fn counts as a
// failure; callers return nil for outcomes that should not trip the breaker.
func (b *Breaker) Execute(ctx context.Context, operation string, fn func() error) error {
	_, span := otel.Tracer("circuit-breaker").Start(ctx, "CircuitBreaker.Execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("circuit_breaker.name", b.name),
		attribute.String("circuit_breaker.operation", operation),
		attribute.String("circuit_breaker.state", b.breaker.State().String()),
	)

	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	if err != nil {
		span.RecordError(err)

		if IsRejected(err) {
			b.logger.Warn("call rejected by open circuit breaker",
				zap.String("provider", b.name),
				zap.String("operation", operation))
		}
	}

	span.SetAttributes(attribute.Bool("circuit_breaker.success", err == nil))

	return err
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Counts returns the current breaker statistics.
func (b *Breaker) Counts() gobreaker.Counts {
	return b.breaker.Counts()
}

// IsRejected reports whether err means the breaker refused to run the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Stats is a snapshot of a breaker for the stats endpoint.
type Stats struct {
	Name                 string `json:"name"`
	State                string `json:"state"`
	Requests             uint32 `json:"requests"`
	TotalSuccesses       uint32 `json:"total_successes"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
}

// Manager hands out one breaker per provider name.
type Manager struct {
	mu       sync.Mutex
	defaults Config
	breakers map[string]*Breaker
	logger   *zap.Logger
}

// NewManager creates a Manager whose breakers share the defaults configuration.
func NewManager(defaults Config, logger *zap.Logger) *Manager {
	return &Manager{
		defaults: defaults,
		breakers: make(map[string]*Breaker),
		logger:   logger,
	}
}

// Get returns the breaker for name, creating it on first use.
func (m *Manager) Get(name string) *Breaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.breakers[name]; ok {
		return b
	}

	cfg := m.defaults
	cfg.Name = name
	b := New(cfg, m.logger)
	m.breakers[name] = b

	return b
}

// Stats returns a snapshot of every breaker, sorted by name.
func (m *Manager) Stats() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make([]Stats, 0, len(m.breakers))

	for name, b := range m.breakers {
		counts := b.Counts()
		stats = append(stats, Stats{
			Name:                 name,
			State:                b.State().String(),
			Requests:             counts.Requests,
			TotalSuccesses:       counts.TotalSuccesses,
			TotalFailures:        counts.TotalFailures,
			ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
			ConsecutiveFailures:  counts.ConsecutiveFailures,
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	return stats
}
