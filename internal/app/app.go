// Package app provides application-level coordination and dependency injection.
// It orchestrates the initialization of all service components, manages their lifecycles,
// and provides a clean application structure following dependency inversion principles.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/primary/rest"
	"github.com/sean-rowe/city-explorer-service/internal/config"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
	"github.com/sean-rowe/city-explorer-service/internal/core/services"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/cache"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/circuitbreaker"
	"github.com/sean-rowe/city-explorer-service/internal/infrastructure/ratelimit"
	"github.com/sean-rowe/city-explorer-service/internal/middleware"
	"github.com/sean-rowe/city-explorer-service/internal/observability"
)

// App manages the application lifecycle and dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	server        *http.Server
	metricsServer *http.Server

	telemetry *observability.Telemetry
	redis     *redis.Client
	pool      *pgxpool.Pool
	breakers  *circuitbreaker.Manager

	// cancel stops background workers started during Start.
	cancel context.CancelFunc
}

// New loads the configuration and creates the production logger.
//
// Returns:
//   - *App: Configured application instance
//   - error: Configuration or logger initialization error
func New() (*App, error) {
	logger, err := zap.NewProduction()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()

	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and starts the API and metrics servers.
// Redis and PostgreSQL are optional: the service degrades to an in-process
// cache and rate limiter, and favorites fail with DATABASE_ERROR.
//
// Parameters:
//   - ctx: Context for initialization
//
// Returns:
//   - error: Telemetry instrument creation error
func (a *App) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.initTelemetry(ctx); err != nil {
		return err
	}

	cacheService, rateLimitService := a.initRedisServices(ctx, workerCtx)
	favoritesRepo := a.initFavoritesRepository(ctx)

	a.breakers = circuitbreaker.NewManager(circuitbreaker.Config{
		MaxRequests:  a.cfg.CircuitBreaker.MaxRequests,
		Interval:     a.cfg.CircuitBreaker.Interval,
		Timeout:      a.cfg.CircuitBreaker.Timeout,
		MinRequests:  a.cfg.CircuitBreaker.MinRequests,
		FailureRatio: a.cfg.CircuitBreaker.FailureRatio,
	}, a.logger)

	weatherProvider, placesProvider := a.initProviders()

	resultCache := services.NewResultCache(cacheService, a.cfg.Cache.FailureTTL, a.telemetry, a.logger)

	geocodingService := services.NewGeocodingService(weatherProvider, resultCache, a.cfg.Cache.GeocodingTTL, a.logger)
	weatherService := services.NewWeatherService(weatherProvider, geocodingService, resultCache, a.cfg.Cache.WeatherTTL, a.logger)
	placesService := services.NewPlacesService(placesProvider, resultCache, a.cfg.Cache.PlacesTTL, a.logger)

	router := a.setupRouter(
		rest.NewWeatherHandler(weatherService, geocodingService, a.logger),
		rest.NewPlacesHandler(placesService, a.logger),
		rest.NewFavoritesHandler(
			services.NewFavoriteCityService(favoritesRepo, a.logger),
			services.NewFavoritePlaceService(favoritesRepo, a.logger),
			a.logger,
		),
		rateLimitService,
	)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	metricsRouter := http.NewServeMux()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	a.metricsServer = &http.Server{
		Addr:    ":" + a.cfg.Server.MetricsPort,
		Handler: metricsRouter,
	}

	a.serve("api", a.server)
	a.serve("metrics", a.metricsServer)

	return nil
}

func (a *App) serve(name string, server *http.Server) {
	go func() {
		a.logger.Info("starting HTTP server",
			zap.String("server", name),
			zap.String("addr", server.Addr),
			zap.String("environment", a.cfg.Server.Environment))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start server", zap.String("server", name), zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down all application components.
func (a *App) Stop() {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	for _, server := range []*http.Server{a.server, a.metricsServer} {
		if server == nil {
			continue
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", zap.String("addr", server.Addr), zap.Error(err))
		}
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis client", zap.Error(err))
		}
	}

	if a.telemetry != nil {
		if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown telemetry", zap.Error(err))
		}
	}

	// Sync fails on some platforms for stderr; nothing useful can be done about it.
	_ = a.logger.Sync()
}

// WaitForShutdown blocks until the process receives SIGINT or SIGTERM.
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	a.logger.Info("shutdown signal received")
}

// initTelemetry installs the OTLP tracer and Prometheus meter. When the
// exporters cannot be created the instruments are built on the global no-op
// providers so the rest of the service does not need nil checks.
func (a *App) initTelemetry(ctx context.Context) error {
	telemetryConfig := observability.Config{
		ServiceName:    a.cfg.Observability.ServiceName,
		ServiceVersion: a.cfg.Observability.ServiceVersion,
		Environment:    a.cfg.Observability.Environment,
		OTLPEndpoint:   a.cfg.Observability.OTLPEndpoint,
		SampleRate:     a.cfg.Observability.SampleRate,
	}

	telemetry, err := observability.InitTelemetry(ctx, telemetryConfig, a.logger)

	if err == nil {
		a.telemetry = telemetry
		return nil
	}

	a.logger.Warn("failed to initialize telemetry, continuing without exporters", zap.Error(err))

	a.telemetry, err = observability.New(otel.GetTracerProvider(), otel.GetMeterProvider(), telemetryConfig.ServiceName, a.logger)

	return err
}

// initRedisServices returns the Redis-backed cache and rate limiter, or their
// in-process equivalents when Redis is disabled or unreachable.
func (a *App) initRedisServices(ctx, workerCtx context.Context) (ports.CacheService, ports.RateLimitService) {
	memoryServices := func() (ports.CacheService, ports.RateLimitService) {
		return cache.NewMemoryCache(a.cfg.Cache.WeatherTTL, a.cfg.Cache.MemoryCleanupInterval, a.logger),
			middleware.NewMemoryRateLimiter(workerCtx, a.cfg.RateLimit.Window*10, a.logger)
	}

	if !a.cfg.Redis.Enabled {
		a.logger.Info("Redis disabled, using memory-based services")

		return memoryServices()
	}

	client, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:         a.cfg.Redis.Addr,
		Password:     a.cfg.Redis.Password,
		DB:           a.cfg.Redis.DB,
		PoolSize:     a.cfg.Redis.PoolSize,
		MinIdleConns: a.cfg.Redis.MinIdleConns,
		MaxRetries:   a.cfg.Redis.MaxRetries,
		DialTimeout:  a.cfg.Redis.DialTimeout,
		ReadTimeout:  a.cfg.Redis.ReadTimeout,
		WriteTimeout: a.cfg.Redis.WriteTimeout,
	})

	if err != nil {
		a.logger.Warn("Redis connection failed, falling back to memory-based services", zap.Error(err))

		return memoryServices()
	}

	a.logger.Info("Redis connected successfully", zap.String("addr", a.cfg.Redis.Addr))
	a.redis = client

	return cache.NewRedisCache(client, a.cfg.Redis.KeyPrefix, a.logger),
		ratelimit.NewRedisRateLimiter(client, a.cfg.Redis.KeyPrefix, a.logger)
}

// setupRouter creates the HTTP router with operational endpoints, the
// observability chain and the rate-limited /api/v1 routes.
func (a *App) setupRouter(
	weatherHandler *rest.WeatherHandler,
	placesHandler *rest.PlacesHandler,
	favoritesHandler *rest.FavoritesHandler,
	rateLimitService ports.RateLimitService,
) http.Handler {
	router := mux.NewRouter()

	obsMiddleware := middleware.NewObservabilityMiddleware(a.telemetry, a.logger)
	router.Use(obsMiddleware.TracingMiddleware)
	router.Use(obsMiddleware.MetricsMiddleware)
	router.Use(obsMiddleware.LoggingMiddleware)

	router.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", a.readinessHandler).Methods(http.MethodGet)
	router.HandleFunc("/version", a.versionHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", a.statsHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	limiter := middleware.NewRateLimiter(
		rateLimitService,
		a.cfg.RateLimit.Requests,
		a.cfg.RateLimit.Window,
		func(r *http.Request) { a.telemetry.RecordRateLimited(r.Context(), middleware.RouteName(r)) },
		a.logger,
	)
	api.Use(limiter.Middleware)

	rest.RegisterRoutes(api, weatherHandler, placesHandler, favoritesHandler)

	return router
}
