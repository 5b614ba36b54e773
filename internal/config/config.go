// Package config provides centralized configuration management for the city explorer service.
// It loads configuration from environment variables with sensible defaults, reading an
// optional .env file first so local development does not need exported variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration settings for the service.
type Config struct {
	Server         ServerConfig
	Redis          RedisConfig
	Database       DatabaseConfig
	Observability  ObservabilityConfig
	External       ExternalConfig
	Cache          CacheConfig
	RateLimit      RateLimitConfig
	CircuitBreaker CircuitBreakerConfig
}

// ServerConfig contains HTTP server settings and timeouts.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig contains settings for the shared cache and rate limiter.
type RedisConfig struct {
	Enabled      bool
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig contains PostgreSQL settings for favorites storage.
type DatabaseConfig struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	Database              string
	SSLMode               string
	MaxConnections        int
	MinConnections        int
	ConnectionMaxLifetime time.Duration
	// AutoMigrate applies pending migrations at server start.
	AutoMigrate bool
}

// ObservabilityConfig contains settings for distributed tracing and metrics.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
}

// ExternalConfig contains the third-party provider settings.
type ExternalConfig struct {
	OpenWeatherAPIKey       string
	OpenWeatherURL          string
	OpenWeatherGeocodingURL string
	FoursquareAPIKey        string
	FoursquareBaseURL       string
	HTTPTimeout             time.Duration
}

// CacheConfig contains the result cache lifetimes.
type CacheConfig struct {
	WeatherTTL   time.Duration
	GeocodingTTL time.Duration
	PlacesTTL    time.Duration
	// FailureTTL caps how long provider API failures are remembered.
	FailureTTL time.Duration
	// MemoryCleanupInterval is the sweep interval of the in-process fallback cache.
	MemoryCleanupInterval time.Duration
}

// RateLimitConfig contains per-client rate limiting settings.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// CircuitBreakerConfig contains per-provider breaker settings.
type CircuitBreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// Load reads the optional .env file and then the environment.
// A missing .env file is not an error; an unreadable one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables and defaults only.
func FromEnv() *Config {
	environment := getEnv("ENVIRONMENT", "development")

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MetricsPort:     getEnv("METRICS_PORT", "9090"),
			Environment:     environment,
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:      getEnvAsBool("REDIS_ENABLED", true),
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "city-explorer:"),
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Database: DatabaseConfig{
			Host:                  getEnv("DB_HOST", "localhost"),
			Port:                  getEnvAsInt("DB_PORT", 5432),
			User:                  getEnv("DB_USER", "explorer"),
			Password:              getEnv("DB_PASSWORD", ""),
			Database:              getEnv("DB_NAME", "city_explorer"),
			SSLMode:               getEnv("DB_SSLMODE", "disable"),
			MaxConnections:        getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:        getEnvAsInt("DB_MIN_CONNECTIONS", 2),
			ConnectionMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:           getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "city-explorer-service"),
			ServiceVersion: getEnv("VERSION", "1.0.0"),
			Environment:    environment,
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:     getEnvAsFloat("OTEL_SAMPLE_RATE", 0.1),
		},
		External: ExternalConfig{
			OpenWeatherAPIKey:       getEnv("OPENWEATHERMAP_API_KEY", ""),
			OpenWeatherURL:          getEnv("OPENWEATHERMAP_WEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
			OpenWeatherGeocodingURL: getEnv("OPENWEATHERMAP_GEOCODING_URL", "http://api.openweathermap.org/geo/1.0/direct"),
			FoursquareAPIKey:        getEnv("FOURSQUARE_API_KEY", ""),
			FoursquareBaseURL:       getEnv("FOURSQUARE_BASE_URL", "https://api.foursquare.com/v3/places"),
			HTTPTimeout:             getEnvAsDuration("EXTERNAL_HTTP_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			WeatherTTL:            getEnvAsDuration("CACHE_WEATHER_TTL", 15*time.Minute),
			GeocodingTTL:          getEnvAsDuration("CACHE_GEOCODING_TTL", 24*time.Hour),
			PlacesTTL:             getEnvAsDuration("CACHE_PLACES_TTL", 168*time.Hour),
			FailureTTL:            getEnvAsDuration("CACHE_FAILURE_TTL", 5*time.Minute),
			MemoryCleanupInterval: getEnvAsDuration("CACHE_MEMORY_CLEANUP_INTERVAL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:  uint32(getEnvAsInt("BREAKER_MAX_REQUESTS", 1)),
			Interval:     getEnvAsDuration("BREAKER_INTERVAL", time.Minute),
			Timeout:      getEnvAsDuration("BREAKER_TIMEOUT", 30*time.Second),
			MinRequests:  uint32(getEnvAsInt("BREAKER_MIN_REQUESTS", 5)),
			FailureRatio: getEnvAsFloat("BREAKER_FAILURE_RATIO", 0.6),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}

	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("15m") or plain seconds ("900").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
