// Package openweather implements the geocoding and weather providers on top of
// the OpenWeatherMap API.
package openweather

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
	"github.com/sean-rowe/city-explorer-service/internal/core/ports"
)

// Default endpoints.
const (
	DefaultWeatherURL   = "https://api.openweathermap.org/data/2.5/weather"
	DefaultGeocodingURL = "http://api.openweathermap.org/geo/1.0/direct"
)

// Config holds the API key and endpoints.
type Config struct {
	APIKey       string
	WeatherURL   string
	GeocodingURL string
}

// Client implements ports.GeocodingProvider and ports.WeatherProvider.
type Client struct {
	cfg    Config
	http   *upstream.Client
	logger *zap.Logger
}

var (
	_ ports.GeocodingProvider = (*Client)(nil)
	_ ports.WeatherProvider   = (*Client)(nil)
)

// NewClient creates an OpenWeatherMap client. transport supplies the timeout,
// HTTP client, breaker and recorder; its provider name is overridden.
func NewClient(cfg Config, transport upstream.Config, logger *zap.Logger) *Client {
	if cfg.WeatherURL == "" {
		cfg.WeatherURL = DefaultWeatherURL
	}

	if cfg.GeocodingURL == "" {
		cfg.GeocodingURL = DefaultGeocodingURL
	}

	transport.Provider = domain.ProviderOpenWeatherMap

	return &Client{
		cfg:    cfg,
		http:   upstream.NewClient(transport, logger),
		logger: logger,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// LookupCity queries the direct geocoding endpoint for the single best match.
func (c *Client) LookupCity(ctx context.Context, city string) domain.Result[[]ports.GeocodingMatch] {
	params := url.Values{
		"q":     {city},
		"limit": {"1"},
		"appid": {c.cfg.APIKey},
	}

	return upstream.GetJSON[[]ports.GeocodingMatch](ctx, c.http, c.cfg.GeocodingURL, params)
}

// CurrentConditions fetches metric current weather for coords.
// A response lacking "main" or "weather[0]" fails with API_ERROR.
func (c *Client) CurrentConditions(ctx context.Context, coords domain.Coordinates) domain.Result[domain.WeatherSnapshot] {
	params := url.Values{
		"lat":   {strconv.FormatFloat(coords.Latitude, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(coords.Longitude, 'f', -1, 64)},
		"appid": {c.cfg.APIKey},
		"units": {"metric"},
	}

	raw := upstream.GetJSON[CurrentWeather](ctx, c.http, c.cfg.WeatherURL, params)

	if raw.IsFailure() {
		return domain.ForwardFailure[domain.WeatherSnapshot](raw)
	}

	snapshot, err := FormatWeather(raw.Value())

	if err != nil {
		c.logger.Error("failed to format weather data",
			zap.Float64("latitude", coords.Latitude),
			zap.Float64("longitude", coords.Longitude),
			zap.Error(err))

		return domain.Failure[domain.WeatherSnapshot](
			domain.ErrAPI,
			"Invalid weather data format received.",
			map[string]any{domain.ContextProvider: domain.ProviderOpenWeatherMap},
		)
	}

	return domain.Success(snapshot)
}
