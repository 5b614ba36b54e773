package app

import (
	"net/http"

	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/foursquare"
	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/openweather"
	"github.com/sean-rowe/city-explorer-service/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

// initProviders creates the OpenWeatherMap and Foursquare clients, each behind
// its own circuit breaker and sharing one HTTP client.
//
// Returns:
//   - *openweather.Client: geocoding and weather provider
//   - *foursquare.Client: places provider
func (a *App) initProviders() (*openweather.Client, *foursquare.Client) {
	httpClient := &http.Client{
		Timeout: a.cfg.External.HTTPTimeout,
	}

	transport := func(provider string) upstream.Config {
		return upstream.Config{
			Timeout:    a.cfg.External.HTTPTimeout,
			HTTPClient: httpClient,
			Breaker:    a.breakers.Get(provider),
			Recorder:   a.telemetry,
		}
	}

	weather := openweather.NewClient(openweather.Config{
		APIKey:       a.cfg.External.OpenWeatherAPIKey,
		WeatherURL:   a.cfg.External.OpenWeatherURL,
		GeocodingURL: a.cfg.External.OpenWeatherGeocodingURL,
	}, transport(domain.ProviderOpenWeatherMap), a.logger)

	places := foursquare.NewClient(foursquare.Config{
		APIKey:  a.cfg.External.FoursquareAPIKey,
		BaseURL: a.cfg.External.FoursquareBaseURL,
	}, transport(domain.ProviderFoursquare), a.logger)

	if !weather.Configured() {
		a.logger.Error("OPENWEATHERMAP_API_KEY is not set; weather and geocoding requests will fail")
	}

	if !places.Configured() {
		a.logger.Error("FOURSQUARE_API_KEY is not set; places requests will fail")
	}

	return weather, places
}
