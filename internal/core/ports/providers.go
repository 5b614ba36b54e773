// Package ports defines the interfaces between the core services and the adapters
// that drive them (HTTP handlers) or are driven by them (providers, caches, storage).
package ports

import (
	"context"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

// GeocodingMatch is one candidate returned by a geocoding lookup.
// Lat and Lon are nil when the provider omitted them.
type GeocodingMatch struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	State   string   `json:"state,omitempty"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// GeocodingProvider resolves city names through a third-party API.
type GeocodingProvider interface {
	// Configured reports whether the provider has an API key.
	Configured() bool
	// LookupCity returns at most one match for the city, sent exactly as given.
	LookupCity(ctx context.Context, city string) domain.Result[[]GeocodingMatch]
}

// WeatherProvider fetches current conditions through a third-party API.
type WeatherProvider interface {
	Configured() bool
	CurrentConditions(ctx context.Context, coords domain.Coordinates) domain.Result[domain.WeatherSnapshot]
}

// PlacesProvider searches and describes points of interest through a third-party API.
type PlacesProvider interface {
	Configured() bool
	Search(ctx context.Context, query domain.PlaceSearch) domain.Result[[]domain.PlaceSummary]
	Details(ctx context.Context, placeID string) domain.Result[domain.PlaceDetail]
}
