// Package domain contains the core entities of the city explorer service:
// the Result/ErrorCode model, coordinates, weather snapshots, places and favorites.
// It has no dependencies on transports, providers or storage.
package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Coordinates represent a geographic location using latitude and longitude.
type Coordinates struct {
	// Latitude specifies the north-south position (-90 to 90 degrees)
	Latitude float64 `json:"latitude"`

	// Longitude specifies the east-west position (-180 to 180 degrees)
	Longitude float64 `json:"longitude"`
}

// Validate checks if the coordinates are within valid geographic bounds.
// Latitude must be between -90 and 90 degrees and longitude between -180 and 180.
// NaN and infinite values are rejected.
func (c Coordinates) Validate() error {
	if !finite(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", c.Latitude)
	}

	if !finite(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", c.Longitude)
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LatLon formats the coordinates as "lat,lon" with the shortest exact decimal form.
func (c Coordinates) LatLon() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// WeatherRequest asks for current conditions either by coordinates or by city name.
// Coordinates win when both are supplied.
type WeatherRequest struct {
	City      *string
	Latitude  *float64
	Longitude *float64
}

// Coordinates returns the request coordinates when both latitude and longitude are set.
func (r WeatherRequest) Coordinates() (Coordinates, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Coordinates{}, false
	}

	return Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

// HasCity reports whether a non-blank city name was supplied.
func (r WeatherRequest) HasCity() bool {
	return r.City != nil && *r.City != ""
}

// WeatherSnapshot is the normalized current-conditions report for a location.
// Optional provider fields stay nil when the provider omits them.
type WeatherSnapshot struct {
	Temperature           float64    `json:"temperature"`
	FeelsLike             float64    `json:"feels_like"`
	TempMin               float64    `json:"temp_min"`
	TempMax               float64    `json:"temp_max"`
	Pressure              float64    `json:"pressure"`
	Humidity              float64    `json:"humidity"`
	Description           string     `json:"description"`
	MainCondition         string     `json:"main_condition"`
	IconCode              string     `json:"icon_code"`
	IconURL               *string    `json:"icon_url"`
	Visibility            *float64   `json:"visibility"`
	WindSpeed             *float64   `json:"wind_speed"`
	WindDeg               *float64   `json:"wind_deg"`
	WindGust              *float64   `json:"wind_gust"`
	CloudsPercent         *float64   `json:"clouds_percent"`
	Rain1h                *float64   `json:"rain_1h"`
	Snow1h                *float64   `json:"snow_1h"`
	Sunrise               *time.Time `json:"sunrise"`
	Sunset                *time.Time `json:"sunset"`
	TimezoneOffsetSeconds *int       `json:"timezone_offset_seconds"`
	CityName              string     `json:"city_name"`
	CountryCode           string     `json:"country_code"`
}
