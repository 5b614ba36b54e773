package openweather

import (
	"errors"
	"fmt"
	"time"

	"github.com/sean-rowe/city-explorer-service/internal/core/domain"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

// ErrIncompleteWeather is returned by FormatWeather when the response lacks
// "main" or a first "weather" entry.
var ErrIncompleteWeather = errors.New("weather response is missing main or weather data")

// MainReadings holds the "main" block of a current weather response.
type MainReadings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

// Condition is one entry of the "weather" array.
type Condition struct {
	Description string `json:"description"`
	Main        string `json:"main"`
	Icon        string `json:"icon"`
}

// CurrentWeather is the subset of the current weather response the service uses.
type CurrentWeather struct {
	Main       *MainReadings `json:"main"`
	Weather    []Condition   `json:"weather"`
	Visibility *float64      `json:"visibility"`
	Wind       struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneHour *float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneHour *float64 `json:"1h"`
	} `json:"snow"`
	Sys struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
		Country string `json:"country"`
	} `json:"sys"`
	Timezone *int   `json:"timezone"`
	Name     string `json:"name"`
}

// FormatWeather normalizes a provider response into a WeatherSnapshot.
func FormatWeather(raw CurrentWeather) (domain.WeatherSnapshot, error) {
	if raw.Main == nil || len(raw.Weather) == 0 {
		return domain.WeatherSnapshot{}, ErrIncompleteWeather
	}

	condition := raw.Weather[0]

	description := condition.Description
	if description == "" {
		description = "N/A"
	}

	snapshot := domain.WeatherSnapshot{
		Temperature:           raw.Main.Temp,
		FeelsLike:             raw.Main.FeelsLike,
		TempMin:               raw.Main.TempMin,
		TempMax:               raw.Main.TempMax,
		Pressure:              raw.Main.Pressure,
		Humidity:              raw.Main.Humidity,
		Description:           description,
		MainCondition:         condition.Main,
		IconCode:              condition.Icon,
		Visibility:            raw.Visibility,
		WindSpeed:             raw.Wind.Speed,
		WindDeg:               raw.Wind.Deg,
		WindGust:              raw.Wind.Gust,
		CloudsPercent:         raw.Clouds.All,
		Rain1h:                raw.Rain.OneHour,
		Snow1h:                raw.Snow.OneHour,
		Sunrise:               unixTime(raw.Sys.Sunrise),
		Sunset:                unixTime(raw.Sys.Sunset),
		TimezoneOffsetSeconds: raw.Timezone,
		CityName:              raw.Name,
		CountryCode:           raw.Sys.Country,
	}

	if condition.Icon != "" {
		iconURL := fmt.Sprintf(iconURLFormat, condition.Icon)
		snapshot.IconURL = &iconURL
	}

	return snapshot, nil
}

func unixTime(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}

	t := time.Unix(*sec, 0).UTC()

	return &t
}
