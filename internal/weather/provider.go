package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the provider has no data for the request.
	ErrNotFound = errors.New("no forecast data for request")

	// ErrTimeout is returned when a provider call exceeds its time budget.
	// Callers may retry later.
	ErrTimeout = errors.New("weather provider timed out")

	// ErrUnavailable is returned for transient provider failures
	// (5xx, rate limiting, open circuit). Callers may retry later.
	ErrUnavailable = errors.New("weather provider unavailable")

	// ErrOutOfHorizon is returned for dates the provider categorically cannot
	// forecast: dates beyond the forecast horizon, and dates already in the
	// past. Retrying will never succeed.
	ErrOutOfHorizon = errors.New("date outside forecast horizon")
)

// Provider abstracts a daily-forecast data source (e.g. OpenWeatherMap,
// WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string

	// FetchForecast returns the forecast for a single calendar day.
	// The date is expected to be normalized to midnight UTC.
	FetchForecast(ctx context.Context, loc Location, date time.Time) (WeatherCondition, error)

	// FetchCurrent returns current conditions for the location.
	FetchCurrent(ctx context.Context, loc Location) (WeatherCondition, error)
}
