package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ForecastTTL != 30*time.Minute {
		t.Fatalf("expected default TTL 30m, got %v", cfg.ForecastTTL)
	}
	if cfg.HorizonDays != 16 {
		t.Fatalf("expected default horizon 16, got %d", cfg.HorizonDays)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("expected default fetch timeout 5s, got %v", cfg.FetchTimeout)
	}
	if cfg.UpcomingWindowDays != 7 {
		t.Fatalf("expected default upcoming window 7, got %d", cfg.UpcomingWindowDays)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORECAST_TTL", "10m")
	t.Setenv("FORECAST_HORIZON_DAYS", "14")
	t.Setenv("UPCOMING_WINDOW_DAYS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ForecastTTL != 10*time.Minute {
		t.Fatalf("expected TTL 10m, got %v", cfg.ForecastTTL)
	}
	if cfg.HorizonDays != 14 {
		t.Fatalf("expected horizon 14, got %d", cfg.HorizonDays)
	}
	if cfg.UpcomingWindowDays != 3 {
		t.Fatalf("expected upcoming window 3, got %d", cfg.UpcomingWindowDays)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("FORECAST_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadLocations(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "New York,Paris")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "US,FR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(cfg.Locations))
	}
	if cfg.Locations[0].City != "New York" || cfg.Locations[0].Country != "US" {
		t.Fatalf("unexpected first location: %+v", cfg.Locations[0])
	}
}

func TestLoadMismatchedLocations(t *testing.T) {
	t.Setenv("WEATHER_LOCATION_CITY", "New York,Paris")
	t.Setenv("WEATHER_LOCATION_COUNTRY", "US")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for mismatched city/country lists")
	}
}
