package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/outfitly/outfit-calendar/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// Forecast cache tuning.
	ForecastTTL  time.Duration
	HorizonDays  int
	FetchTimeout time.Duration

	// RecommenderURL is the base URL of the outfit recommendation backend.
	RecommenderURL string
	DeviceID       string

	// UpcomingWindowDays bounds the "this week" view.
	UpcomingWindowDays int

	// Cache maintenance job.
	SweepInterval time.Duration
	WarmDays      int

	// Locations warmed by the maintenance job.
	Locations []weather.Location

	HTTPTimeout time.Duration
	Port        string
	MetricsPort string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	ttl, err := getenvDuration("FORECAST_TTL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.ForecastTTL = ttl

	cfg.HorizonDays = getenvInt("FORECAST_HORIZON_DAYS", 16)

	fetchTimeout, err := getenvDuration("FETCH_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout = fetchTimeout

	cfg.RecommenderURL = getenvDefault("RECOMMENDER_URL", "http://localhost:8000")
	cfg.DeviceID = os.Getenv("DEVICE_ID")

	cfg.UpcomingWindowDays = getenvInt("UPCOMING_WINDOW_DAYS", 7)

	sweep, err := getenvDuration("SWEEP_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval = sweep
	cfg.WarmDays = getenvInt("WARM_DAYS", 7)

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = httpTimeout

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.MetricsPort = getenvDefault("METRICS_PORT", "9090")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

func loadLocations() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	if city == "" {
		return nil, nil
	}
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")

	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if country != "" && len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{City: strings.TrimSpace(cities[i])}
		if country != "" {
			loc.Country = strings.TrimSpace(countries[i])
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
