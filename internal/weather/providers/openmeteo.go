package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo itself needs no API key, but it only accepts coordinates, so
// city/country pairs are resolved through the Google geocoding API and the
// resulting coordinates are cached per location.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	mu     sync.Mutex
	coords map[string]geocoder.Location
}

func NewOpenMeteoProvider(client *http.Client, geocoderAPIKey string) *OpenMeteoProvider {
	geocoder.ApiKey = geocoderAPIKey

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
		coords:  make(map[string]geocoder.Location),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// resolve geocodes a city/country pair once and caches the coordinates.
func (p *OpenMeteoProvider) resolve(loc weather.Location) (geocoder.Location, error) {
	key := loc.Key()

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.coords[key]; ok {
		return c, nil
	}

	address := geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	}
	c, err := geocoder.Geocoding(address)
	if err != nil {
		return geocoder.Location{}, fmt.Errorf("geocoding %s: %w", key, err)
	}

	p.coords[key] = c
	return c, nil
}

// FetchForecast requests the 16-day daily series and picks out the entry for
// the requested date.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location, date time.Time) (weather.WeatherCondition, error) {
	coords, err := p.resolve(loc)
	if err != nil {
		return weather.WeatherCondition{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
		values.Set("daily", "weathercode,temperature_2m_max,windspeed_10m_max,relative_humidity_2m_max")
		values.Set("forecast_days", "16")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherCondition{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			Time        []string  `json:"time"`
			WeatherCode []int     `json:"weathercode"`
			TempMax     []float64 `json:"temperature_2m_max"`
			WindMax     []float64 `json:"windspeed_10m_max"`
			HumidityMax []float64 `json:"relative_humidity_2m_max"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	wantKey := timeutil.FormatDate(date)
	for i, day := range payload.Daily.Time {
		if day != wantKey {
			continue
		}

		cond := weather.WeatherCondition{
			Condition: weather.ConditionUnknown,
			Location:  loc.City,
		}
		if i < len(payload.Daily.TempMax) {
			cond.Temperature = int(payload.Daily.TempMax[i])
		}
		if i < len(payload.Daily.HumidityMax) {
			cond.Humidity = int(payload.Daily.HumidityMax[i])
		}
		if i < len(payload.Daily.WindMax) {
			// Open-Meteo reports km/h.
			cond.WindSpeed = payload.Daily.WindMax[i] / 3.6
		}
		if i < len(payload.Daily.WeatherCode) {
			code := payload.Daily.WeatherCode[i]
			cond.Condition = mapOpenMeteoCondition(code, cond.WindSpeed)
			cond.Description = fmt.Sprintf("weather code %d", code)
		}

		return cond, nil
	}

	return weather.WeatherCondition{}, weather.ErrNotFound
}

// FetchCurrent returns current conditions for the location.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.WeatherCondition, error) {
	coords, err := p.resolve(loc)
	if err != nil {
		return weather.WeatherCondition{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", coords.Longitude))
		values.Set("current_weather", "true")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherCondition{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WindSpeed   float64 `json:"windspeed"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	windMS := payload.CurrentWeather.WindSpeed / 3.6

	return weather.WeatherCondition{
		Temperature: int(payload.CurrentWeather.Temperature),
		Condition:   mapOpenMeteoCondition(payload.CurrentWeather.WeatherCode, windMS),
		Description: fmt.Sprintf("weather code %d", payload.CurrentWeather.WeatherCode),
		Location:    loc.City,
		WindSpeed:   windMS,
	}, nil
}

func mapOpenMeteoCondition(code int, windMS float64) weather.Condition {
	if windMS >= windyThresholdMS {
		return weather.ConditionWindy
	}
	// Mapping based on Open-Meteo weather codes (simplified).
	switch {
	case code == 0:
		return weather.ConditionSunny
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code >= 45 && code <= 48:
		return weather.ConditionCloudy
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82) || code >= 95:
		return weather.ConditionRainy
	case code >= 71 && code <= 77 || code == 85 || code == 86:
		return weather.ConditionSnowy
	default:
		return weather.ConditionUnknown
	}
}
