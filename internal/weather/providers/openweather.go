package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name        string
	apiKey      string
	currentURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:        "openweathermap",
		apiKey:      apiKey,
		currentURL:  "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast/daily",
		httpCfg:     defaultHTTPConfig(client),
		circuit:     newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// FetchForecast requests the daily forecast series and picks out the entry
// for the requested date. OpenWeatherMap caps the series at 16 days.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location, date time.Time) (weather.WeatherCondition, error) {
	if p.apiKey == "" {
		return weather.WeatherCondition{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("cnt", strconv.Itoa(16))
		values.Set("q", locationQuery(loc))

		u := fmt.Sprintf("%s?%s", p.forecastURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherCondition{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Temp struct {
				Day float64 `json:"day"`
			} `json:"temp"`
			Humidity float64 `json:"humidity"`
			Speed    float64 `json:"speed"`
			Weather  []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	wantKey := timeutil.FormatDate(date)
	for _, day := range payload.List {
		ts := time.Unix(day.Dt, 0).UTC()
		if timeutil.FormatDate(ts) != wantKey {
			continue
		}

		main, desc := "", ""
		if len(day.Weather) > 0 {
			main = day.Weather[0].Main
			desc = day.Weather[0].Description
		}

		return weather.WeatherCondition{
			Temperature: int(day.Temp.Day),
			Condition:   mapOpenWeatherCondition(main, day.Speed),
			Description: desc,
			Location:    payload.City.Name,
			Humidity:    int(day.Humidity),
			WindSpeed:   day.Speed,
		}, nil
	}

	return weather.WeatherCondition{}, weather.ErrNotFound
}

// FetchCurrent returns current conditions for the location.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.WeatherCondition, error) {
	if p.apiKey == "" {
		return weather.WeatherCondition{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("q", locationQuery(loc))

		u := fmt.Sprintf("%s?%s", p.currentURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherCondition{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	main, desc := "", ""
	if len(payload.Weather) > 0 {
		main = payload.Weather[0].Main
		desc = payload.Weather[0].Description
	}

	return weather.WeatherCondition{
		Temperature: int(payload.Main.Temp),
		Condition:   mapOpenWeatherCondition(main, payload.Wind.Speed),
		Description: desc,
		Location:    payload.Name,
		Humidity:    int(payload.Main.Humidity),
		WindSpeed:   payload.Wind.Speed,
	}, nil
}

func locationQuery(loc weather.Location) string {
	if loc.Country != "" {
		return fmt.Sprintf("%s,%s", loc.City, loc.Country)
	}
	return loc.City
}

// Wind above ~10 m/s dominates the day regardless of sky state.
const windyThresholdMS = 10.0

func mapOpenWeatherCondition(main string, windSpeed float64) weather.Condition {
	if windSpeed >= windyThresholdMS {
		return weather.ConditionWindy
	}
	switch main {
	case "Clear":
		return weather.ConditionSunny
	case "Clouds", "Mist", "Fog", "Haze":
		return weather.ConditionCloudy
	case "Rain", "Drizzle", "Thunderstorm":
		return weather.ConditionRainy
	case "Snow":
		return weather.ConditionSnowy
	default:
		return weather.ConditionUnknown
	}
}
