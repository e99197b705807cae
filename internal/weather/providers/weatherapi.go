package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name        string
	apiKey      string
	currentURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:        "weatherapi",
		apiKey:      apiKey,
		currentURL:  "https://api.weatherapi.com/v1/current.json",
		forecastURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg:     defaultHTTPConfig(client),
		circuit:     newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// FetchForecast requests the forecast series up to the requested date and
// picks out the matching day.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, date time.Time) (weather.WeatherCondition, error) {
	if p.apiKey == "" {
		return weather.WeatherCondition{}, fmt.Errorf("weatherapi api key is not configured")
	}

	// WeatherAPI wants the number of days from today, inclusive.
	days := timeutil.DaysBetween(time.Now(), date) + 1
	if days < 1 {
		days = 1
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", locationQuery(loc))
		values.Set("days", strconv.Itoa(days))

		u := fmt.Sprintf("%s?%s", p.forecastURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherCondition{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Date string `json:"date"`
				Day  struct {
					AvgTempC    float64 `json:"avgtemp_c"`
					AvgHumidity float64 `json:"avghumidity"`
					MaxWindKph  float64 `json:"maxwind_kph"`
					Condition   struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	wantKey := timeutil.FormatDate(date)
	for _, day := range payload.Forecast.ForecastDay {
		if day.Date != wantKey {
			continue
		}

		windMS := day.Day.MaxWindKph / 3.6

		return weather.WeatherCondition{
			Temperature: int(day.Day.AvgTempC),
			Condition:   mapWeatherAPICondition(day.Day.Condition.Text, windMS),
			Description: day.Day.Condition.Text,
			Location:    payload.Location.Name,
			Humidity:    int(day.Day.AvgHumidity),
			WindSpeed:   windMS,
		}, nil
	}

	return weather.WeatherCondition{}, weather.ErrNotFound
}

// FetchCurrent returns current conditions for the location.
func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, loc weather.Location) (weather.WeatherCondition, error) {
	if p.apiKey == "" {
		return weather.WeatherCondition{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
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
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
		Current struct {
			TempC     float64 `json:"temp_c"`
			Humidity  float64 `json:"humidity"`
			WindKph   float64 `json:"wind_kph"`
			Condition struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherCondition{}, err
	}

	windMS := payload.Current.WindKph / 3.6

	return weather.WeatherCondition{
		Temperature: int(payload.Current.TempC),
		Condition:   mapWeatherAPICondition(payload.Current.Condition.Text, windMS),
		Description: payload.Current.Condition.Text,
		Location:    payload.Location.Name,
		Humidity:    int(payload.Current.Humidity),
		WindSpeed:   windMS,
	}, nil
}

func mapWeatherAPICondition(text string, windMS float64) weather.Condition {
	if windMS >= windyThresholdMS {
		return weather.ConditionWindy
	}
	switch {
	case text == "":
		return weather.ConditionUnknown
	case contains(text, "rain") || contains(text, "shower") || contains(text, "drizzle") || contains(text, "thunder"):
		return weather.ConditionRainy
	case contains(text, "snow") || contains(text, "sleet") || contains(text, "blizzard"):
		return weather.ConditionSnowy
	case contains(text, "wind"):
		return weather.ConditionWindy
	case contains(text, "cloud") || contains(text, "overcast") || contains(text, "mist") || contains(text, "fog"):
		return weather.ConditionCloudy
	case contains(text, "sunny") || contains(text, "clear"):
		return weather.ConditionSunny
	default:
		return weather.ConditionUnknown
	}
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
