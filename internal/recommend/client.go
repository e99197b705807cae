// Package recommend implements the schedule.Generator contract against the
// outfit recommendation backend.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// ErrGenerateFailed is returned for any backend failure; the coordinator
// wraps it into its own taxonomy.
var ErrGenerateFailed = errors.New("recommendation backend call failed")

// Client calls the recommendation backend's POST /generate-outfit endpoint.
type Client struct {
	baseURL  string
	deviceID string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(httpClient *http.Client, baseURL, deviceID string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "recommender",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:  baseURL,
		deviceID: deviceID,
		client:   httpClient,
		circuit:  cb,
	}
}

type generateRequest struct {
	Wardrobe []schedule.WardrobeItem  `json:"wardrobe"`
	Weather  weather.WeatherCondition `json:"weather"`
	Occasion string                   `json:"occasion"`
	DeviceID string                   `json:"device_id"`
}

// Generate implements schedule.Generator. The call is blocking and carries no
// retry loop of its own; the coordinator surfaces failures to the caller.
func (c *Client) Generate(
	ctx context.Context,
	items []schedule.WardrobeItem,
	cond weather.WeatherCondition,
	occasion string,
) (schedule.OutfitRecommendation, error) {
	body, err := json.Marshal(generateRequest{
		Wardrobe: items,
		Weather:  cond,
		Occasion: occasion,
		DeviceID: c.deviceID,
	})
	if err != nil {
		return schedule.OutfitRecommendation{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-outfit", bytes.NewReader(body))
	if err != nil {
		return schedule.OutfitRecommendation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		var rec schedule.OutfitRecommendation
		if decErr := json.NewDecoder(resp.Body).Decode(&rec); decErr != nil {
			return nil, fmt.Errorf("decoding response: %w", decErr)
		}
		return rec, nil
	})
	if err != nil {
		return schedule.OutfitRecommendation{}, fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}

	rec, ok := result.(schedule.OutfitRecommendation)
	if !ok {
		return schedule.OutfitRecommendation{}, fmt.Errorf("%w: unexpected result type", ErrGenerateFailed)
	}
	return rec, nil
}
