package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-outfit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Occasion != "work" {
			t.Errorf("expected occasion work, got %s", req.Occasion)
		}
		if req.Weather.Condition != weather.ConditionRainy {
			t.Errorf("expected rainy weather in request, got %s", req.Weather.Condition)
		}

		json.NewEncoder(w).Encode(schedule.OutfitRecommendation{
			Items:      req.Wardrobe[:1],
			Reasoning:  "rain calls for the jacket",
			Confidence: 0.8,
		})
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "device-1")

	rec, err := client.Generate(
		context.Background(),
		[]schedule.WardrobeItem{{ID: "jacket-1", Category: "outerwear"}, {ID: "tee-1", Category: "tops"}},
		weather.WeatherCondition{Temperature: 12, Condition: weather.ConditionRainy},
		"work",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Items) != 1 || rec.Items[0].ID != "jacket-1" {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}

func TestGenerateBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "device-1")

	_, err := client.Generate(
		context.Background(),
		[]schedule.WardrobeItem{{ID: "jacket-1"}},
		weather.WeatherCondition{Condition: weather.ConditionRainy},
		"work",
	)
	if !errors.Is(err, ErrGenerateFailed) {
		t.Fatalf("expected ErrGenerateFailed, got %v", err)
	}
}

func TestGenerateBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, "device-1")

	_, err := client.Generate(context.Background(), []schedule.WardrobeItem{{ID: "a"}}, weather.WeatherCondition{}, "work")
	if !errors.Is(err, ErrGenerateFailed) {
		t.Fatalf("expected ErrGenerateFailed, got %v", err)
	}
}
