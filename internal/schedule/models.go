// Package schedule holds the outfit schedule domain: the entry model, the
// store and generator contracts, and the coordinator that enforces the
// one-outfit-per-date rule.
package schedule

import (
	"context"
	"time"

	"github.com/outfitly/outfit-calendar/internal/weather"
)

// WardrobeItem is a single tagged garment supplied by the caller. The field
// set mirrors what the vision-tagging pipeline produces; the engine treats it
// as opaque input to the recommendation generator.
type WardrobeItem struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	Color       string   `json:"color,omitempty"`
	Material    string   `json:"material,omitempty"`
	Seasonality []string `json:"seasonality,omitempty"`
	Formality   string   `json:"formality,omitempty"`
}

// OutfitRecommendation is the generator's output: the chosen items plus its
// reasoning. Opaque to the scheduling engine beyond the empty-items check.
type OutfitRecommendation struct {
	Items      []WardrobeItem `json:"items"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
}

// ScheduledOutfit is a committed outfit for a calendar date.
//
// WeatherAtSchedule is the forecast snapshot in effect at commit time and is
// never overwritten afterwards: re-fetching forecasts must not silently
// rewrite history. Regeneration replaces the whole entry instead.
type ScheduledOutfit struct {
	ID                string                    `json:"id"`
	Date              time.Time                 `json:"date"`
	Occasion          string                    `json:"occasion"`
	Recommendation    OutfitRecommendation      `json:"outfitRecommendation"`
	WeatherAtSchedule *weather.WeatherCondition `json:"weatherAtSchedule,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
}

// Store is the contract the schedule store must satisfy. Entries are keyed by
// calendar date; Put overwrites any prior entry for the same date. Assumed
// durable and per-key atomic, nothing more.
type Store interface {
	Get(ctx context.Context, date time.Time) (*ScheduledOutfit, error)
	Put(ctx context.Context, entry *ScheduledOutfit) (string, error)
	Delete(ctx context.Context, id string) error
	ListRange(ctx context.Context, from, to time.Time) ([]ScheduledOutfit, error)
}

// Generator produces an outfit recommendation for a wardrobe, a day's
// forecast, and an occasion. Implemented by the recommendation backend
// client; opaque and blocking from the coordinator's perspective.
type Generator interface {
	Generate(ctx context.Context, items []WardrobeItem, cond weather.WeatherCondition, occasion string) (OutfitRecommendation, error)
}
