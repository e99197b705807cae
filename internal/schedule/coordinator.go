package schedule

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/outfitly/outfit-calendar/internal/metrics"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// DefaultUpcomingWindowDays bounds GetUpcoming to the "this week" view.
const DefaultUpcomingWindowDays = 7

// Coordinator orchestrates generate-and-schedule and delete operations.
// It owns the at-most-one-outfit-per-date and no-past-date invariants and
// freezes the weather snapshot onto the entry at commit time. Per date the
// lifecycle is Empty -> Scheduled -> Empty; regeneration is conceptually
// delete-then-create, never an in-place overwrite, so a new commit always
// carries the forecast fetched for that commit.
type Coordinator struct {
	store     Store
	cache     *weather.ForecastCache
	generator Generator
	now       func() time.Time

	upcomingWindowDays int
}

// CoordinatorConfig tunes a Coordinator. Zero fields fall back to defaults.
type CoordinatorConfig struct {
	UpcomingWindowDays int
	Now                func() time.Time
}

// NewCoordinator creates a Coordinator with injected collaborators.
func NewCoordinator(store Store, cache *weather.ForecastCache, generator Generator, cfg CoordinatorConfig) *Coordinator {
	if cfg.UpcomingWindowDays <= 0 {
		cfg.UpcomingWindowDays = DefaultUpcomingWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Coordinator{
		store:              store,
		cache:              cache,
		generator:          generator,
		now:                cfg.Now,
		upcomingWindowDays: cfg.UpcomingWindowDays,
	}
}

// GenerateAndSchedule validates the request, fetches the forecast, invokes
// the recommendation generator, and commits the entry in a single store
// write. Validation failures are rejected before any network or store call;
// generator failures commit nothing.
func (c *Coordinator) GenerateAndSchedule(
	ctx context.Context,
	date time.Time,
	loc weather.Location,
	occasion string,
	items []WardrobeItem,
) (*ScheduledOutfit, error) {
	date = timeutil.DateOf(date)
	today := timeutil.DateOf(c.now())

	if date.Before(today) {
		return nil, ErrPastDate
	}
	if len(items) == 0 {
		return nil, ErrEmptyWardrobe
	}

	// An outfit is never committed without a weather snapshot; a
	// weather-blind recommendation defeats the point of the product.
	cond, err := c.cache.Get(ctx, loc, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}

	rec, err := c.generator.Generate(ctx, items, cond, occasion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecommendationFailed, err)
	}
	if len(rec.Items) == 0 {
		return nil, fmt.Errorf("%w: generator returned no items", ErrRecommendationFailed)
	}

	snapshot := cond
	entry := &ScheduledOutfit{
		Date:              date,
		Occasion:          occasion,
		Recommendation:    rec,
		WeatherAtSchedule: &snapshot,
		CreatedAt:         c.now(),
	}

	id, err := c.store.Put(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("storing scheduled outfit: %w", err)
	}
	entry.ID = id

	metrics.OutfitsScheduled.Inc()
	log.Printf("scheduled outfit %s for %s (%s)", id, timeutil.FormatDate(date), cond.Condition)

	return entry, nil
}

// Delete removes a scheduled outfit by id. The forecast cache is untouched.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.OutfitsDeleted.Inc()
	return nil
}

// GetForDate returns the entry scheduled for the given date, if any.
func (c *Coordinator) GetForDate(ctx context.Context, date time.Time) (*ScheduledOutfit, error) {
	return c.store.Get(ctx, timeutil.DateOf(date))
}

// GetUpcoming returns entries with date >= today within the look-ahead
// window, ascending by date. withinDays <= 0 uses the configured default.
// Should the store ever hold duplicate dates, the most recently created
// entry wins; the invariant belongs to the coordinator, not the store.
func (c *Coordinator) GetUpcoming(ctx context.Context, withinDays int) ([]ScheduledOutfit, error) {
	if withinDays <= 0 {
		withinDays = c.upcomingWindowDays
	}

	today := timeutil.DateOf(c.now())
	end := today.AddDate(0, 0, withinDays)

	entries, err := c.store.ListRange(ctx, today, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]ScheduledOutfit, len(entries))
	for _, e := range entries {
		key := timeutil.FormatDate(e.Date)
		if prev, ok := byDate[key]; !ok || e.CreatedAt.After(prev.CreatedAt) {
			byDate[key] = e
		}
	}

	result := make([]ScheduledOutfit, 0, len(byDate))
	for _, e := range byDate {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}
