// Package calendar materializes annotated day lists for calendar months.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// CalendarDay is one day of a materialized month. Temporal flags are derived
// from the injected clock at materialization time; exactly one of IsPast,
// IsToday, IsFuture is true. Ephemeral: rebuilt on every call, never stored.
type CalendarDay struct {
	Date      time.Time                 `json:"date"`
	Key       string                    `json:"key"` // YYYY-MM-DD
	IsToday   bool                      `json:"isToday"`
	IsPast    bool                      `json:"isPast"`
	IsFuture  bool                      `json:"isFuture"`
	HasOutfit bool                      `json:"hasOutfit"`
	Weather   *weather.WeatherCondition `json:"weather,omitempty"`
	Outfit    *schedule.ScheduledOutfit `json:"outfit,omitempty"`
}

// Materializer produces the ordered day list for a month, merging live
// forecasts from the cache with schedule entries from the store.
type Materializer struct {
	cache *weather.ForecastCache
	store schedule.Store
	now   func() time.Time
}

// NewMaterializer creates a Materializer. now defaults to time.Now.
func NewMaterializer(cache *weather.ForecastCache, store schedule.Store, now func() time.Time) *Materializer {
	if now == nil {
		now = time.Now
	}
	return &Materializer{cache: cache, store: store, now: now}
}

// Materialize returns one CalendarDay per day of the given month, ascending.
// The whole month's forecast range is prefetched in one batch so latency is
// bounded to roughly one provider round trip regardless of month length, and
// the day list is only assembled once the batch has resolved. Read-only on
// the store.
func (m *Materializer) Materialize(ctx context.Context, year int, month time.Month, loc weather.Location) ([]CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month: %d", month)
	}

	// Consult the clock exactly once so a call spanning midnight stays
	// internally consistent.
	today := timeutil.DateOf(m.now())

	first, last := timeutil.MonthRange(year, month)

	done := m.cache.PrefetchRange(ctx, loc, first, last)

	entries, err := m.store.ListRange(ctx, first, last)
	if err != nil && !errors.Is(err, schedule.ErrNotFound) {
		return nil, fmt.Errorf("listing schedule entries: %w", err)
	}
	outfits := make(map[string]schedule.ScheduledOutfit, len(entries))
	for _, e := range entries {
		outfits[timeutil.FormatDate(e.Date)] = e
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	days := make([]CalendarDay, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := timeutil.FormatDate(d)

		day := CalendarDay{
			Date:     d,
			Key:      key,
			IsToday:  d.Equal(today),
			IsPast:   d.Before(today),
			IsFuture: d.After(today),
		}

		if entry, ok := outfits[key]; ok {
			e := entry
			day.HasOutfit = true
			day.Outfit = &e
		}

		// Past days never carry live weather; their committed outfits keep
		// the snapshot frozen at schedule time. Days the batch could not
		// fill stay absent rather than triggering another fetch here.
		if !day.IsPast {
			if cond, ok := m.cache.Cached(loc, d); ok {
				c := cond
				day.Weather = &c
			}
		}

		days = append(days, day)
	}

	return days, nil
}
