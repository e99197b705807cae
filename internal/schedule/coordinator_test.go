package schedule_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/store"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	cond  weather.WeatherCondition
	err   error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchForecast(_ context.Context, _ weather.Location, _ time.Time) (weather.WeatherCondition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return weather.WeatherCondition{}, p.err
	}
	return p.cond, nil
}

func (p *fakeProvider) FetchCurrent(_ context.Context, _ weather.Location) (weather.WeatherCondition, error) {
	return p.cond, nil
}

func (p *fakeProvider) set(cond weather.WeatherCondition, err error) {
	p.mu.Lock()
	p.cond, p.err = cond, err
	p.mu.Unlock()
}

// fakeGenerator echoes the wardrobe back as the recommendation.
type fakeGenerator struct {
	err   error
	empty bool
}

func (g *fakeGenerator) Generate(_ context.Context, items []schedule.WardrobeItem, cond weather.WeatherCondition, occasion string) (schedule.OutfitRecommendation, error) {
	if g.err != nil {
		return schedule.OutfitRecommendation{}, g.err
	}
	if g.empty {
		return schedule.OutfitRecommendation{Reasoning: "nothing suitable"}, nil
	}
	return schedule.OutfitRecommendation{
		Items:      items,
		Reasoning:  "picked for " + occasion + " in " + string(cond.Condition),
		Confidence: 0.9,
	}, nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fixture struct {
	coordinator *schedule.Coordinator
	provider    *fakeProvider
	generator   *fakeGenerator
	store       *store.MemoryStore
	cache       *weather.ForecastCache
}

func newFixture(now time.Time) *fixture {
	provider := &fakeProvider{cond: weather.WeatherCondition{Temperature: 12, Condition: weather.ConditionRainy}}
	cache := weather.NewForecastCache(provider, weather.CacheConfig{
		TTL:          30 * time.Minute,
		HorizonDays:  16,
		FetchTimeout: time.Second,
		Now:          fixedNow(now),
	})
	memStore := store.NewMemoryStore()
	generator := &fakeGenerator{}
	coordinator := schedule.NewCoordinator(memStore, cache, generator, schedule.CoordinatorConfig{
		UpcomingWindowDays: 7,
		Now:                fixedNow(now),
	})
	return &fixture{
		coordinator: coordinator,
		provider:    provider,
		generator:   generator,
		store:       memStore,
		cache:       cache,
	}
}

var (
	testNow  = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testLoc  = weather.Location{City: "NYC"}
	wardrobe = []schedule.WardrobeItem{
		{ID: "jacket-1", Category: "outerwear", Color: "navy"},
		{ID: "jeans-1", Category: "bottoms", Color: "blue"},
	}
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return d
}

func TestGenerateAndScheduleRejectsPastDate(t *testing.T) {
	f := newFixture(testNow)

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-09"), testLoc, "work", wardrobe)
	if !errors.Is(err, schedule.ErrPastDate) {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}

	// Fail-fast: no network or store traffic.
	f.provider.mu.Lock()
	calls := f.provider.calls
	f.provider.mu.Unlock()
	if calls != 0 {
		t.Fatalf("expected no provider calls for a past date, got %d", calls)
	}
}

func TestGenerateAndScheduleRejectsEmptyWardrobe(t *testing.T) {
	f := newFixture(testNow)

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-11"), testLoc, "work", nil)
	if !errors.Is(err, schedule.ErrEmptyWardrobe) {
		t.Fatalf("expected ErrEmptyWardrobe, got %v", err)
	}
}

func TestGenerateAndScheduleForecastUnavailable(t *testing.T) {
	f := newFixture(testNow)
	f.provider.set(weather.WeatherCondition{}, errors.New("boom"))

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-11"), testLoc, "work", wardrobe)
	if !errors.Is(err, schedule.ErrForecastUnavailable) {
		t.Fatalf("expected ErrForecastUnavailable, got %v", err)
	}
	// The transient kind is preserved for retry decisions.
	if !errors.Is(err, weather.ErrUnavailable) {
		t.Fatalf("expected wrapped weather.ErrUnavailable, got %v", err)
	}

	if _, err := f.store.Get(context.Background(), mustDate(t, "2024-03-11")); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected nothing committed, got %v", err)
	}
}

func TestGenerateAndScheduleOutOfHorizon(t *testing.T) {
	f := newFixture(testNow)

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-27"), testLoc, "work", wardrobe)
	if !errors.Is(err, schedule.ErrForecastUnavailable) {
		t.Fatalf("expected ErrForecastUnavailable, got %v", err)
	}
	// The permanent kind is preserved too.
	if !errors.Is(err, weather.ErrOutOfHorizon) {
		t.Fatalf("expected wrapped weather.ErrOutOfHorizon, got %v", err)
	}
}

func TestGenerateAndScheduleGeneratorFailure(t *testing.T) {
	f := newFixture(testNow)
	f.generator.err = errors.New("backend down")

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-11"), testLoc, "work", wardrobe)
	if !errors.Is(err, schedule.ErrRecommendationFailed) {
		t.Fatalf("expected ErrRecommendationFailed, got %v", err)
	}

	if _, err := f.store.Get(context.Background(), mustDate(t, "2024-03-11")); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected nothing committed after generator failure, got %v", err)
	}
}

func TestGenerateAndScheduleEmptyRecommendation(t *testing.T) {
	f := newFixture(testNow)
	f.generator.empty = true

	_, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-11"), testLoc, "work", wardrobe)
	if !errors.Is(err, schedule.ErrRecommendationFailed) {
		t.Fatalf("expected ErrRecommendationFailed for empty item list, got %v", err)
	}
}

func TestGenerateAndScheduleCommitsWithSnapshot(t *testing.T) {
	f := newFixture(testNow)

	entry, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-11"), testLoc, "work", wardrobe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID == "" {
		t.Fatalf("expected store-generated id")
	}
	if entry.WeatherAtSchedule == nil {
		t.Fatalf("expected frozen weather snapshot")
	}
	if entry.WeatherAtSchedule.Condition != weather.ConditionRainy {
		t.Fatalf("expected rainy snapshot, got %s", entry.WeatherAtSchedule.Condition)
	}
	if entry.WeatherAtSchedule.Temperature != 12 {
		t.Fatalf("expected 12 degrees, got %d", entry.WeatherAtSchedule.Temperature)
	}
	if len(entry.Recommendation.Items) != len(wardrobe) {
		t.Fatalf("expected recommendation items to be committed")
	}

	got, err := f.coordinator.GetForDate(context.Background(), mustDate(t, "2024-03-11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != entry.ID {
		t.Fatalf("expected committed entry to be readable")
	}
}

// Scheduling today is allowed; only strictly-past dates are rejected.
func TestGenerateAndScheduleToday(t *testing.T) {
	f := newFixture(testNow)

	if _, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-10"), testLoc, "casual", wardrobe); err != nil {
		t.Fatalf("unexpected error scheduling for today: %v", err)
	}
}

func TestRescheduleReplacesEntryAndSnapshot(t *testing.T) {
	f := newFixture(testNow)
	date := mustDate(t, "2024-03-11")

	first, err := f.coordinator.GenerateAndSchedule(context.Background(), date, testLoc, "work", wardrobe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The forecast changes and the old cache entry is dropped before the
	// user regenerates.
	f.cache.Invalidate(testLoc, date)
	f.provider.set(weather.WeatherCondition{Temperature: 20, Condition: weather.ConditionSunny}, nil)

	second, err := f.coordinator.GenerateAndSchedule(context.Background(), date, testLoc, "dinner", wardrobe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ID == first.ID {
		t.Fatalf("regeneration must create a new entry, not overwrite in place")
	}
	if second.WeatherAtSchedule.Condition != weather.ConditionSunny {
		t.Fatalf("expected second snapshot to reflect the second forecast, got %s", second.WeatherAtSchedule.Condition)
	}

	// Exactly one entry remains for the date.
	entries, err := f.store.ListRange(context.Background(), date, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry for the date, got %d", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Fatalf("expected the second entry to win")
	}

	// The first id is gone.
	if err := f.coordinator.Delete(context.Background(), first.ID); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected the replaced entry to be deleted, got %v", err)
	}
}

// Once committed, the snapshot is immune to cache refreshes and evictions.
func TestSnapshotImmutableAfterCacheRefresh(t *testing.T) {
	f := newFixture(testNow)
	date := mustDate(t, "2024-03-11")

	entry, err := f.coordinator.GenerateAndSchedule(context.Background(), date, testLoc, "work", wardrobe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.cache.Invalidate(testLoc, date)
	f.provider.set(weather.WeatherCondition{Temperature: -3, Condition: weather.ConditionSnowy}, nil)
	if _, err := f.cache.Get(context.Background(), testLoc, date); err != nil {
		t.Fatalf("unexpected error refreshing cache: %v", err)
	}

	got, err := f.coordinator.GetForDate(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.WeatherAtSchedule.Condition != weather.ConditionRainy {
		t.Fatalf("cache refresh must not rewrite history: got %s", got.WeatherAtSchedule.Condition)
	}
	if got.WeatherAtSchedule.Temperature != entry.WeatherAtSchedule.Temperature {
		t.Fatalf("snapshot temperature changed after cache refresh")
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	f := newFixture(testNow)
	date := mustDate(t, "2024-03-11")

	entry, err := f.coordinator.GenerateAndSchedule(context.Background(), date, testLoc, "work", wardrobe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.coordinator.Delete(context.Background(), entry.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.coordinator.GetForDate(context.Background(), date); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected entry gone, got %v", err)
	}

	if err := f.coordinator.Delete(context.Background(), entry.ID); !errors.Is(err, schedule.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestGetUpcomingWindow(t *testing.T) {
	f := newFixture(testNow)

	// Inside the window, out of order.
	for _, day := range []string{"2024-03-15", "2024-03-10", "2024-03-17"} {
		if _, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, day), testLoc, "work", wardrobe); err != nil {
			t.Fatalf("scheduling %s: %v", day, err)
		}
	}
	// Outside the window.
	if _, err := f.coordinator.GenerateAndSchedule(context.Background(), mustDate(t, "2024-03-20"), testLoc, "trip", wardrobe); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := f.coordinator.GetUpcoming(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-03-10", "2024-03-15", "2024-03-17"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if timeutil.FormatDate(e.Date) != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], timeutil.FormatDate(e.Date))
		}
	}
}
