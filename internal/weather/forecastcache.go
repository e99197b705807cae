package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/outfitly/outfit-calendar/internal/metrics"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
)

// Default cache tuning. Providers only publish ~16 days of daily forecasts,
// so anything beyond that is categorically unfetchable.
const (
	DefaultTTL          = 30 * time.Minute
	DefaultHorizonDays  = 16
	DefaultFetchTimeout = 5 * time.Second
)

// CacheConfig tunes a ForecastCache. Zero fields fall back to defaults.
type CacheConfig struct {
	TTL          time.Duration
	HorizonDays  int
	FetchTimeout time.Duration

	// Now is the injected clock; defaults to time.Now.
	Now func() time.Time
}

type cacheEntry struct {
	date      time.Time
	weather   WeatherCondition
	fetchedAt time.Time
}

// ForecastCache is a per-(location, date) cache of daily forecasts with TTL
// and a fixed lookahead horizon. Concurrent lookups for the same key share a
// single outbound provider call; stale entries are served immediately while a
// background refresh runs.
type ForecastCache struct {
	provider     Provider
	ttl          time.Duration
	horizonDays  int
	fetchTimeout time.Duration
	now          func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry

	group singleflight.Group
}

// NewForecastCache creates a ForecastCache backed by the given provider.
func NewForecastCache(provider Provider, cfg CacheConfig) *ForecastCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ForecastCache{
		provider:     provider,
		ttl:          cfg.TTL,
		horizonDays:  cfg.HorizonDays,
		fetchTimeout: cfg.FetchTimeout,
		now:          cfg.Now,
		entries:      make(map[string]cacheEntry),
	}
}

func cacheKey(loc Location, date time.Time) string {
	return loc.Key() + "|" + timeutil.FormatDate(date)
}

// Get returns the forecast for a single day. Dates in the past or beyond the
// horizon short-circuit to ErrOutOfHorizon without any provider call. A fresh
// cache hit is served directly; a stale hit is served immediately while a
// refresh runs in the background. On a miss, concurrent callers join one
// in-flight provider request and receive the same result.
func (c *ForecastCache) Get(ctx context.Context, loc Location, date time.Time) (WeatherCondition, error) {
	date = timeutil.DateOf(date)
	today := timeutil.DateOf(c.now())

	if date.Before(today) || timeutil.DaysBetween(today, date) > c.horizonDays {
		return WeatherCondition{}, ErrOutOfHorizon
	}

	key := cacheKey(loc, date)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		metrics.ForecastCacheHits.Inc()
		if c.now().Sub(entry.fetchedAt) > c.ttl {
			// Stale-while-revalidate: hand back the cached value and refresh
			// off the caller's critical path.
			go func() {
				if _, err, _ := c.group.Do(key, func() (interface{}, error) {
					return c.fetch(loc, date, key)
				}); err != nil {
					log.Printf("forecast refresh failed for %s: %v", key, err)
				}
			}()
		}
		return entry.weather, nil
	}

	metrics.ForecastCacheMisses.Inc()

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.fetch(loc, date, key)
	})

	select {
	case <-ctx.Done():
		// The shared flight keeps running and will populate the cache for
		// whoever asks next.
		return WeatherCondition{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return WeatherCondition{}, res.Err
		}
		return res.Val.(WeatherCondition), nil
	}
}

// fetch performs the outbound provider call with its own timeout, detached
// from any single caller's context so the shared flight survives caller
// cancellation. The result is cached only on success.
func (c *ForecastCache) fetch(loc Location, date time.Time, key string) (WeatherCondition, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	metrics.ProviderCalls.WithLabelValues(c.provider.Name()).Inc()

	cond, err := c.provider.FetchForecast(ctx, loc, date)
	if err != nil {
		metrics.ProviderFailures.WithLabelValues(c.provider.Name()).Inc()
		return WeatherCondition{}, classifyProviderErr(err)
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{date: date, weather: cond, fetchedAt: c.now()}
	c.mu.Unlock()

	return cond, nil
}

// classifyProviderErr folds provider failures into the package sentinels so
// callers can tell "retry later" from "will never succeed".
func classifyProviderErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, ErrUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// PrefetchRange triggers cache fills for every in-horizon date in [from, to],
// in parallel. It returns immediately; the returned channel closes once every
// fetch in the batch has resolved, so callers can either await the whole
// batch or ignore the channel and let results arrive as they come.
func (c *ForecastCache) PrefetchRange(ctx context.Context, loc Location, from, to time.Time) <-chan struct{} {
	done := make(chan struct{})

	from = timeutil.DateOf(from)
	to = timeutil.DateOf(to)

	var wg sync.WaitGroup
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Out-of-horizon days short-circuit inside Get; fetch failures
			// here just leave the day without a forecast.
			if _, err := c.Get(ctx, loc, d); err != nil && !errors.Is(err, ErrOutOfHorizon) {
				log.Printf("prefetch failed for %s %s: %v", loc.Key(), timeutil.FormatDate(d), err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}

// Cached returns the cached forecast for a day without triggering any fetch
// or refresh. Used when assembling results after a batch prefetch: a day the
// batch could not fill stays absent instead of provoking another round trip.
func (c *ForecastCache) Cached(loc Location, date time.Time) (WeatherCondition, bool) {
	key := cacheKey(loc, timeutil.DateOf(date))
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return WeatherCondition{}, false
	}
	return entry.weather, true
}

// Sweep evicts entries whose date has fallen into the past; they are
// worthless once weather display for the day no longer reads the live cache.
// Returns the number of entries evicted.
func (c *ForecastCache) Sweep() int {
	today := timeutil.DateOf(c.now())

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if entry.date.Before(today) {
			delete(c.entries, key)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.ForecastCacheEvictions.Add(float64(evicted))
	}
	return evicted
}

// Invalidate drops any cached entry for the given day. Primarily for tests
// and manual refresh; committed weather snapshots are unaffected.
func (c *ForecastCache) Invalidate(loc Location, date time.Time) {
	key := cacheKey(loc, timeutil.DateOf(date))
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of cached entries.
func (c *ForecastCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
