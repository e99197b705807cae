// Package scheduler runs periodic forecast cache maintenance.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/outfitly/outfit-calendar/internal/timeutil"
	"github.com/outfitly/outfit-calendar/internal/weather"
)

// Scheduler periodically evicts aged cache entries and warms the forecast
// window for the configured locations so that calendar opens hit a warm
// cache. Purely an optimization: the cache fills on demand either way.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     *weather.ForecastCache
	locations []weather.Location
	interval  time.Duration
	warmDays  int
	now       func() time.Time
}

// New creates a new Scheduler. now defaults to time.Now.
func New(cache *weather.ForecastCache, locations []weather.Location, interval time.Duration, warmDays int, now func() time.Time) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		scheduler: s,
		cache:     cache,
		locations: locations,
		interval:  interval,
		warmDays:  warmDays,
		now:       now,
	}
}

// Start schedules the periodic maintenance job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runOnce() {
	if evicted := s.cache.Sweep(); evicted > 0 {
		log.Printf("scheduler: evicted %d aged forecast entries", evicted)
	}

	if len(s.locations) == 0 {
		return
	}

	today := timeutil.DateOf(s.now())
	end := today.AddDate(0, 0, s.warmDays)

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			done := s.cache.PrefetchRange(ctx, loc, today, end)
			select {
			case <-done:
			case <-ctx.Done():
				log.Printf("scheduler: warm-up timed out for %s", loc.Key())
			}
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
