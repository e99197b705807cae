// Package store provides the in-memory schedule store implementation.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/outfitly/outfit-calendar/internal/schedule"
	"github.com/outfitly/outfit-calendar/internal/timeutil"
)

// MemoryStore is a concurrency-safe in-memory implementation of
// schedule.Store. Entries are keyed by canonical date key with a secondary
// index by id; Put overwrites any prior entry for the same date.
type MemoryStore struct {
	mu sync.RWMutex

	// key: YYYY-MM-DD date key
	byDate map[string]*schedule.ScheduledOutfit
	// key: entry id, value: date key
	byID map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byDate: make(map[string]*schedule.ScheduledOutfit),
		byID:   make(map[string]string),
	}
}

// Get returns the entry for a date, or schedule.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, date time.Time) (*schedule.ScheduledOutfit, error) {
	key := timeutil.FormatDate(date)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byDate[key]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

// Put stores an entry, generating an id if the entry has none, and replaces
// any prior entry for the same date.
func (s *MemoryStore) Put(_ context.Context, entry *schedule.ScheduledOutfit) (string, error) {
	key := timeutil.FormatDate(entry.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}

	if prev, ok := s.byDate[key]; ok {
		delete(s.byID, prev.ID)
	}

	s.byDate[key] = &cp
	s.byID[cp.ID] = key
	return cp.ID, nil
}

// Delete removes the entry with the given id, or returns schedule.ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dateKey, ok := s.byID[id]
	if !ok {
		return schedule.ErrNotFound
	}

	delete(s.byID, id)
	delete(s.byDate, dateKey)
	return nil
}

// ListRange returns entries with from <= date <= to, ascending by date.
// An empty result is not an error.
func (s *MemoryStore) ListRange(_ context.Context, from, to time.Time) ([]schedule.ScheduledOutfit, error) {
	from = timeutil.DateOf(from)
	to = timeutil.DateOf(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []schedule.ScheduledOutfit
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if entry, ok := s.byDate[timeutil.FormatDate(d)]; ok {
			result = append(result, *entry)
		}
	}
	return result, nil
}
