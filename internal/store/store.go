// Package store holds the most recent aggregated schedule snapshot.
// The aggregation core is read-through; this snapshot exists for the
// callers that need a steady view between refreshes (websocket announcer,
// readiness, stats).
package store

import (
	"sync"
	"time"

	"campusbus/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	schedules []domain.Schedule
	updatedAt time.Time
}

func New() *Store {
	return &Store{}
}

// Replace swaps in a freshly aggregated, already-sorted sequence.
func (s *Store) Replace(schedules []domain.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = schedules
	s.updatedAt = time.Now()
}

// Snapshot returns a copy of the current sequence. Callers may read it
// while a newer sequence is being swapped in; records themselves are
// immutable.
func (s *Store) Snapshot() []domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedules)
}

func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
