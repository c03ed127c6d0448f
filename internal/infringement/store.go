// Package infringement aggregates no-fly-zone violations per drone.
//
// Entries are capacity bounded (least recently written first out) and expire
// a fixed TTL after their last update. Expiry is lazy: reads sweep what has
// gone stale before answering, and a write never merges into a stale entry.
package infringement

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"birdnest/internal/domain"
	"birdnest/internal/platform/metrics"
)

const (
	DefaultTTL      = 10 * time.Minute
	DefaultCapacity = 10000
)

// Store keeps one merged Infringement per drone serial.
type Store struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, domain.Infringement]
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics publishes the live entry count.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates a store. Non-positive capacity or ttl fall back to the defaults.
func NewStore(capacity int, ttl time.Duration, opts ...Option) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// NewLRU only fails for a non-positive size.
	lru, _ := simplelru.NewLRU[string, domain.Infringement](capacity, nil)
	s := &Store{
		entries: lru,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merge folds candidate into the stored entry for its serial and returns the
// result. An expired or missing entry is replaced by candidate as is.
//
// A candidate older than the stored entry (a slow tick finishing late) still
// lowers the distance, but keeps the stored pilot and UpdatedAt.
func (s *Store) Merge(candidate domain.Infringement) domain.Infringement {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	merged := candidate
	if existing, ok := s.entries.Get(candidate.DroneSerialNumber); ok && !s.expired(existing, now) {
		if candidate.UpdatedAt.Before(existing.UpdatedAt) {
			late := candidate
			late.Pilot = existing.Pilot
			late.UpdatedAt = existing.UpdatedAt
			merged = existing.Merge(late)
		} else {
			merged = existing.Merge(candidate)
		}
	}
	s.entries.Add(merged.DroneSerialNumber, merged)
	s.publishLocked()
	return merged
}

// Get returns the live entry for serial.
func (s *Store) Get(serial string) (domain.Infringement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Peek(serial)
	if !ok {
		return domain.Infringement{}, false
	}
	if s.expired(entry, s.now()) {
		s.entries.Remove(serial)
		s.publishLocked()
		return domain.Infringement{}, false
	}
	return entry, true
}

// ListAll returns a copy of every live entry in unspecified order.
func (s *Store) ListAll() []domain.Infringement {
	return s.ListSince(time.Time{})
}

// ListSince returns live entries updated strictly after minUpdatedAt.
// The zero time disables the filter.
func (s *Store) ListSince(minUpdatedAt time.Time) []domain.Infringement {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(s.now())
	values := s.entries.Values()
	out := make([]domain.Infringement, 0, len(values))
	for _, v := range values {
		if minUpdatedAt.IsZero() || v.UpdatedAt.After(minUpdatedAt) {
			out = append(out, v)
		}
	}
	return out
}

// InvalidateAll drops every entry.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Purge()
	s.publishLocked()
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(s.now())
	return s.entries.Len()
}

func (s *Store) expired(entry domain.Infringement, now time.Time) bool {
	return now.Sub(entry.UpdatedAt) > s.ttl
}

func (s *Store) evictExpiredLocked(now time.Time) {
	for _, key := range s.entries.Keys() {
		if entry, ok := s.entries.Peek(key); ok && s.expired(entry, now) {
			s.entries.Remove(key)
		}
	}
	s.publishLocked()
}

func (s *Store) publishLocked() {
	s.metrics.SetActiveInfringements(s.entries.Len())
}
