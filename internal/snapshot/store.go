// Package snapshot holds the most recently fetched drone snapshot.
package snapshot

import (
	"sync"

	"birdnest/internal/domain"
)

// Store is a single-slot holder for the latest DronesDocument.
type Store struct {
	mu      sync.RWMutex
	current *domain.DronesDocument
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored snapshot. Documents are never mutated after Set.
func (s *Store) Set(doc *domain.DronesDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = doc
}

// Current returns the latest snapshot, or nil before the first successful poll.
func (s *Store) Current() *domain.DronesDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
