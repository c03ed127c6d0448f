package snapshot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"birdnest/internal/domain"
)

func TestStore(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())

	first := &domain.DronesDocument{Capture: domain.Capture{SnapshotTimestamp: "t1"}}
	second := &domain.DronesDocument{Capture: domain.Capture{SnapshotTimestamp: "t2"}}

	s.Set(first)
	assert.Same(t, first, s.Current())

	s.Set(second)
	assert.Same(t, second, s.Current())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	doc := &domain.DronesDocument{}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(doc)
		}()
		go func() {
			defer wg.Done()
			_ = s.Current()
		}()
	}
	wg.Wait()
	assert.Same(t, doc, s.Current())
}
