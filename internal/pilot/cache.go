// Package pilot caches pilot directory lookups by drone serial.
package pilot

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"birdnest/internal/domain"
	"birdnest/internal/platform/metrics"
	"birdnest/internal/ports"
)

const DefaultCapacity = 10000

var tracer = otel.Tracer("birdnest/pilot")

// Cache is a capacity-bounded serial→Pilot map with no expiry. Failed lookups
// are not cached, so the next sighting retries.
type Cache struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, domain.Pilot]
	fetcher ports.PilotFetcher
	group   singleflight.Group
	metrics *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics records lookup results.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache creates a cache resolving misses through fetcher.
func NewCache(fetcher ports.PilotFetcher, capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	lru, _ := simplelru.NewLRU[string, domain.Pilot](capacity, nil)
	c := &Cache{
		entries: lru,
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the pilot for serial, fetching it on a miss. Concurrent
// misses for the same serial share one fetch. The cache lock is not held
// while the fetcher runs.
func (c *Cache) Lookup(ctx context.Context, serial string) (domain.Pilot, error) {
	if p, ok := c.get(serial); ok {
		c.metrics.IncrementPilotLookup("hit")
		return p, nil
	}

	ctx, span := tracer.Start(ctx, "pilot.lookup",
		trace.WithAttributes(attribute.String("drone.serial", serial)))
	defer span.End()

	v, err, _ := c.group.Do(serial, func() (any, error) {
		p, err := c.fetcher.FetchPilot(ctx, serial)
		if err != nil {
			return domain.Pilot{}, err
		}
		c.put(serial, p)
		return p, nil
	})
	if err != nil {
		c.metrics.IncrementPilotLookup("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "pilot lookup failed")
		return domain.Pilot{}, err
	}
	c.metrics.IncrementPilotLookup("miss")
	return v.(domain.Pilot), nil
}

// Entries returns a copy of the cached pilots keyed by drone serial.
func (c *Cache) Entries() map[string]domain.Pilot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.Pilot, c.entries.Len())
	for _, key := range c.entries.Keys() {
		if p, ok := c.entries.Peek(key); ok {
			out[key] = p
		}
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

func (c *Cache) get(serial string) (domain.Pilot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(serial)
}

func (c *Cache) put(serial string, p domain.Pilot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(serial, p)
}
