// Package poller drives the periodic fetch → filter → resolve → merge cycle.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"birdnest/internal/domain"
	"birdnest/internal/feed"
	"birdnest/internal/ndz"
	"birdnest/internal/platform/metrics"
	"birdnest/internal/ports"
)

const DefaultInterval = 2 * time.Second

var tracer = otel.Tracer("birdnest/poller")

// PilotResolver resolves pilots, normally through the pilot cache.
type PilotResolver interface {
	Lookup(ctx context.Context, serial string) (domain.Pilot, error)
	Entries() map[string]domain.Pilot
}

// InfringementSink receives merged candidates.
type InfringementSink interface {
	Merge(candidate domain.Infringement) domain.Infringement
}

// SnapshotSink holds the latest fetched snapshot.
type SnapshotSink interface {
	Set(doc *domain.DronesDocument)
}

// Poller runs ticks against its collaborators. All fields are injected.
type Poller struct {
	drones        ports.DroneSource
	pilots        PilotResolver
	infringements InfringementSink
	snapshots     SnapshotSink
	recorder      ports.Recorder
	zone          ndz.Zone
	interval      time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// Option configures a Poller.
type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) {
		p.metrics = m
	}
}

// WithRecorder hands every fetched snapshot to r.
func WithRecorder(r ports.Recorder) Option {
	return func(p *Poller) {
		p.recorder = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a poller.
func New(
	drones ports.DroneSource,
	pilots PilotResolver,
	infringements InfringementSink,
	snapshots SnapshotSink,
	zone ndz.Zone,
	opts ...Option,
) *Poller {
	p := &Poller{
		drones:        drones,
		pilots:        pilots,
		infringements: infringements,
		snapshots:     snapshots,
		zone:          zone,
		interval:      DefaultInterval,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ticks immediately and then once per interval until ctx is cancelled.
// Each tick runs in its own goroutine; Run does not wait for ticks in flight.
func (p *Poller) Run(ctx context.Context) {
	p.logger.InfoContext(ctx, "poller started", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.dispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "poller stopped")
			return
		case <-ticker.C:
			p.dispatch(ctx)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context) {
	go func() {
		// Errors are logged inside Tick; the loop keeps going.
		_, _ = p.Tick(ctx)
	}()
}

// Tick performs one poll cycle and returns the merged infringements it
// produced. A fetch failure aborts the tick; pilot failures do not.
func (p *Poller) Tick(ctx context.Context) ([]domain.Infringement, error) {
	start := p.now()
	tickID := uuid.NewString()
	logger := p.logger.With("tick_id", tickID)

	ctx, span := tracer.Start(ctx, "poller.tick",
		trace.WithAttributes(attribute.String("tick.id", tickID)))
	defer span.End()

	defer func() {
		p.metrics.ObserveTickDuration(p.now().Sub(start))
	}()

	doc, err := p.drones.FetchDrones(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch drones",
			"error", err,
			"category", string(feed.GetCategory(err)),
		)
		p.metrics.IncrementTick("fetch_error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch drones")
		return nil, err
	}
	p.snapshots.Set(doc)

	sightings := p.zone.Infringing(doc.Capture.Drones)
	span.SetAttributes(attribute.Int("tick.candidates", len(sightings)))
	p.metrics.AddCandidates(len(sightings))

	pilots := p.resolvePilots(ctx, logger, sightings)

	merged := make([]domain.Infringement, 0, len(sightings))
	for i, s := range sightings {
		merged = append(merged, p.infringements.Merge(domain.Infringement{
			DroneSerialNumber: s.Drone.SerialNumber,
			Pilot:             pilots[i],
			Distance:          s.Distance,
			X:                 s.Drone.PositionX,
			Y:                 s.Drone.PositionY,
			UpdatedAt:         start,
		}))
	}

	if p.recorder != nil {
		// Entries copies under the cache lock; the recorder does I/O afterwards.
		if err := p.recorder.Record(ctx, doc, p.pilots.Entries(), start); err != nil {
			logger.ErrorContext(ctx, "failed to record snapshot", "error", err)
		}
	}

	p.metrics.IncrementTick("ok")
	logger.DebugContext(ctx, "tick completed",
		"drones", len(doc.Capture.Drones),
		"infringements", len(merged),
		"duration", p.now().Sub(start).String(),
	)
	return merged, nil
}

// resolvePilots looks up every sighting's pilot concurrently. The result is
// index-aligned with sightings; a failed lookup leaves a nil entry.
func (p *Poller) resolvePilots(ctx context.Context, logger *slog.Logger, sightings []ndz.Sighting) []*domain.Pilot {
	pilots := make([]*domain.Pilot, len(sightings))
	var g errgroup.Group
	for i, s := range sightings {
		g.Go(func() error {
			pilot, err := p.pilots.Lookup(ctx, s.Drone.SerialNumber)
			if err != nil {
				logger.WarnContext(ctx, "pilot lookup failed",
					"serial", s.Drone.SerialNumber,
					"error", err,
					"category", string(feed.GetCategory(err)),
				)
				return nil
			}
			pilots[i] = &pilot
			return nil
		})
	}
	_ = g.Wait()
	return pilots
}
