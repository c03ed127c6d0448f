package replay

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"birdnest/internal/domain"
	"birdnest/internal/feed"
	"birdnest/internal/platform/metrics"
	"birdnest/pkg/platform/sentinel"
)

const sourceReplay = "replay"

// ErrNoHistory is returned when replaying without any recorded snapshot.
var ErrNoHistory = fmt.Errorf("replay: no recorded snapshots: %w", sentinel.ErrEmpty)

// Invalidator drops all aggregated state. Playback calls it whenever the
// cycle restarts so the replayed history does not accumulate across loops.
type Invalidator interface {
	InvalidateAll()
}

// Player serves recorded snapshots and pilots in place of the live feed.
// The served snapshot is a pure function of wall-clock time.
type Player struct {
	snapshots   []*domain.DronesDocument
	pilots      map[string]domain.Pilot
	interval    time.Duration
	invalidator Invalidator
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// LoadPlayer reads every snapshot and the pilot document from dir.
// A directory without snapshots is ErrNoHistory.
func LoadPlayer(dir string, interval time.Duration, invalidator Invalidator, opts ...Option) (*Player, error) {
	o := newOptions(opts)

	files, err := listSnapshots(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoHistory
	}
	snapshots := make([]*domain.DronesDocument, 0, len(files))
	for _, f := range files {
		doc, err := readSnapshot(filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, doc)
	}

	pilots, err := readPilots(dir)
	if err != nil {
		return nil, err
	}

	o.logger.Info("loaded replay history",
		"dir", dir,
		"snapshots", len(snapshots),
		"pilots", len(pilots),
	)
	return &Player{
		snapshots:   snapshots,
		pilots:      pilots,
		interval:    interval,
		invalidator: invalidator,
		now:         o.now,
		logger:      o.logger,
		metrics:     o.metrics,
	}, nil
}

// Index maps a point in time onto a snapshot slot:
// floor(unix_time / interval) mod n. Intervals below one second count as one
// second. Slots are computed in nanoseconds so fractional intervals advance
// exactly one slot per interval.
func Index(now time.Time, interval time.Duration, n int) int {
	if n <= 0 {
		return 0
	}
	step := max(interval, time.Second)
	idx := (now.UnixNano() / step.Nanoseconds()) % int64(n)
	if idx < 0 {
		idx += int64(n)
	}
	return int(idx)
}

// Len returns the number of loaded snapshots.
func (p *Player) Len() int {
	return len(p.snapshots)
}

// FetchDrones returns the snapshot for the current time. Landing on the
// first snapshot clears the infringement state before returning.
func (p *Player) FetchDrones(ctx context.Context) (*domain.DronesDocument, error) {
	if len(p.snapshots) == 0 {
		return nil, ErrNoHistory
	}
	idx := Index(p.now(), p.interval, len(p.snapshots))
	if idx == 0 {
		if p.invalidator != nil {
			p.invalidator.InvalidateAll()
		}
		p.metrics.IncrementReplayWrap()
		p.logger.DebugContext(ctx, "replay wrapped to first snapshot")
	}
	return p.snapshots[idx], nil
}

// FetchPilot serves the pilot recorded for serial.
func (p *Player) FetchPilot(_ context.Context, serial string) (domain.Pilot, error) {
	pilot, ok := p.pilots[serial]
	if !ok {
		return domain.Pilot{}, feed.NewFeedError(feed.ErrorNotFound, sourceReplay, "pilot not recorded for "+serial, nil)
	}
	return pilot, nil
}
