package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"birdnest/internal/domain"
	"birdnest/internal/platform/metrics"
)

const (
	kindSnapshot = "snapshot"
	kindPilots   = "pilots"

	outcomeWritten = "written"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

// Recorder writes snapshots and the pilot document into a replay directory.
// Unchanged snapshots and pilot sets are skipped, so recording the same
// state repeatedly produces one file.
type Recorder struct {
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu serializes disk writes across overlapping ticks.
	mu sync.Mutex
	// last is the document with the highest sequence written so far.
	last       *domain.DronesDocument
	lastSeq    int64
	lastLoaded bool
}

// NewRecorder creates a recorder for dir. The directory is created on the
// first write.
func NewRecorder(dir string, opts ...Option) *Recorder {
	o := newOptions(opts)
	return &Recorder{
		dir:     dir,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Record persists doc, named after at, and merges pilots into the on-disk
// pilot document. Entries from pilots win over what is already on disk.
func (r *Recorder) Record(ctx context.Context, doc *domain.DronesDocument, pilots map[string]domain.Pilot, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	return errors.Join(
		r.recordSnapshot(ctx, doc, at),
		r.recordPilots(ctx, pilots),
	)
}

func (r *Recorder) recordSnapshot(ctx context.Context, doc *domain.DronesDocument, at time.Time) error {
	if doc == nil {
		return nil
	}
	if err := r.loadLastLocked(); err != nil {
		r.metrics.IncrementReplayWrite(kindSnapshot, outcomeError)
		return err
	}
	if r.last != nil && r.last.Equal(doc) {
		r.metrics.IncrementReplayWrite(kindSnapshot, outcomeSkipped)
		r.logger.DebugContext(ctx, "no changes to drones, skipping")
		return nil
	}

	data, err := encodeSnapshot(doc)
	if err != nil {
		r.metrics.IncrementReplayWrite(kindSnapshot, outcomeError)
		return err
	}
	name := snapshotName(at)
	if err := writeFileAtomic(filepath.Join(r.dir, name), data); err != nil {
		r.metrics.IncrementReplayWrite(kindSnapshot, outcomeError)
		return fmt.Errorf("write snapshot %s: %w", name, err)
	}
	// A slow tick finishing late keeps its own file but never becomes the
	// comparison base for newer ticks.
	if seq := at.UnixMilli(); r.last == nil || seq >= r.lastSeq {
		r.last = doc
		r.lastSeq = seq
	}
	r.metrics.IncrementReplayWrite(kindSnapshot, outcomeWritten)
	r.logger.DebugContext(ctx, "saved drone snapshot", "file", name)
	return nil
}

// loadLastLocked reads the newest snapshot on disk once; afterwards the last
// written document is tracked in memory.
func (r *Recorder) loadLastLocked() error {
	if r.lastLoaded {
		return nil
	}
	files, err := listSnapshots(r.dir)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		newest := files[len(files)-1]
		last, err := readSnapshot(filepath.Join(r.dir, newest.name))
		if err != nil {
			return err
		}
		r.last = last
		r.lastSeq = newest.seq
	}
	r.lastLoaded = true
	return nil
}

func (r *Recorder) recordPilots(ctx context.Context, pilots map[string]domain.Pilot) error {
	existing, err := readPilots(r.dir)
	if err != nil {
		r.metrics.IncrementReplayWrite(kindPilots, outcomeError)
		return err
	}

	merged := maps.Clone(existing)
	maps.Copy(merged, pilots)
	if maps.Equal(existing, merged) {
		r.metrics.IncrementReplayWrite(kindPilots, outcomeSkipped)
		return nil
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		r.metrics.IncrementReplayWrite(kindPilots, outcomeError)
		return fmt.Errorf("encode pilots: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(r.dir, pilotsFile), data); err != nil {
		r.metrics.IncrementReplayWrite(kindPilots, outcomeError)
		return fmt.Errorf("write pilots: %w", err)
	}
	r.metrics.IncrementReplayWrite(kindPilots, outcomeWritten)
	r.logger.DebugContext(ctx, "saved pilot document",
		"pilots_on_disk", len(existing),
		"pilots_total", len(merged),
	)
	return nil
}
