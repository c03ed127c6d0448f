package replay

import (
	"context"
	"time"

	"birdnest/internal/domain"
	"birdnest/internal/ports"
)

const DefaultDir = "replay"

// Config selects the replay mode and where artifacts live.
type Config struct {
	Mode Mode
	Dir  string
	// Interval is the wall-clock time each replayed snapshot stays current,
	// normally the poll interval.
	Interval time.Duration
}

// Engine routes the poller's sources and recorder according to the mode.
type Engine struct {
	mode     Mode
	recorder *Recorder
	player   *Player
}

// NewEngine builds the engine for cfg. Replaying loads the history eagerly,
// so an empty replay directory fails here with ErrNoHistory.
func NewEngine(cfg Config, invalidator Invalidator, opts ...Option) (*Engine, error) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	e := &Engine{mode: cfg.Mode}
	switch cfg.Mode {
	case ModeRecording:
		e.recorder = NewRecorder(cfg.Dir, opts...)
	case ModeReplaying:
		player, err := LoadPlayer(cfg.Dir, cfg.Interval, invalidator, opts...)
		if err != nil {
			return nil, err
		}
		e.player = player
	default:
		e.mode = ModeOff
	}
	return e, nil
}

// Status reports the active mode.
func (e *Engine) Status() Mode {
	return e.mode
}

// Drones returns the player while replaying and live otherwise.
func (e *Engine) Drones(live ports.DroneSource) ports.DroneSource {
	if e.player != nil {
		return e.player
	}
	return live
}

// Pilots returns the player while replaying and live otherwise.
func (e *Engine) Pilots(live ports.PilotFetcher) ports.PilotFetcher {
	if e.player != nil {
		return e.player
	}
	return live
}

// Record persists the tick's snapshot and pilots when recording; it is a
// no-op in every other mode.
func (e *Engine) Record(ctx context.Context, doc *domain.DronesDocument, pilots map[string]domain.Pilot, at time.Time) error {
	if e.recorder == nil {
		return nil
	}
	return e.recorder.Record(ctx, doc, pilots, at)
}
