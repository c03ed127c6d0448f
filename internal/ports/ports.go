// Package ports defines the boundaries between the poller, the replay engine
// and the upstream feed. Live HTTP clients and replay players both satisfy
// the source interfaces so the poller never knows which one it is driving.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"birdnest/internal/domain"
)

// DroneSource yields the current drone snapshot.
type DroneSource interface {
	FetchDrones(ctx context.Context) (*domain.DronesDocument, error)
}

// PilotFetcher resolves the registered pilot for a drone serial.
// A missing pilot is reported as an error wrapping sentinel.ErrNotFound.
type PilotFetcher interface {
	FetchPilot(ctx context.Context, serial string) (domain.Pilot, error)
}

// Recorder persists a fetched snapshot and the pilots known at that moment.
// Implementations decide whether anything is actually written.
type Recorder interface {
	Record(ctx context.Context, doc *domain.DronesDocument, pilots map[string]domain.Pilot, at time.Time) error
}
