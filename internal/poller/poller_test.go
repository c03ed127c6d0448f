package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"birdnest/internal/domain"
	"birdnest/internal/feed"
	"birdnest/internal/infringement"
	"birdnest/internal/ndz"
	"birdnest/internal/pilot"
	"birdnest/internal/platform/metrics"
	"birdnest/internal/ports/mocks"
	"birdnest/internal/snapshot"
)

var (
	testZone = ndz.Zone{CenterX: 250000, CenterY: 250000, Radius: 100000}
	tickTime = time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time { return tickTime }

type fixture struct {
	drones    *mocks.MockDroneSource
	fetcher   *mocks.MockPilotFetcher
	recorder  *mocks.MockRecorder
	store     *infringement.Store
	snapshots *snapshot.Store
	cache     *pilot.Cache
	metrics   *metrics.Metrics
	poller    *Poller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		drones:    mocks.NewMockDroneSource(ctrl),
		fetcher:   mocks.NewMockPilotFetcher(ctrl),
		recorder:  mocks.NewMockRecorder(ctrl),
		snapshots: snapshot.NewStore(),
		metrics:   metrics.New(nil),
	}
	f.store = infringement.NewStore(100, 10*time.Minute, infringement.WithClock(fixedClock))
	f.cache = pilot.NewCache(f.fetcher, 100)
	f.poller = New(f.drones, f.cache, f.store, f.snapshots, testZone,
		WithLogger(discardLogger()),
		WithMetrics(f.metrics),
		WithRecorder(f.recorder),
		WithClock(fixedClock),
	)
	return f
}

func snapshotWith(drones ...domain.Drone) *domain.DronesDocument {
	return &domain.DronesDocument{
		DeviceInformation: domain.SensorInfo{DeviceID: "GUARDB1RD"},
		Capture:           domain.Capture{SnapshotTimestamp: "2023-01-10T12:00:00.000Z", Drones: drones},
	}
}

func TestTickEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inside := domain.Drone{SerialNumber: "SN-in", PositionX: 250000, PositionY: 300000}
	outside := domain.Drone{SerialNumber: "SN-out", PositionX: 400000, PositionY: 250000}
	doc := snapshotWith(inside, outside)

	f.drones.EXPECT().FetchDrones(gomock.Any()).Return(doc, nil)
	f.fetcher.EXPECT().FetchPilot(gomock.Any(), "SN-in").
		Return(domain.Pilot{}, feed.NewFeedError(feed.ErrorNotFound, "pilots", "pilot not found", nil))
	f.recorder.EXPECT().Record(gomock.Any(), doc, map[string]domain.Pilot{}, tickTime).Return(nil)

	merged, err := f.poller.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	got := f.store.ListAll()
	require.Len(t, got, 1)
	assert.Equal(t, "SN-in", got[0].DroneSerialNumber)
	assert.InDelta(t, 50000.0, got[0].Distance, 1e-9)
	assert.Equal(t, 250000.0, got[0].X)
	assert.Equal(t, 300000.0, got[0].Y)
	assert.Nil(t, got[0].Pilot)
	assert.Equal(t, tickTime, got[0].UpdatedAt)

	assert.Same(t, doc, f.snapshots.Current())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ticks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Candidates))
}

func TestTickResolvesPilots(t *testing.T) {
	f := newFixture(t)
	ada := domain.Pilot{PilotID: "P-1", FirstName: "Ada"}
	grace := domain.Pilot{PilotID: "P-2", FirstName: "Grace"}
	doc := snapshotWith(
		domain.Drone{SerialNumber: "SN-1", PositionX: 250000, PositionY: 250000},
		domain.Drone{SerialNumber: "SN-2", PositionX: 260000, PositionY: 250000},
	)

	f.drones.EXPECT().FetchDrones(gomock.Any()).Return(doc, nil)
	f.fetcher.EXPECT().FetchPilot(gomock.Any(), "SN-1").Return(ada, nil)
	f.fetcher.EXPECT().FetchPilot(gomock.Any(), "SN-2").Return(grace, nil)
	f.recorder.EXPECT().
		Record(gomock.Any(), doc, map[string]domain.Pilot{"SN-1": ada, "SN-2": grace}, tickTime).
		Return(errors.New("disk full"))

	merged, err := f.poller.Tick(context.Background())
	require.NoError(t, err, "recorder failures are logged, not returned")
	require.Len(t, merged, 2)

	one, ok := f.store.Get("SN-1")
	require.True(t, ok)
	require.NotNil(t, one.Pilot)
	assert.Equal(t, ada, *one.Pilot)
	assert.Equal(t, 0.0, one.Distance)

	two, ok := f.store.Get("SN-2")
	require.True(t, ok)
	require.NotNil(t, two.Pilot)
	assert.Equal(t, grace, *two.Pilot)
	assert.InDelta(t, 10000.0, two.Distance, 1e-9)
}

func TestTickFetchFailure(t *testing.T) {
	f := newFixture(t)
	boom := feed.NewFeedError(feed.ErrorNetwork, "drones", "request failed", errors.New("connection refused"))
	f.drones.EXPECT().FetchDrones(gomock.Any()).Return(nil, boom)

	merged, err := f.poller.Tick(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, merged)
	assert.Nil(t, f.snapshots.Current())
	assert.Empty(t, f.store.ListAll())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ticks.WithLabelValues("fetch_error")))
}

func TestTickMergesAcrossTicks(t *testing.T) {
	f := newFixture(t)
	ada := domain.Pilot{PilotID: "P-1"}

	near := snapshotWith(domain.Drone{SerialNumber: "SN-1", PositionX: 250000, PositionY: 260000})
	far := snapshotWith(domain.Drone{SerialNumber: "SN-1", PositionX: 250000, PositionY: 330000})

	gomock.InOrder(
		f.drones.EXPECT().FetchDrones(gomock.Any()).Return(near, nil),
		f.drones.EXPECT().FetchDrones(gomock.Any()).Return(far, nil),
	)
	f.fetcher.EXPECT().FetchPilot(gomock.Any(), "SN-1").Return(ada, nil).Times(1)
	f.recorder.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := f.poller.Tick(context.Background())
	require.NoError(t, err)
	_, err = f.poller.Tick(context.Background())
	require.NoError(t, err)

	got, ok := f.store.Get("SN-1")
	require.True(t, ok)
	assert.InDelta(t, 10000.0, got.Distance, 1e-9)
	assert.Equal(t, 260000.0, got.Y)
	assert.Same(t, far, f.snapshots.Current())
}

// countingSource is a DroneSource usable after the test body returns, which
// gomock mocks are not.
type countingSource struct {
	calls atomic.Int32
}

func (s *countingSource) FetchDrones(context.Context) (*domain.DronesDocument, error) {
	s.calls.Add(1)
	return snapshotWith(), nil
}

type noPilots struct{}

func (noPilots) FetchPilot(context.Context, string) (domain.Pilot, error) {
	return domain.Pilot{}, errors.New("unexpected lookup")
}

func TestRunTicksUntilCancelled(t *testing.T) {
	source := &countingSource{}
	p := New(source, pilot.NewCache(noPilots{}, 10), infringement.NewStore(10, time.Minute), snapshot.NewStore(), testZone,
		WithInterval(10*time.Millisecond),
		WithLogger(discardLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	require.Eventually(t, func() bool { return source.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
