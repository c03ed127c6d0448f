package api

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birdnest/internal/domain"
	"birdnest/internal/infringement"
	"birdnest/internal/platform/metrics"
	"birdnest/internal/replay"
	"birdnest/internal/snapshot"
	"birdnest/pkg/testutil"
)

type staticStatus replay.Mode

func (s staticStatus) Status() replay.Mode { return replay.Mode(s) }

type fixture struct {
	store     *infringement.Store
	snapshots *snapshot.Store
	router    http.Handler
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2023, 1, 10, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		store:     infringement.NewStore(100, 10*time.Minute, infringement.WithClock(func() time.Time { return now })),
		snapshots: snapshot.NewStore(),
		now:       now,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	metrics.New(reg).IncrementTick("ok")

	h := NewHandler(f.store, f.snapshots, staticStatus(replay.ModeRecording), "1.2.3", logger)
	f.router = NewRouter(h, reg, logger)
	return f
}

func TestListInfringements(t *testing.T) {
	f := newFixture(t)
	ada := &domain.Pilot{PilotID: "P-1", FirstName: "Ada"}
	f.store.Merge(domain.Infringement{DroneSerialNumber: "SN-old", Distance: 90000, X: 1, Y: 2, UpdatedAt: f.now.Add(-5 * time.Minute)})
	f.store.Merge(domain.Infringement{DroneSerialNumber: "SN-new", Pilot: ada, Distance: 40000, X: 3, Y: 4, UpdatedAt: f.now.Add(-time.Minute)})

	t.Run("lists newest first", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/infringements"))
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[infringementsResponse](t, rr)
		require.Len(t, resp.Infringements, 2)
		assert.Equal(t, "SN-new", resp.Infringements[0].DroneSerialNumber)
		require.NotNil(t, resp.Infringements[0].Pilot)
		assert.Equal(t, "Ada", resp.Infringements[0].Pilot.FirstName)
		assert.Nil(t, resp.Infringements[1].Pilot)
	})

	t.Run("filters by min_updated_at", func(t *testing.T) {
		since := f.now.Add(-2 * time.Minute).Format(time.RFC3339)
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/infringements?min_updated_at="+since))
		testutil.AssertStatusOK(t, rr)

		resp := testutil.UnmarshalResponse[infringementsResponse](t, rr)
		require.Len(t, resp.Infringements, 1)
		assert.Equal(t, "SN-new", resp.Infringements[0].DroneSerialNumber)
	})

	t.Run("uses snake_case fields", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/infringements"))
		body := string(testutil.ReadBody(t, rr))
		assert.Contains(t, body, `"drone_serial_number"`)
		assert.Contains(t, body, `"updated_at"`)
		assert.Contains(t, body, `"first_name"`)
	})

	t.Run("invalid timestamp is bad request", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/infringements?min_updated_at=yesterday"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestListInfringementsEmpty(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/infringements"))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"infringements":[]}`, string(testutil.ReadBody(t, rr)))
}

func TestDrones(t *testing.T) {
	f := newFixture(t)

	t.Run("empty arrays before the first snapshot", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drones"))
		testutil.AssertStatusOK(t, rr)
		assert.JSONEq(t, `{"x":[],"y":[],"serials":[]}`, string(testutil.ReadBody(t, rr)))
	})

	t.Run("columns are index aligned", func(t *testing.T) {
		f.snapshots.Set(&domain.DronesDocument{Capture: domain.Capture{Drones: []domain.Drone{
			{SerialNumber: "SN-1", PositionX: 1, PositionY: 2},
			{SerialNumber: "SN-2", PositionX: 3, PositionY: 4},
		}}})
		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/drones"))
		testutil.AssertStatusOK(t, rr)
		assert.JSONEq(t, `{"x":[1,3],"y":[2,4],"serials":["SN-1","SN-2"]}`, string(testutil.ReadBody(t, rr)))
	})
}

func TestMeta(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/meta"))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"version":"1.2.3","replay_status":"recording"}`, string(testutil.ReadBody(t, rr)))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/health"))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "ok")

	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.Contains(t, string(testutil.ReadBody(t, rr)), "birdnest_poll_ticks_total")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewRequest(t, http.MethodGet, "/meta")
	req.Header.Set("Origin", "https://example.com")

	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/nope"))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
