// Package api exposes the infringement history and the latest snapshot over
// HTTP. Handlers only read; all state is owned by the poller's stores.
package api

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"birdnest/internal/domain"
	"birdnest/internal/replay"
	dErrors "birdnest/pkg/domain-errors"
	"birdnest/pkg/platform/httputil"
)

// InfringementReader lists aggregated infringements.
type InfringementReader interface {
	ListSince(minUpdatedAt time.Time) []domain.Infringement
}

// SnapshotReader returns the latest snapshot, nil before the first poll.
type SnapshotReader interface {
	Current() *domain.DronesDocument
}

// StatusReporter reports the replay mode.
type StatusReporter interface {
	Status() replay.Mode
}

// Handler serves the read API.
type Handler struct {
	logger        *slog.Logger
	infringements InfringementReader
	snapshots     SnapshotReader
	replay        StatusReporter
	version       string
}

// NewHandler creates a new Handler.
func NewHandler(
	infringements InfringementReader,
	snapshots SnapshotReader,
	replay StatusReporter,
	version string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		logger:        logger,
		infringements: infringements,
		snapshots:     snapshots,
		replay:        replay,
		version:       version,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/infringements", h.handleListInfringements)
	r.Get("/drones", h.handleDrones)
	r.Get("/meta", h.handleMeta)
}

type infringementsResponse struct {
	Infringements []domain.Infringement `json:"infringements"`
}

// dronesResponse is column oriented: the n-th entry of every slice belongs
// to the same drone.
type dronesResponse struct {
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Serials []string  `json:"serials"`
}

type metaResponse struct {
	Version      string      `json:"version"`
	ReplayStatus replay.Mode `json:"replay_status"`
}

// handleListInfringements returns live infringements, optionally only those
// updated after min_updated_at (RFC 3339).
func (h *Handler) handleListInfringements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var since time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("min_updated_at")); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.logger.WarnContext(ctx, "invalid min_updated_at",
				"value", raw,
				"error", err,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "min_updated_at must be an RFC 3339 timestamp"))
			return
		}
		since = t
	}

	list := h.infringements.ListSince(since)
	if list == nil {
		list = []domain.Infringement{}
	}
	slices.SortFunc(list, func(a, b domain.Infringement) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return -c
		}
		return strings.Compare(a.DroneSerialNumber, b.DroneSerialNumber)
	})
	httputil.WriteJSON(w, http.StatusOK, infringementsResponse{Infringements: list})
}

func (h *Handler) handleDrones(w http.ResponseWriter, _ *http.Request) {
	resp := dronesResponse{X: []float64{}, Y: []float64{}, Serials: []string{}}
	if doc := h.snapshots.Current(); doc != nil {
		for _, d := range doc.Capture.Drones {
			resp.X = append(resp.X, d.PositionX)
			resp.Y = append(resp.Y, d.PositionY)
			resp.Serials = append(resp.Serials, d.SerialNumber)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMeta(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, metaResponse{
		Version:      h.version,
		ReplayStatus: h.replay.Status(),
	})
}
