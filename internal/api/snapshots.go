package api

import (
	"net/http"

	"github.com/callsight/backend/internal/stats"
	"github.com/callsight/backend/internal/storage"
	"github.com/callsight/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SnapshotsHandler serves the archived window aggregates and the admin
// wipe of the archive.
type SnapshotsHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewSnapshotsHandler creates a new SnapshotsHandler
func NewSnapshotsHandler(store storage.Store, logger zerolog.Logger) *SnapshotsHandler {
	return &SnapshotsHandler{
		store:  store,
		logger: logger.With().Str("component", "snapshots_handler").Logger(),
	}
}

// HandleWindowSnapshots handles GET /api/snapshots/{window}
func (h *SnapshotsHandler) HandleWindowSnapshots(w http.ResponseWriter, r *http.Request) {
	kind, err := stats.ParseWindowKind(chi.URLParam(r, "window"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshots, err := h.store.GetWindowSnapshots(string(kind))
	if err != nil {
		h.logger.Error().Err(err).Str("window", string(kind)).Msg("failed to load window snapshots")
		http.Error(w, "failed to retrieve snapshots", http.StatusInternalServerError)
		return
	}

	if snapshots == nil {
		snapshots = []types.WindowSnapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// HandleWipeSnapshots handles POST /api/admin/snapshots/wipe. Local
// development helper mirroring the archive's TruncateAll.
func (h *SnapshotsHandler) HandleWipeSnapshots(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate snapshot archive")
		http.Error(w, "failed to truncate snapshots", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Msg("snapshot archive truncated")

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "snapshot archive truncated",
	})
}
