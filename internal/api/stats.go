package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/callsight/backend/internal/cloudcall"
	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/stats"
	"github.com/callsight/backend/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// StatsHandler serves the aggregated per-agent statistics and the lookup
// diagnostics consumed by the dashboard.
type StatsHandler struct {
	cache  *lookup.Cache
	logger zerolog.Logger
	now    func() time.Time
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(cache *lookup.Cache, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		cache:  cache,
		logger: logger.With().Str("component", "api").Logger(),
		now:    time.Now,
	}
}

// HandleWindowStats handles GET /api/stats/{window}
func (h *StatsHandler) HandleWindowStats(w http.ResponseWriter, r *http.Request) {
	kind, err := stats.ParseWindowKind(chi.URLParam(r, "window"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	window := stats.For(kind, h.now())
	result := stats.Aggregate(h.cache.MonthlyActivities(), h.cache.MonthlySummaries(), window, h.cache)
	if result == nil {
		result = []types.AgentWindowStats{}
	}

	h.logger.Debug().
		Str("window", string(kind)).
		Int("agents", len(result)).
		Msg("window stats computed")

	writeJSON(w, http.StatusOK, result)
}

// HandleAgents handles GET /api/agents
func (h *StatsHandler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.cache.Agents()
	if agents == nil {
		agents = []types.AgentIdentity{}
	}
	writeJSON(w, http.StatusOK, agents)
}

// HandleDepartments handles GET /api/departments
func (h *StatsHandler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	departments := h.cache.Departments()
	if departments == nil {
		departments = []types.DepartmentIdentity{}
	}
	writeJSON(w, http.StatusOK, departments)
}

// HandleLookupStats handles GET /api/lookup/stats
func (h *StatsHandler) HandleLookupStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Stats())
}

// HandleRebuild handles POST /api/lookup/rebuild. With force=true the
// freshness window is ignored. Rebuild failures keep the previous cache,
// so the client may simply retry.
func (h *StatsHandler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.cache.Rebuild(r.Context(), force); err != nil {
		h.logger.Error().Err(err).Bool("force", force).Msg("rebuild request failed")
		writeJSON(w, rebuildStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stats":  h.cache.Stats(),
	})
}

// HandleRawActivities handles GET /api/raw/activities
func (h *StatsHandler) HandleRawActivities(w http.ResponseWriter, r *http.Request) {
	activities := h.cache.MonthlyActivities()
	if activities == nil {
		activities = []types.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// HandleRawSummaries handles GET /api/raw/summaries
func (h *StatsHandler) HandleRawSummaries(w http.ResponseWriter, r *http.Request) {
	summaries := h.cache.MonthlySummaries()
	if summaries == nil {
		summaries = []types.SummaryRecord{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// rebuildStatus maps a rebuild failure onto an HTTP status. An expired
// upstream credential is surfaced as 401 so the dashboard can force a
// re-login instead of retrying.
func rebuildStatus(err error) int {
	if cloudcall.IsAuthExpired(err) {
		return http.StatusUnauthorized
	}
	var remote *cloudcall.RemoteError
	var network *cloudcall.NetworkError
	if errors.As(err, &remote) || errors.As(err, &network) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
