package refresher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/stats"
	"github.com/callsight/backend/internal/storage"
	"github.com/callsight/backend/internal/types"
	"github.com/callsight/backend/internal/websocket"
	"github.com/rs/zerolog"
)

// StatsMessage is the push payload sent to dashboard clients after a
// successful cache refresh.
type StatsMessage struct {
	Type    string                   `json:"type"`
	Window  string                   `json:"window"`
	BuiltAt string                   `json:"builtAt"`
	Agents  []types.AgentWindowStats `json:"agents"`
}

// Broadcaster fans a message out to connected dashboard clients.
// *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(message []byte)
	ClientCount() int
}

var _ Broadcaster = (*websocket.Hub)(nil)

// Refresher periodically rebuilds the identity cache, pushes the fresh
// day window to connected clients, and archives the window snapshots.
type Refresher struct {
	cache    *lookup.Cache
	hub      Broadcaster
	store    storage.Store
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a new Refresher
func New(cache *lookup.Cache, hub Broadcaster, store storage.Store, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		cache:    cache,
		hub:      hub,
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "refresher").Logger(),
	}
}

// Start begins the refresh loop. An immediate refresh runs before the
// first tick so a fresh process serves data as soon as the upstream
// responds.
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("refresher started")

	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("refresher stopped")
			return

		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.cache.Rebuild(ctx, false); err != nil {
		// Previous snapshot survives; clients keep the last push.
		r.logger.Warn().Err(err).Msg("scheduled rebuild failed")
		return
	}

	now := time.Now()
	activities := r.cache.MonthlyActivities()
	summaries := r.cache.MonthlySummaries()

	for _, kind := range []stats.WindowKind{stats.WindowDay, stats.WindowWeek, stats.WindowMonth} {
		window := stats.For(kind, now)
		agents := stats.Aggregate(activities, summaries, window, r.cache)

		snap := types.NewWindowSnapshot(string(kind), now, agents)
		if err := r.store.SaveWindowSnapshot(snap); err != nil {
			r.logger.Error().Err(err).Str("window", string(kind)).Msg("failed to archive window snapshot")
		}

		if kind != stats.WindowDay {
			continue
		}

		message := StatsMessage{
			Type:    "stats",
			Window:  string(kind),
			BuiltAt: snap.BuiltAt,
			Agents:  agents,
		}
		data, err := json.Marshal(message)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to marshal stats message")
			continue
		}

		r.hub.Broadcast(data)
		r.logger.Debug().
			Int("agents", len(agents)).
			Int("clients", r.hub.ClientCount()).
			Msg("day window broadcasted")
	}
}
