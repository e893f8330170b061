package lookup

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/callsight/backend/internal/cloudcall"
	"github.com/callsight/backend/internal/metrics"
	"github.com/callsight/backend/internal/types"
	"github.com/rs/zerolog"
)

// FreshnessWindow is how long a successful rebuild satisfies unforced
// rebuild requests.
const FreshnessWindow = 5 * time.Minute

// Fetcher retrieves the raw datasets the cache is built from.
// *cloudcall.Client implements it.
type Fetcher interface {
	FetchActivities(ctx context.Context, rng types.DateRange, maxPages int) ([]types.ActivityRecord, bool, error)
	FetchSummaries(ctx context.Context, rng types.DateRange) ([]types.SummaryRecord, error)
}

// snapshot is one fully-built cache generation. Snapshots are immutable
// after construction; readers always see a complete one or none at all.
type snapshot struct {
	agents      map[int64]types.AgentIdentity
	departments map[int64]types.DepartmentIdentity
	activities  []types.ActivityRecord
	summaries   []types.SummaryRecord
	builtAt     time.Time
	truncated   bool
}

// Cache resolves numeric agent and department ids to display names and
// holds the raw monthly datasets the window aggregations are computed
// from. Replacement is a whole-snapshot swap, so reads never block and
// never observe a half-built map.
type Cache struct {
	fetcher Fetcher
	logger  zerolog.Logger
	ttl     time.Duration
	now     func() time.Time
	manual  map[int64]string

	snap       atomic.Pointer[snapshot]
	rebuilding atomic.Bool
}

// Options tune a Cache. Zero values select the production defaults.
type Options struct {
	// TTL overrides the freshness window.
	TTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time

	// ManualNames maps agent ids to operator-maintained display names,
	// consulted when an id is missing from the built lookup entirely.
	ManualNames map[int64]string
}

// NewCache creates an empty identity cache. It stays empty until the
// first successful Rebuild.
func NewCache(fetcher Fetcher, logger zerolog.Logger, opts Options) *Cache {
	ttl := opts.TTL
	if ttl == 0 {
		ttl = FreshnessWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "lookup").Logger(),
		ttl:     ttl,
		now:     now,
		manual:  opts.ManualNames,
	}
}

// Rebuild fetches the current month's datasets and replaces the cache
// snapshot. Unforced calls within the freshness window are no-ops, as are
// calls arriving while another rebuild is in flight (late callers do not
// wait, they keep reading the current snapshot). On any fetch failure the
// existing snapshot stays untouched and the error is returned.
func (c *Cache) Rebuild(ctx context.Context, force bool) error {
	m := metrics.Get()

	if !force {
		if s := c.snap.Load(); s != nil && c.now().Sub(s.builtAt) < c.ttl {
			m.RecordRebuildSkipped()
			return nil
		}
	}

	if !c.rebuilding.CompareAndSwap(false, true) {
		c.logger.Debug().Msg("rebuild already in flight, skipping")
		m.RecordRebuildSkipped()
		return nil
	}
	defer c.rebuilding.Store(false)

	start := time.Now()
	snap, err := c.build(ctx)
	m.RecordRebuild(time.Since(start), err != nil)
	if err != nil {
		c.logger.Error().Err(err).Msg("cache rebuild failed, keeping previous snapshot")
		return err
	}

	c.snap.Store(snap)
	c.logger.Info().
		Int("agents", len(snap.agents)).
		Int("departments", len(snap.departments)).
		Int("monthly_activities", len(snap.activities)).
		Int("monthly_summaries", len(snap.summaries)).
		Bool("truncated", snap.truncated).
		Dur("took", time.Since(start)).
		Msg("lookup tables rebuilt")
	return nil
}

func (c *Cache) build(ctx context.Context) (*snapshot, error) {
	now := c.now()
	monthRange := types.MonthToDate(now)
	todayRange := types.DayOf(now)

	monthActivities, monthTruncated, err := c.fetcher.FetchActivities(ctx, monthRange, cloudcall.MonthPageCeiling)
	if err != nil {
		return nil, fmt.Errorf("fetching monthly activities: %w", err)
	}

	summaries, err := c.fetcher.FetchSummaries(ctx, monthRange)
	if err != nil {
		return nil, fmt.Errorf("fetching monthly summaries: %w", err)
	}

	// An agent active only today may not be in the month sample yet, and
	// activity rows are the most reliable name source.
	todayActivities, todayTruncated, err := c.fetcher.FetchActivities(ctx, todayRange, cloudcall.DayPageCeiling)
	if err != nil {
		return nil, fmt.Errorf("fetching today's activities: %w", err)
	}

	combined := make([]types.ActivityRecord, 0, len(monthActivities)+len(todayActivities))
	combined = append(combined, monthActivities...)
	combined = append(combined, todayActivities...)

	agents := extractAgentIdentities(combined)

	// Agents present only in rollups get a synthesized name.
	for _, s := range summaries {
		if _, ok := agents[s.AccountID]; !ok {
			agents[s.AccountID] = types.AgentIdentity{
				ID:         s.AccountID,
				Name:       FallbackName(s.AccountID),
				Source:     types.NameFromSummary,
				CustomerID: s.CustomerID,
			}
		}
	}

	departments := make(map[int64]types.DepartmentIdentity)
	for _, a := range monthActivities {
		if a.DepartmentID == 0 || a.DepartmentName == "" {
			continue
		}
		if _, ok := departments[a.DepartmentID]; !ok {
			departments[a.DepartmentID] = types.DepartmentIdentity{
				ID:   a.DepartmentID,
				Name: a.DepartmentName,
			}
		}
	}

	return &snapshot{
		agents:      agents,
		departments: departments,
		activities:  monthActivities,
		summaries:   summaries,
		builtAt:     now,
		truncated:   monthTruncated || todayTruncated,
	}, nil
}

// extractAgentIdentities builds the id -> identity map from activity
// records. Every parsable agent id gets an entry; a valid account name
// claims the entry unless an earlier valid activity name already did.
func extractAgentIdentities(activities []types.ActivityRecord) map[int64]types.AgentIdentity {
	agents := make(map[int64]types.AgentIdentity)
	for _, a := range activities {
		id, ok := ParseAgentID(a.AccountNumber)
		if !ok {
			continue
		}

		if IsValidAgentName(a.AccountName, id) {
			existing, exists := agents[id]
			if exists && existing.Source == types.NameFromActivity && !IsFallbackName(existing.Name) {
				// First valid activity name wins; rows can disagree.
				continue
			}
			agents[id] = types.AgentIdentity{
				ID:         id,
				Name:       a.AccountName,
				Source:     types.NameFromActivity,
				CustomerID: a.CustomerID,
			}
			continue
		}

		if _, exists := agents[id]; !exists {
			agents[id] = types.AgentIdentity{
				ID:         id,
				Name:       FallbackName(id),
				Source:     types.NameFromActivity,
				CustomerID: a.CustomerID,
			}
		}
	}
	return agents
}

// AgentName resolves an agent id to a display name. Unknown ids fall back
// to the manual override table and finally to the synthesized shape, so
// the result is never empty.
func (c *Cache) AgentName(id int64) string {
	if s := c.snap.Load(); s != nil {
		if a, ok := s.agents[id]; ok {
			return a.Name
		}
	}
	if name, ok := c.manual[id]; ok {
		return name
	}
	return FallbackName(id)
}

// DepartmentName resolves a department id to its display name.
func (c *Cache) DepartmentName(id int64) string {
	if s := c.snap.Load(); s != nil {
		if d, ok := s.departments[id]; ok {
			return d.Name
		}
	}
	return fmt.Sprintf("Department %d", id)
}

// Departments returns all known departments sorted by name.
func (c *Cache) Departments() []types.DepartmentIdentity {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	out := make([]types.DepartmentIdentity, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Agents returns all known agent identities sorted by name.
func (c *Cache) Agents() []types.AgentIdentity {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	out := make([]types.AgentIdentity, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MonthlyActivities returns the raw activity snapshot. The slice is part
// of an immutable snapshot and must not be mutated.
func (c *Cache) MonthlyActivities() []types.ActivityRecord {
	if s := c.snap.Load(); s != nil {
		return s.activities
	}
	return nil
}

// MonthlySummaries returns the raw summary snapshot.
func (c *Cache) MonthlySummaries() []types.SummaryRecord {
	if s := c.snap.Load(); s != nil {
		return s.summaries
	}
	return nil
}

// Ready reports whether a snapshot with any lookup data exists.
func (c *Cache) Ready() bool {
	s := c.snap.Load()
	return s != nil && (len(s.agents) > 0 || len(s.departments) > 0)
}

// Stats returns the diagnostic counters for the current snapshot.
func (c *Cache) Stats() types.LookupStats {
	s := c.snap.Load()
	if s == nil {
		return types.LookupStats{}
	}

	named := 0
	for _, a := range s.agents {
		if !IsFallbackName(a.Name) {
			named++
		}
	}

	return types.LookupStats{
		Agents:            len(s.agents),
		NamedAgents:       named,
		FallbackAgents:    len(s.agents) - named,
		Departments:       len(s.departments),
		MonthlyActivities: len(s.activities),
		MonthlySummaries:  len(s.summaries),
		LastBuilt:         s.builtAt,
		Truncated:         s.truncated,
		Ready:             len(s.agents) > 0 || len(s.departments) > 0,
	}
}
