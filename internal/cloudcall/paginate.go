package cloudcall

import (
	"context"

	"github.com/callsight/backend/internal/metrics"
	"github.com/callsight/backend/internal/types"
)

const (
	// PageSize is the fixed Take value for activity queries.
	PageSize = 500

	// MonthPageCeiling bounds a month-range fetch. Beyond it the result is
	// truncated rather than looping on a runaway dataset.
	MonthPageCeiling = 50

	// DayPageCeiling bounds a same-day fetch.
	DayPageCeiling = 5
)

// ActivitySource is the page-level query the fetcher drives. *Client
// implements it; tests substitute synthetic sources.
type ActivitySource interface {
	GetAgentActivity(ctx context.Context, q types.ActivityQuery) (*types.ActivityEnvelope, error)
}

// FetchActivityRange retrieves the complete activity dataset for a range,
// issuing sequential page requests starting at page 1. A page shorter than
// PageSize is the final page. After maxPages the fetch stops and the
// truncated flag is set; callers must tolerate the partial dataset. Any
// page failure aborts the whole fetch.
func FetchActivityRange(ctx context.Context, src ActivitySource, rng types.DateRange, maxPages int) ([]types.ActivityRecord, bool, error) {
	m := metrics.Get()

	var all []types.ActivityRecord
	for page := 1; ; page++ {
		if page > maxPages {
			m.RecordTruncation()
			return all, true, nil
		}

		envelope, err := src.GetAgentActivity(ctx, types.ActivityQuery{
			From: rng.From,
			To:   rng.To,
			Take: PageSize,
			Page: page,
		})
		if err != nil {
			return nil, false, err
		}

		m.RecordActivityPage(len(envelope.Data))
		all = append(all, envelope.Data...)

		if len(envelope.Data) < PageSize {
			return all, false, nil
		}
	}
}

// FetchActivities implements the fetcher contract used by the identity
// cache on top of the client's page query.
func (c *Client) FetchActivities(ctx context.Context, rng types.DateRange, maxPages int) ([]types.ActivityRecord, bool, error) {
	records, truncated, err := FetchActivityRange(ctx, c, rng, maxPages)
	if err != nil {
		return nil, false, err
	}
	if truncated {
		c.logger.Warn().
			Int("max_pages", maxPages).
			Int("records", len(records)).
			Time("from", rng.From).
			Time("to", rng.To).
			Msg("activity fetch hit page ceiling, result truncated")
	}
	return records, truncated, nil
}

// FetchSummaries fetches the rollup dataset for a range (all reach).
func (c *Client) FetchSummaries(ctx context.Context, rng types.DateRange) ([]types.SummaryRecord, error) {
	envelope, err := c.GetAgentSummary(ctx, types.SummaryQuery{
		From:  rng.From,
		To:    rng.To,
		Reach: types.ReachAll,
	})
	if err != nil {
		return nil, err
	}
	metrics.Get().RecordSummaryFetch(len(envelope.Data))
	return envelope.Data, nil
}
