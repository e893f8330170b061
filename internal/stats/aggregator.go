package stats

import (
	"sort"

	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/types"
)

// NameResolver turns numeric ids into display names. *lookup.Cache
// implements it.
type NameResolver interface {
	AgentName(id int64) string
	DepartmentName(id int64) string
}

// Aggregate computes one statistics record per agent for a window from
// the cached raw datasets. Itemized activities provide the window-scoped
// talk time; rollup summaries provide the authoritative call counts, and
// for the month window the authoritative talk time as well. Agents with
// no observed work in the window are not reported. The result is sorted
// by talk time, descending.
func Aggregate(activities []types.ActivityRecord, summaries []types.SummaryRecord, w Window, names NameResolver) []types.AgentWindowStats {
	acc := make(map[int64]*types.AgentWindowStats)
	var order []int64

	create := func(id int64, deptID int64, deptName string) *types.AgentWindowStats {
		stat := &types.AgentWindowStats{
			AgentID:        id,
			AgentName:      names.AgentName(id),
			DepartmentID:   deptID,
			DepartmentName: deptName,
		}
		acc[id] = stat
		order = append(order, id)
		return stat
	}

	for _, a := range activities {
		if !w.Range.Contains(a.OccurredAt) {
			continue
		}
		id, ok := lookup.ParseAgentID(a.AccountNumber)
		if !ok {
			continue
		}

		stat, exists := acc[id]
		if !exists {
			deptName := a.DepartmentName
			if a.DepartmentID != 0 {
				deptName = names.DepartmentName(a.DepartmentID)
			}
			stat = create(id, a.DepartmentID, deptName)
		}

		stat.TalkTimeMs += a.TalkTime

		// Unknown direction codes still contribute talk time but are
		// never counted as connected calls.
		if a.CallOutcomeID == types.OutcomeConnected {
			switch a.CallDirectionID {
			case types.DirectionOutbound:
				stat.OutboundCalls++
			case types.DirectionInbound:
				stat.InboundCalls++
			}
		}
	}

	overlaySummaries(acc, create, summaries, w.Kind, names)

	merged := ResolveDuplicates(collect(acc, order))

	out := merged[:0]
	for _, stat := range merged {
		if stat.TalkTimeMs == 0 && stat.OutboundCalls == 0 && stat.InboundCalls == 0 {
			continue
		}
		out = append(out, stat)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TalkTimeMs > out[j].TalkTimeMs })
	return out
}

// overlaySummaries reconciles the rollup dataset into the activity-derived
// accumulators. Precedence per window kind:
//
//	month     summary replaces talk time and counts (ground truth)
//	day/week  summary counts replace derived counts; activity talk time
//	          stays (summary talk time is month-scoped)
//
// Agents present only in summaries are added either way.
func overlaySummaries(acc map[int64]*types.AgentWindowStats, create func(int64, int64, string) *types.AgentWindowStats, summaries []types.SummaryRecord, kind WindowKind, names NameResolver) {
	for _, s := range summaries {
		stat, exists := acc[s.AccountID]

		if !exists {
			// A zero department id means the rollup carried none; leave
			// the name empty instead of synthesizing a fallback.
			deptName := ""
			if s.DepartmentID != 0 {
				deptName = names.DepartmentName(s.DepartmentID)
			}
			stat = create(s.AccountID, s.DepartmentID, deptName)
			stat.OutboundCalls = s.OutboundConnectedCount
			stat.InboundCalls = s.InboundConnectedCount
			if kind == WindowMonth {
				stat.TalkTimeMs = s.InboundInCallDuration + s.OutboundInCallDuration
			}
			continue
		}

		stat.OutboundCalls = s.OutboundConnectedCount
		stat.InboundCalls = s.InboundConnectedCount
		if kind == WindowMonth {
			stat.TalkTimeMs = s.InboundInCallDuration + s.OutboundInCallDuration
		}
	}
}

func collect(acc map[int64]*types.AgentWindowStats, order []int64) []types.AgentWindowStats {
	out := make([]types.AgentWindowStats, 0, len(order))
	for _, id := range order {
		out = append(out, *acc[id])
	}
	return out
}
