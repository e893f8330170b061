package stats

import (
	"strconv"

	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/types"
)

const (
	// dedupeBucketMs buckets talk times to the nearest 30-second multiple
	// so near-identical totals land in the same candidate group.
	dedupeBucketMs = 30 * 1000

	// dedupeToleranceMs is the maximum talk-time difference for two
	// accumulators to be treated as the same physical agent.
	dedupeToleranceMs = 60 * 1000
)

type dedupeKey struct {
	roundedTalkMs int64
	department    string
}

// ResolveDuplicates merges pairs of records that plausibly belong to one
// physical agent reported under two numeric accounts (legacy vs current
// account). Candidates share a department and a talk time rounded to the
// same 30-second multiple; only buckets of exactly two records with
// non-zero talk time merge. Groups of three or more are left untouched:
// a false merge silently discards a real agent's statistics. The merged
// record keeps the element-wise maximum of the pair, never the sum.
func ResolveDuplicates(agents []types.AgentWindowStats) []types.AgentWindowStats {
	if len(agents) < 2 {
		return agents
	}

	out := make([]types.AgentWindowStats, len(agents))
	copy(out, agents)

	buckets := make(map[dedupeKey][]int)
	for i, a := range out {
		dept := "unknown"
		if a.DepartmentID != 0 {
			dept = strconv.FormatInt(a.DepartmentID, 10)
		}
		key := dedupeKey{
			roundedTalkMs: roundToBucket(a.TalkTimeMs),
			department:    dept,
		}
		buckets[key] = append(buckets[key], i)
	}

	removed := make(map[int]bool)
	for _, idx := range buckets {
		if len(idx) != 2 {
			continue
		}

		first, second := &out[idx[0]], &out[idx[1]]
		if first.TalkTimeMs == 0 || second.TalkTimeMs == 0 {
			continue
		}

		diff := first.TalkTimeMs - second.TalkTimeMs
		if diff < 0 {
			diff = -diff
		}
		if diff > dedupeToleranceMs {
			continue
		}

		// The record with a real name survives; between two real or two
		// fallback names, the first-encountered record is kept.
		keep, dropIdx := first, idx[1]
		if lookup.IsFallbackName(first.AgentName) && !lookup.IsFallbackName(second.AgentName) {
			keep, dropIdx = second, idx[0]
		}
		drop := &out[dropIdx]

		keep.TalkTimeMs = maxInt64(keep.TalkTimeMs, drop.TalkTimeMs)
		keep.OutboundCalls = maxInt(keep.OutboundCalls, drop.OutboundCalls)
		keep.InboundCalls = maxInt(keep.InboundCalls, drop.InboundCalls)
		removed[dropIdx] = true
	}

	if len(removed) == 0 {
		return out
	}

	result := make([]types.AgentWindowStats, 0, len(out)-len(removed))
	for i, a := range out {
		if !removed[i] {
			result = append(result, a)
		}
	}
	return result
}

func roundToBucket(talkMs int64) int64 {
	return (talkMs + dedupeBucketMs/2) / dedupeBucketMs * dedupeBucketMs
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
