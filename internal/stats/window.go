package stats

import (
	"fmt"
	"time"

	"github.com/callsight/backend/internal/types"
)

// WindowKind names one of the sliding time-window presets.
type WindowKind string

const (
	WindowDay   WindowKind = "day"
	WindowWeek  WindowKind = "week"
	WindowMonth WindowKind = "month"
)

// Window is a time range plus the kind that decides summary precedence
// during aggregation. Summaries are month-scoped, so only the month
// window treats them as authoritative for talk time.
type Window struct {
	Kind  WindowKind
	Range types.DateRange
}

// Today returns the day window containing now.
func Today(now time.Time) Window {
	return Window{Kind: WindowDay, Range: types.DayOf(now)}
}

// ThisWeek returns the Monday-to-now window.
func ThisWeek(now time.Time) Window {
	return Window{Kind: WindowWeek, Range: types.WeekToDate(now)}
}

// ThisMonth returns the 1st-to-now window.
func ThisMonth(now time.Time) Window {
	return Window{Kind: WindowMonth, Range: types.MonthToDate(now)}
}

// ParseWindowKind validates a window name from the API surface.
func ParseWindowKind(s string) (WindowKind, error) {
	switch WindowKind(s) {
	case WindowDay, WindowWeek, WindowMonth:
		return WindowKind(s), nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// For returns the preset window of the given kind anchored at now.
func For(kind WindowKind, now time.Time) Window {
	switch kind {
	case WindowWeek:
		return ThisWeek(now)
	case WindowMonth:
		return ThisMonth(now)
	default:
		return Today(now)
	}
}
