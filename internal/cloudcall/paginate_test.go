package cloudcall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/callsight/backend/internal/types"
)

// fakeSource serves a fixed number of records across sequential pages.
type fakeSource struct {
	total    int
	failPage int
	pages    []int // pages actually requested
}

func (f *fakeSource) GetAgentActivity(_ context.Context, q types.ActivityQuery) (*types.ActivityEnvelope, error) {
	f.pages = append(f.pages, q.Page)
	if f.failPage > 0 && q.Page == f.failPage {
		return nil, errors.New("page fetch failed")
	}

	start := (q.Page - 1) * q.Take
	remaining := f.total - start
	if remaining < 0 {
		remaining = 0
	}
	n := q.Take
	if remaining < n {
		n = remaining
	}

	data := make([]types.ActivityRecord, n)
	for i := range data {
		data[i] = types.ActivityRecord{ID: int64(start + i + 1)}
	}
	return &types.ActivityEnvelope{Page: q.Page, TotalCount: f.total, Data: data}, nil
}

func testDateRange() types.DateRange {
	return types.DateRange{
		From: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC),
	}
}

func TestFetchActivityRangeSinglePage(t *testing.T) {
	src := &fakeSource{total: 42}

	records, truncated, err := FetchActivityRange(context.Background(), src, testDateRange(), MonthPageCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Error("short result should not be truncated")
	}
	if len(records) != 42 {
		t.Errorf("expected 42 records, got %d", len(records))
	}
	if len(src.pages) != 1 || src.pages[0] != 1 {
		t.Errorf("expected a single request for page 1, got %v", src.pages)
	}
}

func TestFetchActivityRangeMultiPage(t *testing.T) {
	// 2 full pages plus a short third one
	src := &fakeSource{total: 2*PageSize + 17}

	records, truncated, err := FetchActivityRange(context.Background(), src, testDateRange(), MonthPageCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Error("unexpected truncation")
	}
	if len(records) != 2*PageSize+17 {
		t.Errorf("expected %d records, got %d", 2*PageSize+17, len(records))
	}
	if len(src.pages) != 3 {
		t.Errorf("expected 3 page requests, got %v", src.pages)
	}
}

func TestFetchActivityRangeExactPageBoundary(t *testing.T) {
	// Exactly one full page; a second request returning zero records ends
	// the loop.
	src := &fakeSource{total: PageSize}

	records, truncated, err := FetchActivityRange(context.Background(), src, testDateRange(), MonthPageCeiling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Error("unexpected truncation")
	}
	if len(records) != PageSize {
		t.Errorf("expected %d records, got %d", PageSize, len(records))
	}
	if len(src.pages) != 2 {
		t.Errorf("expected 2 page requests, got %v", src.pages)
	}
}

func TestFetchActivityRangeTruncation(t *testing.T) {
	// More data than DayPageCeiling full pages can hold.
	src := &fakeSource{total: (DayPageCeiling + 3) * PageSize}

	records, truncated, err := FetchActivityRange(context.Background(), src, testDateRange(), DayPageCeiling)
	if err != nil {
		t.Fatalf("truncation must not be an error: %v", err)
	}
	if !truncated {
		t.Error("expected truncated flag")
	}
	if len(records) != DayPageCeiling*PageSize {
		t.Errorf("expected %d records, got %d", DayPageCeiling*PageSize, len(records))
	}
	if len(src.pages) != DayPageCeiling {
		t.Errorf("expected %d page requests, got %v", DayPageCeiling, src.pages)
	}
}

func TestFetchActivityRangeError(t *testing.T) {
	src := &fakeSource{total: 3 * PageSize, failPage: 2}

	records, truncated, err := FetchActivityRange(context.Background(), src, testDateRange(), MonthPageCeiling)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if records != nil {
		t.Errorf("failed fetch must not return partial data, got %d records", len(records))
	}
	if truncated {
		t.Error("failed fetch must not report truncation")
	}
}
