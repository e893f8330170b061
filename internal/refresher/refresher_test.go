package refresher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/callsight/backend/internal/cloudcall"
	"github.com/callsight/backend/internal/lookup"
	"github.com/callsight/backend/internal/storage"
	"github.com/callsight/backend/internal/types"
	"github.com/rs/zerolog"
)

type fakeFetcher struct {
	mu          sync.Mutex
	activities  []types.ActivityRecord
	summaries   []types.SummaryRecord
	activityErr error
}

func (f *fakeFetcher) FetchActivities(_ context.Context, _ types.DateRange, maxPages int) ([]types.ActivityRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activityErr != nil {
		return nil, false, f.activityErr
	}
	if maxPages == cloudcall.DayPageCeiling {
		return nil, false, nil
	}
	return f.activities, false, nil
}

func (f *fakeFetcher) FetchSummaries(_ context.Context, _ types.DateRange) ([]types.SummaryRecord, error) {
	return f.summaries, nil
}

// fakeBroadcaster records pushed messages.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *fakeBroadcaster) Broadcast(message []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
}

func (b *fakeBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func (b *fakeBroadcaster) pushed() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messages
}

// recordingStore captures archived snapshots for inspection.
type recordingStore struct {
	mu    sync.Mutex
	saved []types.WindowSnapshot
}

func (s *recordingStore) SaveWindowSnapshot(snap types.WindowSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snap)
	return nil
}

func (s *recordingStore) GetWindowSnapshots(string) ([]types.WindowSnapshot, error) { return nil, nil }
func (s *recordingStore) TruncateAll() error                                        { return nil }

var _ storage.Store = (*recordingStore)(nil)

func (s *recordingStore) windows() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.saved))
	for _, snap := range s.saved {
		out = append(out, snap.Window)
	}
	return out
}

func newTestRefresher(interval time.Duration, fetcher *fakeFetcher) (*Refresher, *fakeBroadcaster, *recordingStore) {
	logger := zerolog.New(&bytes.Buffer{})
	cache := lookup.NewCache(fetcher, logger, lookup.Options{})
	hub := &fakeBroadcaster{}
	store := &recordingStore{}
	return New(cache, hub, store, interval, logger), hub, store
}

func activeFetcher() *fakeFetcher {
	return &fakeFetcher{
		activities: []types.ActivityRecord{
			{
				AccountNumber:   "163108",
				AccountName:     "J. Rivera",
				CallDirectionID: types.DirectionInbound,
				CallOutcomeID:   types.OutcomeConnected,
				TalkTime:        60000,
				OccurredAt:      time.Now(),
			},
		},
	}
}

func TestNew(t *testing.T) {
	r, hub, _ := newTestRefresher(time.Second, activeFetcher())

	if r == nil {
		t.Fatal("expected refresher to be created")
	}
	if r.hub != Broadcaster(hub) {
		t.Error("refresher hub not set correctly")
	}
	if r.interval != time.Second {
		t.Errorf("expected interval 1s, got %v", r.interval)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	r, _, _ := newTestRefresher(50*time.Millisecond, activeFetcher())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan bool)
	go func() {
		r.Start(ctx)
		done <- true
	}()

	<-ctx.Done()

	select {
	case <-done:
		// Refresher stopped as expected
	case <-time.After(time.Second):
		t.Error("refresher did not stop after context cancel")
	}
}

func TestRefreshArchivesAllWindows(t *testing.T) {
	r, _, store := newTestRefresher(time.Hour, activeFetcher())

	r.refresh(context.Background())

	windows := store.windows()
	if len(windows) != 3 {
		t.Fatalf("expected 3 archived snapshots, got %d", len(windows))
	}
	seen := map[string]bool{}
	for _, w := range windows {
		seen[w] = true
	}
	for _, w := range []string{"day", "week", "month"} {
		if !seen[w] {
			t.Errorf("window %q was not archived", w)
		}
	}
}

func TestRefreshBroadcastsDayWindowOnly(t *testing.T) {
	r, hub, _ := newTestRefresher(time.Hour, activeFetcher())

	r.refresh(context.Background())

	pushed := hub.pushed()
	if len(pushed) != 1 {
		t.Fatalf("expected exactly one push, got %d", len(pushed))
	}

	var msg StatsMessage
	if err := json.Unmarshal(pushed[0], &msg); err != nil {
		t.Fatalf("failed to parse broadcast: %v", err)
	}
	if msg.Type != "stats" {
		t.Errorf("message type = %q", msg.Type)
	}
	if msg.Window != "day" {
		t.Errorf("message window = %q", msg.Window)
	}
	if msg.BuiltAt == "" {
		t.Error("message missing build timestamp")
	}
	if len(msg.Agents) != 1 {
		t.Fatalf("expected 1 agent in push, got %d", len(msg.Agents))
	}
	if msg.Agents[0].AgentName != "J. Rivera" {
		t.Errorf("agent name = %q", msg.Agents[0].AgentName)
	}
}

func TestRefreshFailureSkipsPushAndArchive(t *testing.T) {
	fetcher := &fakeFetcher{activityErr: errors.New("upstream down")}
	r, hub, store := newTestRefresher(time.Hour, fetcher)

	r.refresh(context.Background())

	if len(hub.pushed()) != 0 {
		t.Error("failed refresh must not push")
	}
	if len(store.windows()) != 0 {
		t.Error("failed refresh must not archive")
	}
}
