package storage

import "github.com/callsight/backend/internal/types"

// Store archives aggregated window snapshots. The identity cache itself
// is never persisted; only presentation-ready aggregates are.
type Store interface {
	SaveWindowSnapshot(snap types.WindowSnapshot) error
	GetWindowSnapshots(window string) ([]types.WindowSnapshot, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveWindowSnapshot(_ types.WindowSnapshot) error { return nil }
func (s *NoopStore) GetWindowSnapshots(_ string) ([]types.WindowSnapshot, error) {
	return nil, nil
}
func (s *NoopStore) TruncateAll() error { return nil }
