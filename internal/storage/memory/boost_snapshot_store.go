package memory

import (
	"context"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// BoostSnapshotStore is an in-memory implementation of storage.BoostSnapshotStore.
type BoostSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BoostSnapshot // keyed by position_id
}

// NewBoostSnapshotStore creates a new in-memory boost snapshot store.
func NewBoostSnapshotStore() *BoostSnapshotStore {
	return &BoostSnapshotStore{
		data: make(map[string]*domain.BoostSnapshot),
	}
}

// Upsert stores the snapshot, replacing any previous one for the position.
func (s *BoostSnapshotStore) Upsert(_ context.Context, snap *domain.BoostSnapshot) error {
	if snap == nil || snap.PositionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *snap
	s.data[snap.PositionID] = &copy
	return nil
}

// GetByPosition retrieves the latest snapshot. Returns ErrNotFound if none.
func (s *BoostSnapshotStore) GetByPosition(_ context.Context, positionID string) (*domain.BoostSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.data[positionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *snap
	return &copy, nil
}

var _ storage.BoostSnapshotStore = (*BoostSnapshotStore)(nil)
