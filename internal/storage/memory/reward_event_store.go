package memory

import (
	"context"
	"sort"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// RewardEventStore is an in-memory implementation of storage.RewardEventStore.
type RewardEventStore struct {
	mu     sync.RWMutex
	events []*domain.RewardEvent
}

// NewRewardEventStore creates a new in-memory reward event store.
func NewRewardEventStore() *RewardEventStore {
	return &RewardEventStore{}
}

// Append adds a reward event.
func (s *RewardEventStore) Append(_ context.Context, e *domain.RewardEvent) error {
	if e == nil || e.PositionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.events = append(s.events, &copy)
	return nil
}

// ListByPosition retrieves all events for a position, ordered by occurred_at ASC.
func (s *RewardEventStore) ListByPosition(_ context.Context, positionID string) ([]*domain.RewardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RewardEvent
	for _, e := range s.events {
		if e.PositionID != positionID {
			continue
		}
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt < result[j].OccurredAt
	})

	return result, nil
}

// TotalsByVault aggregates event counts and amounts per vault, ordered by
// vault_id ASC.
func (s *RewardEventStore) TotalsByVault(_ context.Context) ([]*storage.VaultTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byVault := make(map[string]*storage.VaultTotals)
	for _, e := range s.events {
		t, exists := byVault[e.VaultID]
		if !exists {
			t = &storage.VaultTotals{VaultID: e.VaultID}
			byVault[e.VaultID] = t
		}
		t.EventCount++
		t.TotalTokens += e.AmountTokens
		t.TotalValue += e.AmountValue
	}

	result := make([]*storage.VaultTotals, 0, len(byVault))
	for _, t := range byVault {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].VaultID < result[j].VaultID
	})

	return result, nil
}

var _ storage.RewardEventStore = (*RewardEventStore)(nil)
