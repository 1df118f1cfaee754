package memory

import (
	"context"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// MiningConfigStore is an in-memory implementation of storage.MiningConfigStore.
type MiningConfigStore struct {
	mu     sync.RWMutex
	config *domain.MiningConfig // nil until first Save
}

// NewMiningConfigStore creates a new in-memory mining config store.
func NewMiningConfigStore() *MiningConfigStore {
	return &MiningConfigStore{}
}

// Load retrieves the config. Returns ErrNotFound if never initialized.
func (s *MiningConfigStore) Load(_ context.Context) (*domain.MiningConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, storage.ErrNotFound
	}

	copy := *s.config
	return &copy, nil
}

// Save upserts the singleton config, replacing any previous state.
func (s *MiningConfigStore) Save(_ context.Context, c *domain.MiningConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *c
	s.config = &copy
	return nil
}

// ReservePool atomically deducts up to amount from pool_remaining, flooring
// at zero. Returns the amount actually reserved and the remaining balance.
func (s *MiningConfigStore) ReservePool(_ context.Context, amount float64) (float64, float64, error) {
	if amount < 0 {
		return 0, 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return 0, 0, storage.ErrNotFound
	}

	reserved := amount
	if reserved > s.config.PoolRemaining {
		reserved = s.config.PoolRemaining
	}
	s.config.PoolRemaining -= reserved
	return reserved, s.config.PoolRemaining, nil
}

// ReleasePool atomically returns amount to pool_remaining, capped at
// pool_total. Returns the remaining balance after the release.
func (s *MiningConfigStore) ReleasePool(_ context.Context, amount float64) (float64, error) {
	if amount < 0 {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return 0, storage.ErrNotFound
	}

	s.config.PoolRemaining += amount
	if s.config.PoolRemaining > s.config.PoolTotal {
		s.config.PoolRemaining = s.config.PoolTotal
	}
	return s.config.PoolRemaining, nil
}

// AddDistributed atomically increments pool_distributed.
func (s *MiningConfigStore) AddDistributed(_ context.Context, amount float64) error {
	if amount < 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return storage.ErrNotFound
	}

	s.config.PoolDistributed += amount
	return nil
}

var _ storage.MiningConfigStore = (*MiningConfigStore)(nil)
