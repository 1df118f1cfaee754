package memory

import (
	"context"
	"sort"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.Position // keyed by position_id
	vaults *VaultStore                 // optional, for ListActive filtering
}

// NewPositionStore creates a new in-memory position store. The vault store
// may be nil, in which case ListActive returns all positions.
func NewPositionStore(vaults *VaultStore) *PositionStore {
	return &PositionStore{
		data:   make(map[string]*domain.Position),
		vaults: vaults,
	}
}

// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(_ context.Context, p *domain.Position) error {
	if p == nil || p.PositionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.PositionID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[p.PositionID] = &copy
	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(_ context.Context, positionID string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[positionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// ListByOwner retrieves all positions for an owner, newest first.
func (s *PositionStore) ListByOwner(_ context.Context, owner string) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.OwnerAddress != owner {
			continue
		}
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].PositionID > result[j].PositionID
	})

	return result, nil
}

// ListActive retrieves all positions in active vaults, ordered by position_id ASC.
func (s *PositionStore) ListActive(ctx context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if s.vaults != nil {
			v, err := s.vaults.GetByID(ctx, p.VaultID)
			if err != nil || !v.IsActive {
				continue
			}
		}
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PositionID < result[j].PositionID
	})

	return result, nil
}

// AddPendingReward atomically increments pending_secondary_reward and
// returns the new total. Returns ErrNotFound if the position does not exist.
func (s *PositionStore) AddPendingReward(_ context.Context, positionID string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists {
		return 0, storage.ErrNotFound
	}

	p.PendingSecondaryReward += delta
	return p.PendingSecondaryReward, nil
}

// DeductPendingReward atomically decrements pending_secondary_reward only if
// the current balance covers amount. Returns ErrInsufficientBalance when it
// does not, leaving the position untouched.
func (s *PositionStore) DeductPendingReward(_ context.Context, positionID string, amount float64) error {
	if amount <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists {
		return storage.ErrNotFound
	}

	if p.PendingSecondaryReward < amount {
		return storage.ErrInsufficientBalance
	}

	p.PendingSecondaryReward -= amount
	return nil
}

// SetBoostActive records the latest boost evaluation outcome.
func (s *PositionStore) SetBoostActive(_ context.Context, positionID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists {
		return storage.ErrNotFound
	}

	p.BoostActive = active
	return nil
}

// SetLastAccruedAt records the timestamp of the last accrual.
func (s *PositionStore) SetLastAccruedAt(_ context.Context, positionID string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists {
		return storage.ErrNotFound
	}

	p.LastAccruedAt = ts
	return nil
}

var _ storage.PositionStore = (*PositionStore)(nil)
