package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// ClaimStore is an in-memory implementation of storage.ClaimStore.
type ClaimStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ClaimRecord // keyed by claim_id
}

// NewClaimStore creates a new in-memory claim store.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{
		data: make(map[string]*domain.ClaimRecord),
	}
}

// Append adds a new pending claim. Returns ErrDuplicateKey if claim_id exists.
func (s *ClaimStore) Append(_ context.Context, c *domain.ClaimRecord) error {
	if c == nil || c.ClaimID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ClaimID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *c
	s.data[c.ClaimID] = &copy
	return nil
}

// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
func (s *ClaimStore) GetByID(_ context.Context, claimID string) (*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[claimID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *c
	return &copy, nil
}

// ListByClaimant retrieves all claims for a claimant address, newest first.
func (s *ClaimStore) ListByClaimant(_ context.Context, claimant string) ([]*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClaimRecord
	for _, c := range s.data {
		if c.ClaimantAddress != claimant {
			continue
		}
		copy := *c
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ClaimID > result[j].ClaimID
	})

	return result, nil
}

// Confirm transitions a pending claim to confirmed. Returns ErrNotFound when
// the claim does not exist or is already confirmed, so duplicate settlement
// events surface instead of silently succeeding.
func (s *ClaimStore) Confirm(_ context.Context, claimID, externalRef string) (*domain.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[claimID]
	if !exists || c.Status != domain.ClaimStatusPending {
		return nil, storage.ErrNotFound
	}

	now := time.Now().UnixMilli()
	c.Status = domain.ClaimStatusConfirmed
	c.ExternalRef = &externalRef
	c.ConfirmedAt = &now

	copy := *c
	return &copy, nil
}

var _ storage.ClaimStore = (*ClaimStore)(nil)
