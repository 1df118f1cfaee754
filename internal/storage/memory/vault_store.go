package memory

import (
	"context"
	"sort"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// VaultStore is an in-memory implementation of storage.VaultStore.
type VaultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Vault // keyed by vault_id
}

// NewVaultStore creates a new in-memory vault store.
func NewVaultStore() *VaultStore {
	return &VaultStore{
		data: make(map[string]*domain.Vault),
	}
}

// Insert adds a new vault. Returns ErrDuplicateKey if vault_id exists.
func (s *VaultStore) Insert(_ context.Context, v *domain.Vault) error {
	if v == nil || v.VaultID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[v.VaultID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *v
	s.data[v.VaultID] = &copy
	return nil
}

// GetByID retrieves a vault by its ID. Returns ErrNotFound if not exists.
func (s *VaultStore) GetByID(_ context.Context, vaultID string) (*domain.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, exists := s.data[vaultID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *v
	return &copy, nil
}

// ListActive retrieves all active vaults, ordered by vault_id ASC.
func (s *VaultStore) ListActive(_ context.Context) ([]*domain.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Vault
	for _, v := range s.data {
		if !v.IsActive {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].VaultID < result[j].VaultID
	})

	return result, nil
}

// AddMiningAllocation atomically increments the vault's cumulative mining
// allocation. Returns ErrNotFound if the vault does not exist.
func (s *VaultStore) AddMiningAllocation(_ context.Context, vaultID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.data[vaultID]
	if !exists {
		return storage.ErrNotFound
	}

	v.MiningAllocation += amount
	return nil
}

var _ storage.VaultStore = (*VaultStore)(nil)
