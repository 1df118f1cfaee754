package memory

import (
	"context"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PriceQuoteStore is an in-memory implementation of storage.PriceQuoteStore.
type PriceQuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceQuote // keyed by token
}

// NewPriceQuoteStore creates a new in-memory price quote store.
func NewPriceQuoteStore() *PriceQuoteStore {
	return &PriceQuoteStore{
		data: make(map[string]*domain.PriceQuote),
	}
}

// Upsert stores the quote, replacing any previous one for the token.
func (s *PriceQuoteStore) Upsert(_ context.Context, q *domain.PriceQuote) error {
	if q == nil || q.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *q
	s.data[q.Token] = &copy
	return nil
}

// GetByToken retrieves the latest stored quote. Returns ErrNotFound if none.
func (s *PriceQuoteStore) GetByToken(_ context.Context, token string) (*domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, exists := s.data[token]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *q
	return &copy, nil
}

var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)
