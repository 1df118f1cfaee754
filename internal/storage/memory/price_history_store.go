package memory

import (
	"context"
	"sort"
	"sync"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu     sync.RWMutex
	quotes []*domain.PriceQuote
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{}
}

// Append adds a price observation.
func (s *PriceHistoryStore) Append(_ context.Context, q *domain.PriceQuote) error {
	if q == nil || q.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *q
	s.quotes = append(s.quotes, &copy)
	return nil
}

// ListByToken retrieves observations for a token within [start, end]
// (inclusive, ms), ordered by fetched_at ASC.
func (s *PriceHistoryStore) ListByToken(_ context.Context, token string, start, end int64) ([]*domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceQuote
	for _, q := range s.quotes {
		if q.Token != token || q.FetchedAt < start || q.FetchedAt > end {
			continue
		}
		copy := *q
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FetchedAt < result[j].FetchedAt
	})

	return result, nil
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)
