package postgres

import (
	"context"
	"fmt"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PriceQuoteStore implements storage.PriceQuoteStore using PostgreSQL.
// It is the durable fallback behind the in-memory quote cache.
type PriceQuoteStore struct {
	pool *Pool
}

// NewPriceQuoteStore creates a new PriceQuoteStore.
func NewPriceQuoteStore(pool *Pool) *PriceQuoteStore {
	return &PriceQuoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceQuoteStore = (*PriceQuoteStore)(nil)

// Upsert stores the quote, replacing any previous one for the token.
func (s *PriceQuoteStore) Upsert(ctx context.Context, q *domain.PriceQuote) error {
	query := `
		INSERT INTO price_quotes (token, market_price, discounted_price, source, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET
			market_price = EXCLUDED.market_price,
			discounted_price = EXCLUDED.discounted_price,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := s.pool.Exec(ctx, query,
		q.Token,
		q.MarketPrice,
		q.DiscountedPrice,
		q.Source,
		q.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert price quote: %w", err)
	}
	return nil
}

// GetByToken retrieves the latest stored quote. Returns ErrNotFound if none.
func (s *PriceQuoteStore) GetByToken(ctx context.Context, token string) (*domain.PriceQuote, error) {
	query := `
		SELECT token, market_price, discounted_price, source, fetched_at
		FROM price_quotes
		WHERE token = $1
	`

	var q domain.PriceQuote
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&q.Token,
		&q.MarketPrice,
		&q.DiscountedPrice,
		&q.Source,
		&q.FetchedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price quote: %w", err)
	}
	return &q, nil
}
