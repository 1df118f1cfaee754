package clickhouse

import (
	"context"
	"fmt"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// Every refresher observation lands here, one row per fetch.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Append adds a price observation.
func (s *PriceHistoryStore) Append(ctx context.Context, q *domain.PriceQuote) error {
	if q == nil || q.Token == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (token, market_price, discounted_price, source, fetched_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(q.Token, q.MarketPrice, q.DiscountedPrice, q.Source, q.FetchedAt)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ListByToken retrieves observations for a token within [start, end]
// (inclusive, ms), ordered by fetched_at ASC.
func (s *PriceHistoryStore) ListByToken(ctx context.Context, token string, start, end int64) ([]*domain.PriceQuote, error) {
	query := `
		SELECT token, market_price, discounted_price, source, fetched_at
		FROM price_history
		WHERE token = ? AND fetched_at >= ? AND fetched_at <= ?
		ORDER BY fetched_at ASC
	`

	rows, err := s.conn.Query(ctx, query, token, start, end)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.PriceQuote
	for rows.Next() {
		var q domain.PriceQuote
		err := rows.Scan(&q.Token, &q.MarketPrice, &q.DiscountedPrice, &q.Source, &q.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}
		quotes = append(quotes, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return quotes, nil
}
