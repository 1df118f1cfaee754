package clickhouse

import (
	"context"
	"fmt"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// RewardEventStore implements storage.RewardEventStore using ClickHouse.
// Reward events are append-only; MergeTree never updates rows.
type RewardEventStore struct {
	conn *Conn
}

// NewRewardEventStore creates a new RewardEventStore.
func NewRewardEventStore(conn *Conn) *RewardEventStore {
	return &RewardEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RewardEventStore = (*RewardEventStore)(nil)

// Append adds a reward event.
func (s *RewardEventStore) Append(ctx context.Context, e *domain.RewardEvent) error {
	if e == nil || e.PositionID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO reward_events (
			position_id, vault_id, amount_tokens, amount_value,
			elapsed_days, pool_remaining_after, occurred_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.PositionID, e.VaultID, e.AmountTokens, e.AmountValue,
		e.ElapsedDays, e.PoolRemainingAfter, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ListByPosition retrieves all events for a position, ordered by occurred_at ASC.
func (s *RewardEventStore) ListByPosition(ctx context.Context, positionID string) ([]*domain.RewardEvent, error) {
	query := `
		SELECT position_id, vault_id, amount_tokens, amount_value,
		       elapsed_days, pool_remaining_after, occurred_at
		FROM reward_events
		WHERE position_id = ?
		ORDER BY occurred_at ASC
	`

	rows, err := s.conn.Query(ctx, query, positionID)
	if err != nil {
		return nil, fmt.Errorf("list reward events: %w", err)
	}
	defer rows.Close()

	var events []*domain.RewardEvent
	for rows.Next() {
		var e domain.RewardEvent
		err := rows.Scan(
			&e.PositionID, &e.VaultID, &e.AmountTokens, &e.AmountValue,
			&e.ElapsedDays, &e.PoolRemainingAfter, &e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reward event row: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward event rows: %w", err)
	}

	return events, nil
}

// TotalsByVault aggregates event counts and amounts per vault, ordered by
// vault_id ASC.
func (s *RewardEventStore) TotalsByVault(ctx context.Context) ([]*storage.VaultTotals, error) {
	query := `
		SELECT vault_id,
		       toInt64(count()) AS event_count,
		       sum(amount_tokens) AS total_tokens,
		       sum(amount_value) AS total_value
		FROM reward_events
		GROUP BY vault_id
		ORDER BY vault_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("totals by vault: %w", err)
	}
	defer rows.Close()

	var totals []*storage.VaultTotals
	for rows.Next() {
		var t storage.VaultTotals
		err := rows.Scan(&t.VaultID, &t.EventCount, &t.TotalTokens, &t.TotalValue)
		if err != nil {
			return nil, fmt.Errorf("scan vault totals row: %w", err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault totals rows: %w", err)
	}

	return totals, nil
}
