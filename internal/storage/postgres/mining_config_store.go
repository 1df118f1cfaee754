package postgres

import (
	"context"
	"fmt"
	"time"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// MiningConfigStore implements storage.MiningConfigStore using PostgreSQL.
// The config is a single row with id=1.
type MiningConfigStore struct {
	pool *Pool
}

// NewMiningConfigStore creates a new MiningConfigStore.
func NewMiningConfigStore(pool *Pool) *MiningConfigStore {
	return &MiningConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MiningConfigStore = (*MiningConfigStore)(nil)

// Load retrieves the config. Returns ErrNotFound if never initialized.
func (s *MiningConfigStore) Load(ctx context.Context) (*domain.MiningConfig, error) {
	query := `
		SELECT internal_price, total_supply, pool_total, pool_remaining,
		       pool_distributed, token_mint, updated_at
		FROM mining_config
		WHERE id = 1
	`

	var c domain.MiningConfig
	err := s.pool.QueryRow(ctx, query).Scan(
		&c.InternalPrice,
		&c.TotalSupply,
		&c.PoolTotal,
		&c.PoolRemaining,
		&c.PoolDistributed,
		&c.TokenMint,
		&c.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load mining config: %w", err)
	}
	return &c, nil
}

// Save upserts the singleton config, replacing any previous state.
func (s *MiningConfigStore) Save(ctx context.Context, c *domain.MiningConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO mining_config (
			id, internal_price, total_supply, pool_total, pool_remaining,
			pool_distributed, token_mint, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			internal_price = EXCLUDED.internal_price,
			total_supply = EXCLUDED.total_supply,
			pool_total = EXCLUDED.pool_total,
			pool_remaining = EXCLUDED.pool_remaining,
			pool_distributed = EXCLUDED.pool_distributed,
			token_mint = EXCLUDED.token_mint,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		c.InternalPrice,
		c.TotalSupply,
		c.PoolTotal,
		c.PoolRemaining,
		c.PoolDistributed,
		c.TokenMint,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save mining config: %w", err)
	}
	return nil
}

// ReservePool atomically deducts up to amount from pool_remaining, flooring
// at zero. The CTE takes a row lock and captures the pre-update balance;
// RETURNING sees post-update values, so the reserved amount is the delta.
func (s *MiningConfigStore) ReservePool(ctx context.Context, amount float64) (float64, float64, error) {
	if amount < 0 {
		return 0, 0, storage.ErrInvalidInput
	}

	query := `
		WITH prev AS (
			SELECT pool_remaining AS before
			FROM mining_config
			WHERE id = 1
			FOR UPDATE
		)
		UPDATE mining_config c
		SET pool_remaining = c.pool_remaining - LEAST($1::DOUBLE PRECISION, c.pool_remaining),
		    updated_at = $2
		FROM prev
		WHERE c.id = 1
		RETURNING prev.before - c.pool_remaining, c.pool_remaining
	`

	var reserved, remaining float64
	err := s.pool.QueryRow(ctx, query, amount, time.Now().UnixMilli()).Scan(&reserved, &remaining)
	if err != nil {
		if isNotFoundError(err) {
			return 0, 0, storage.ErrNotFound
		}
		return 0, 0, fmt.Errorf("reserve pool: %w", err)
	}
	return reserved, remaining, nil
}

// ReleasePool atomically returns amount to pool_remaining, capped at
// pool_total. Returns the remaining balance after the release.
func (s *MiningConfigStore) ReleasePool(ctx context.Context, amount float64) (float64, error) {
	if amount < 0 {
		return 0, storage.ErrInvalidInput
	}

	query := `
		UPDATE mining_config
		SET pool_remaining = LEAST(pool_remaining + $1::DOUBLE PRECISION, pool_total),
		    updated_at = $2
		WHERE id = 1
		RETURNING pool_remaining
	`

	var remaining float64
	err := s.pool.QueryRow(ctx, query, amount, time.Now().UnixMilli()).Scan(&remaining)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("release pool: %w", err)
	}
	return remaining, nil
}

// AddDistributed atomically increments pool_distributed.
func (s *MiningConfigStore) AddDistributed(ctx context.Context, amount float64) error {
	if amount < 0 {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE mining_config
		SET pool_distributed = pool_distributed + $1,
		    updated_at = $2
		WHERE id = 1
	`

	tag, err := s.pool.Exec(ctx, query, amount, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add distributed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
