package postgres

import (
	"context"
	"fmt"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// BoostSnapshotStore implements storage.BoostSnapshotStore using PostgreSQL.
type BoostSnapshotStore struct {
	pool *Pool
}

// NewBoostSnapshotStore creates a new BoostSnapshotStore.
func NewBoostSnapshotStore(pool *Pool) *BoostSnapshotStore {
	return &BoostSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BoostSnapshotStore = (*BoostSnapshotStore)(nil)

// Upsert stores the snapshot, replacing any previous one for the position.
func (s *BoostSnapshotStore) Upsert(ctx context.Context, snap *domain.BoostSnapshot) error {
	query := `
		INSERT INTO boost_snapshots (
			position_id, collateral_balance, market_price, discounted_price,
			collateral_value, deposit_value, threshold_value, is_eligible, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (position_id) DO UPDATE SET
			collateral_balance = EXCLUDED.collateral_balance,
			market_price = EXCLUDED.market_price,
			discounted_price = EXCLUDED.discounted_price,
			collateral_value = EXCLUDED.collateral_value,
			deposit_value = EXCLUDED.deposit_value,
			threshold_value = EXCLUDED.threshold_value,
			is_eligible = EXCLUDED.is_eligible,
			checked_at = EXCLUDED.checked_at
	`

	_, err := s.pool.Exec(ctx, query,
		snap.PositionID,
		snap.CollateralBalance,
		snap.MarketPrice,
		snap.DiscountedPrice,
		snap.CollateralValue,
		snap.DepositValue,
		snap.ThresholdValue,
		snap.IsEligible,
		snap.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert boost snapshot: %w", err)
	}
	return nil
}

// GetByPosition retrieves the latest snapshot. Returns ErrNotFound if none.
func (s *BoostSnapshotStore) GetByPosition(ctx context.Context, positionID string) (*domain.BoostSnapshot, error) {
	query := `
		SELECT position_id, collateral_balance, market_price, discounted_price,
		       collateral_value, deposit_value, threshold_value, is_eligible, checked_at
		FROM boost_snapshots
		WHERE position_id = $1
	`

	var snap domain.BoostSnapshot
	err := s.pool.QueryRow(ctx, query, positionID).Scan(
		&snap.PositionID,
		&snap.CollateralBalance,
		&snap.MarketPrice,
		&snap.DiscountedPrice,
		&snap.CollateralValue,
		&snap.DepositValue,
		&snap.ThresholdValue,
		&snap.IsEligible,
		&snap.CheckedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get boost snapshot: %w", err)
	}
	return &snap, nil
}
