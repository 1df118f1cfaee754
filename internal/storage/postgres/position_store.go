package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

const positionColumns = `
	position_id, vault_id, owner_address, principal_value, payout_frequency,
	pending_secondary_reward, boost_active, last_accrued_at, created_at
`

// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(ctx context.Context, p *domain.Position) error {
	query := `
		INSERT INTO positions (
			position_id, vault_id, owner_address, principal_value, payout_frequency,
			pending_secondary_reward, boost_active, last_accrued_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.PositionID,
		p.VaultID,
		p.OwnerAddress,
		p.PrincipalValue,
		string(p.Frequency),
		p.PendingSecondaryReward,
		p.BoostActive,
		p.LastAccruedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(ctx context.Context, positionID string) (*domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE position_id = $1`

	row := s.pool.QueryRow(ctx, query, positionID)
	p, err := scanPosition(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get position by id: %w", err)
	}
	return p, nil
}

// ListByOwner retrieves all positions for an owner, newest first.
func (s *PositionStore) ListByOwner(ctx context.Context, owner string) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE owner_address = $1
		ORDER BY created_at DESC, position_id DESC
	`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list positions by owner: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// ListActive retrieves all positions in active vaults, ordered by position_id ASC.
func (s *PositionStore) ListActive(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT p.position_id, p.vault_id, p.owner_address, p.principal_value,
		       p.payout_frequency, p.pending_secondary_reward, p.boost_active,
		       p.last_accrued_at, p.created_at
		FROM positions p
		JOIN vaults v ON v.vault_id = p.vault_id
		WHERE v.is_active = TRUE
		ORDER BY p.position_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// AddPendingReward atomically increments pending_secondary_reward and
// returns the new total. Returns ErrNotFound if the position does not exist.
func (s *PositionStore) AddPendingReward(ctx context.Context, positionID string, delta float64) (float64, error) {
	query := `
		UPDATE positions
		SET pending_secondary_reward = pending_secondary_reward + $2
		WHERE position_id = $1
		RETURNING pending_secondary_reward
	`

	var newTotal float64
	err := s.pool.QueryRow(ctx, query, positionID, delta).Scan(&newTotal)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("add pending reward: %w", err)
	}
	return newTotal, nil
}

// DeductPendingReward atomically decrements pending_secondary_reward only if
// the current balance covers amount. The balance guard in the WHERE clause
// makes the check and the decrement a single statement; zero rows affected
// means the guard failed.
func (s *PositionStore) DeductPendingReward(ctx context.Context, positionID string, amount float64) error {
	if amount <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE positions
		SET pending_secondary_reward = pending_secondary_reward - $2
		WHERE position_id = $1 AND pending_secondary_reward >= $2
	`

	tag, err := s.pool.Exec(ctx, query, positionID, amount)
	if err != nil {
		return fmt.Errorf("deduct pending reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing position from an insufficient balance.
		if _, err := s.GetByID(ctx, positionID); err != nil {
			return err
		}
		return storage.ErrInsufficientBalance
	}
	return nil
}

// SetBoostActive records the latest boost evaluation outcome.
func (s *PositionStore) SetBoostActive(ctx context.Context, positionID string, active bool) error {
	query := `UPDATE positions SET boost_active = $2 WHERE position_id = $1`

	tag, err := s.pool.Exec(ctx, query, positionID, active)
	if err != nil {
		return fmt.Errorf("set boost active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetLastAccruedAt records the timestamp of the last accrual.
func (s *PositionStore) SetLastAccruedAt(ctx context.Context, positionID string, ts int64) error {
	query := `UPDATE positions SET last_accrued_at = $2 WHERE position_id = $1`

	tag, err := s.pool.Exec(ctx, query, positionID, ts)
	if err != nil {
		return fmt.Errorf("set last accrued at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanPosition scans a single row into a Position.
func scanPosition(row pgx.Row) (*domain.Position, error) {
	var p domain.Position
	var freq string

	err := row.Scan(
		&p.PositionID,
		&p.VaultID,
		&p.OwnerAddress,
		&p.PrincipalValue,
		&freq,
		&p.PendingSecondaryReward,
		&p.BoostActive,
		&p.LastAccruedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Frequency = domain.PayoutFrequency(freq)
	return &p, nil
}

// scanPositions scans multiple rows into a slice of Position.
func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position

	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}
