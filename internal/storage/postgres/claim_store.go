package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// ClaimStore implements storage.ClaimStore using PostgreSQL.
type ClaimStore struct {
	pool *Pool
}

// NewClaimStore creates a new ClaimStore.
func NewClaimStore(pool *Pool) *ClaimStore {
	return &ClaimStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClaimStore = (*ClaimStore)(nil)

const claimColumns = `
	claim_id, position_id, claimant_address, amount, price_at_claim,
	status, external_ref, created_at, confirmed_at
`

// Append adds a new pending claim. Returns ErrDuplicateKey if claim_id exists.
func (s *ClaimStore) Append(ctx context.Context, c *domain.ClaimRecord) error {
	query := `
		INSERT INTO claims (
			claim_id, position_id, claimant_address, amount, price_at_claim,
			status, external_ref, created_at, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ClaimID,
		c.PositionID,
		c.ClaimantAddress,
		c.Amount,
		c.PriceAtClaim,
		c.Status,
		c.ExternalRef,
		c.CreatedAt,
		c.ConfirmedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
func (s *ClaimStore) GetByID(ctx context.Context, claimID string) (*domain.ClaimRecord, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1`

	row := s.pool.QueryRow(ctx, query, claimID)
	c, err := scanClaim(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get claim by id: %w", err)
	}
	return c, nil
}

// ListByClaimant retrieves all claims for a claimant address, newest first.
func (s *ClaimStore) ListByClaimant(ctx context.Context, claimant string) ([]*domain.ClaimRecord, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE claimant_address = $1
		ORDER BY created_at DESC, claim_id DESC
	`

	rows, err := s.pool.Query(ctx, query, claimant)
	if err != nil {
		return nil, fmt.Errorf("list claims by claimant: %w", err)
	}
	defer rows.Close()

	return scanClaims(rows)
}

// Confirm transitions a pending claim to confirmed, recording the external
// settlement reference. The status guard in the WHERE clause makes the
// transition single-shot; a second confirmation matches zero rows and
// surfaces as ErrNotFound.
func (s *ClaimStore) Confirm(ctx context.Context, claimID, externalRef string) (*domain.ClaimRecord, error) {
	query := `
		UPDATE claims
		SET status = $2, external_ref = $3, confirmed_at = $4
		WHERE claim_id = $1 AND status = $5
		RETURNING ` + claimColumns

	row := s.pool.QueryRow(ctx, query,
		claimID,
		domain.ClaimStatusConfirmed,
		externalRef,
		time.Now().UnixMilli(),
		domain.ClaimStatusPending,
	)
	c, err := scanClaim(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("confirm claim: %w", err)
	}
	return c, nil
}

// scanClaim scans a single row into a ClaimRecord.
func scanClaim(row pgx.Row) (*domain.ClaimRecord, error) {
	var c domain.ClaimRecord
	err := row.Scan(
		&c.ClaimID,
		&c.PositionID,
		&c.ClaimantAddress,
		&c.Amount,
		&c.PriceAtClaim,
		&c.Status,
		&c.ExternalRef,
		&c.CreatedAt,
		&c.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// scanClaims scans multiple rows into a slice of ClaimRecord.
func scanClaims(rows pgx.Rows) ([]*domain.ClaimRecord, error) {
	var claims []*domain.ClaimRecord

	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		claims = append(claims, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim rows: %w", err)
	}

	return claims, nil
}
