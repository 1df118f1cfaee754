package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// VaultStore implements storage.VaultStore using PostgreSQL.
type VaultStore struct {
	pool *Pool
}

// NewVaultStore creates a new VaultStore.
func NewVaultStore(pool *Pool) *VaultStore {
	return &VaultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.VaultStore = (*VaultStore)(nil)

// Insert adds a new vault. Returns ErrDuplicateKey if vault_id exists.
func (s *VaultStore) Insert(ctx context.Context, v *domain.Vault) error {
	query := `
		INSERT INTO vaults (
			vault_id, name, base_rate_bp, boost_max_bp, secondary_rate_bp,
			min_entry_value, duration_months, mining_allocation, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		v.VaultID,
		v.Name,
		v.BaseRateBP,
		v.BoostMaxBP,
		v.SecondaryRateBP,
		v.MinEntryValue,
		v.DurationMonths,
		v.MiningAllocation,
		v.IsActive,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert vault: %w", err)
	}
	return nil
}

// GetByID retrieves a vault by its ID. Returns ErrNotFound if not exists.
func (s *VaultStore) GetByID(ctx context.Context, vaultID string) (*domain.Vault, error) {
	query := `
		SELECT vault_id, name, base_rate_bp, boost_max_bp, secondary_rate_bp,
		       min_entry_value, duration_months, mining_allocation, is_active, created_at
		FROM vaults
		WHERE vault_id = $1
	`

	row := s.pool.QueryRow(ctx, query, vaultID)
	v, err := scanVault(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get vault by id: %w", err)
	}
	return v, nil
}

// ListActive retrieves all active vaults, ordered by vault_id ASC.
func (s *VaultStore) ListActive(ctx context.Context) ([]*domain.Vault, error) {
	query := `
		SELECT vault_id, name, base_rate_bp, boost_max_bp, secondary_rate_bp,
		       min_entry_value, duration_months, mining_allocation, is_active, created_at
		FROM vaults
		WHERE is_active = TRUE
		ORDER BY vault_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active vaults: %w", err)
	}
	defer rows.Close()

	return scanVaults(rows)
}

// AddMiningAllocation atomically increments the vault's cumulative mining
// allocation. Returns ErrNotFound if the vault does not exist.
func (s *VaultStore) AddMiningAllocation(ctx context.Context, vaultID string, amount float64) error {
	query := `
		UPDATE vaults
		SET mining_allocation = mining_allocation + $2
		WHERE vault_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, vaultID, amount)
	if err != nil {
		return fmt.Errorf("add mining allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanVault scans a single row into a Vault.
func scanVault(row pgx.Row) (*domain.Vault, error) {
	var v domain.Vault
	err := row.Scan(
		&v.VaultID,
		&v.Name,
		&v.BaseRateBP,
		&v.BoostMaxBP,
		&v.SecondaryRateBP,
		&v.MinEntryValue,
		&v.DurationMonths,
		&v.MiningAllocation,
		&v.IsActive,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// scanVaults scans multiple rows into a slice of Vault.
func scanVaults(rows pgx.Rows) ([]*domain.Vault, error) {
	var vaults []*domain.Vault

	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault row: %w", err)
		}
		vaults = append(vaults, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault rows: %w", err)
	}

	return vaults, nil
}
