package storage

import (
	"context"

	"vault-rewards/internal/domain"
)

// MiningConfigStore provides access to the singleton mining pool config.
type MiningConfigStore interface {
	// Load retrieves the config. Returns ErrNotFound if never initialized.
	Load(ctx context.Context) (*domain.MiningConfig, error)

	// Save upserts the singleton config, replacing any previous state.
	Save(ctx context.Context, c *domain.MiningConfig) error

	// ReservePool atomically deducts up to amount from pool_remaining,
	// flooring at zero. Returns the amount actually reserved and the
	// remaining balance after the reservation.
	ReservePool(ctx context.Context, amount float64) (reserved, remaining float64, err error)

	// ReleasePool atomically returns amount to pool_remaining, undoing a
	// reservation that could not be credited. The balance is capped at
	// pool_total. Returns the remaining balance after the release.
	ReleasePool(ctx context.Context, amount float64) (remaining float64, err error)

	// AddDistributed atomically increments pool_distributed.
	AddDistributed(ctx context.Context, amount float64) error
}

// VaultStore provides access to the vault catalog.
type VaultStore interface {
	// Insert adds a new vault. Returns ErrDuplicateKey if vault_id exists.
	Insert(ctx context.Context, v *domain.Vault) error

	// GetByID retrieves a vault by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, vaultID string) (*domain.Vault, error)

	// ListActive retrieves all active vaults, ordered by vault_id ASC.
	ListActive(ctx context.Context) ([]*domain.Vault, error)

	// AddMiningAllocation atomically increments the vault's cumulative
	// mining allocation. Returns ErrNotFound if the vault does not exist.
	AddMiningAllocation(ctx context.Context, vaultID string, amount float64) error
}

// PositionStore provides access to deposit positions.
type PositionStore interface {
	// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
	Insert(ctx context.Context, p *domain.Position) error

	// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, positionID string) (*domain.Position, error)

	// ListByOwner retrieves all positions for an owner, newest first.
	ListByOwner(ctx context.Context, owner string) ([]*domain.Position, error)

	// ListActive retrieves all positions in active vaults, ordered by
	// position_id ASC.
	ListActive(ctx context.Context) ([]*domain.Position, error)

	// AddPendingReward atomically increments pending_secondary_reward and
	// returns the new total. Returns ErrNotFound if the position does not exist.
	AddPendingReward(ctx context.Context, positionID string, delta float64) (float64, error)

	// DeductPendingReward atomically decrements pending_secondary_reward
	// only if the current balance covers amount. Returns
	// ErrInsufficientBalance when it does not, leaving the row untouched.
	DeductPendingReward(ctx context.Context, positionID string, amount float64) error

	// SetBoostActive records the latest boost evaluation outcome.
	SetBoostActive(ctx context.Context, positionID string, active bool) error

	// SetLastAccruedAt records the timestamp of the last accrual.
	SetLastAccruedAt(ctx context.Context, positionID string, ts int64) error
}

// ClaimStore provides access to claim records.
type ClaimStore interface {
	// Append adds a new pending claim. Returns ErrDuplicateKey if claim_id exists.
	Append(ctx context.Context, c *domain.ClaimRecord) error

	// GetByID retrieves a claim by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, claimID string) (*domain.ClaimRecord, error)

	// ListByClaimant retrieves all claims for a claimant address, newest first.
	ListByClaimant(ctx context.Context, claimant string) ([]*domain.ClaimRecord, error)

	// Confirm transitions a pending claim to confirmed, recording the
	// external settlement reference. Returns ErrNotFound when the claim
	// does not exist or is already confirmed.
	Confirm(ctx context.Context, claimID, externalRef string) (*domain.ClaimRecord, error)
}

// BoostSnapshotStore provides access to boost eligibility snapshots.
type BoostSnapshotStore interface {
	// Upsert stores the snapshot, replacing any previous one for the position.
	Upsert(ctx context.Context, s *domain.BoostSnapshot) error

	// GetByPosition retrieves the latest snapshot. Returns ErrNotFound if none.
	GetByPosition(ctx context.Context, positionID string) (*domain.BoostSnapshot, error)
}

// PriceQuoteStore provides durable fallback storage for price quotes.
type PriceQuoteStore interface {
	// Upsert stores the quote, replacing any previous one for the token.
	Upsert(ctx context.Context, q *domain.PriceQuote) error

	// GetByToken retrieves the latest stored quote. Returns ErrNotFound if none.
	GetByToken(ctx context.Context, token string) (*domain.PriceQuote, error)
}

// PriceHistoryStore provides access to the append-only collateral price log.
type PriceHistoryStore interface {
	// Append adds a price observation.
	Append(ctx context.Context, q *domain.PriceQuote) error

	// ListByToken retrieves observations for a token within [start, end]
	// (inclusive, ms), ordered by fetched_at ASC.
	ListByToken(ctx context.Context, token string, start, end int64) ([]*domain.PriceQuote, error)
}

// VaultTotals aggregates reward events per vault.
type VaultTotals struct {
	VaultID      string
	EventCount   int64
	TotalTokens  float64
	TotalValue   float64
}

// RewardEventStore provides access to the append-only accrual audit trail.
type RewardEventStore interface {
	// Append adds a reward event.
	Append(ctx context.Context, e *domain.RewardEvent) error

	// ListByPosition retrieves all events for a position, ordered by
	// occurred_at ASC.
	ListByPosition(ctx context.Context, positionID string) ([]*domain.RewardEvent, error)

	// TotalsByVault aggregates event counts and amounts per vault.
	TotalsByVault(ctx context.Context) ([]*VaultTotals, error)
}
