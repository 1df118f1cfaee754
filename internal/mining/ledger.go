// Package mining tracks the depleting secondary-token pool: accrual against
// positions, pool reservation arithmetic and the claim lifecycle.
package mining

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonboulle/clockwork"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/idhash"
	"vault-rewards/internal/storage"
	"vault-rewards/internal/wallet"
)

// DaysPerYear is the accrual day basis.
const DaysPerYear = 365

// DailyReward is the per-day secondary reward for a deposit.
type DailyReward struct {
	DailyTokens  float64
	DailyValue   float64
	AnnualTokens float64
	PriceUsed    float64
	IsActive     bool
}

// AccrualResult reports the outcome of a single accrual.
type AccrualResult struct {
	Accrued         float64 // tokens credited after pool capping
	NewPendingTotal float64
	RemainingAfter  float64
	IsActive        bool
}

// PoolStats is a reporting snapshot of the pool.
type PoolStats struct {
	InternalPrice      float64
	TotalSupply        float64
	PoolTotal          float64
	PoolRemaining      float64
	PoolDistributed    float64
	PercentDistributed float64
	IsActive           bool
	TokenMint          *string
}

// LedgerOptions configures Ledger.
type LedgerOptions struct {
	// Clock is the time source; defaults to the real clock.
	Clock clockwork.Clock
	// Logger for best-effort side channel failures.
	Logger *log.Logger
}

// Ledger owns the mining pool state machine: Uninitialized, Active while
// pool_remaining > 0, Exhausted at zero. Exhaustion is sticky until an
// explicit re-initialization. pool_remaining means "not yet promised" and is
// reduced at accrual time; pool_distributed is increased only at claim time,
// so remaining + distributed can undershoot the total by the sum of pending
// unclaimed rewards.
type Ledger struct {
	configs   storage.MiningConfigStore
	positions storage.PositionStore
	vaults    storage.VaultStore
	claims    storage.ClaimStore
	events    storage.RewardEventStore
	clock     clockwork.Clock
	logger    *log.Logger

	mu     sync.Mutex
	cached *domain.MiningConfig
}

// NewLedger creates a mining pool ledger. The vault and event stores are
// optional; when nil the per-vault allocation and audit trail are skipped.
func NewLedger(
	configs storage.MiningConfigStore,
	positions storage.PositionStore,
	vaults storage.VaultStore,
	claims storage.ClaimStore,
	events storage.RewardEventStore,
	opts LedgerOptions,
) *Ledger {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[mining] ", log.LstdFlags)
	}

	return &Ledger{
		configs:   configs,
		positions: positions,
		vaults:    vaults,
		claims:    claims,
		events:    events,
		clock:     opts.Clock,
		logger:    opts.Logger,
	}
}

// Initialize creates or replaces the pool singleton. The pool receives a
// fixed 60% share of the total supply; a re-call is an administrative
// override that resets remaining and distributed.
func (l *Ledger) Initialize(ctx context.Context, internalPrice, totalSupply float64, mint *string) (*domain.MiningConfig, error) {
	if internalPrice <= 0 || totalSupply <= 0 {
		return nil, fmt.Errorf("%w: price and supply must be positive", ErrInvalidAmount)
	}

	poolTotal := domain.PoolShareOfSupply * totalSupply
	cfg := &domain.MiningConfig{
		InternalPrice: internalPrice,
		TotalSupply:   totalSupply,
		PoolTotal:     poolTotal,
		PoolRemaining: poolTotal,
		TokenMint:     mint,
		UpdatedAt:     l.clock.Now().UnixMilli(),
	}

	if err := l.configs.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("initialize mining config: %w", err)
	}

	l.mu.Lock()
	copy := *cfg
	l.cached = &copy
	l.mu.Unlock()

	result := *cfg
	return &result, nil
}

// DailyReward computes the per-day secondary reward for a deposit at the
// given basis-point rate. An exhausted pool or non-positive inputs produce
// an all-zero, inactive reward rather than an error.
func (l *Ledger) DailyReward(ctx context.Context, depositValue float64, rateBP int64) (DailyReward, error) {
	cfg, err := l.loadConfig(ctx)
	if err != nil {
		return DailyReward{}, err
	}

	active := cfg.Active()
	if !active || depositValue <= 0 || rateBP <= 0 || cfg.InternalPrice <= 0 {
		return DailyReward{PriceUsed: cfg.InternalPrice, IsActive: active}, nil
	}

	dailyValue := depositValue * domain.RateFraction(rateBP) / DaysPerYear
	dailyTokens := dailyValue / cfg.InternalPrice

	return DailyReward{
		DailyTokens:  dailyTokens,
		DailyValue:   dailyValue,
		AnnualTokens: dailyTokens * DaysPerYear,
		PriceUsed:    cfg.InternalPrice,
		IsActive:     true,
	}, nil
}

// Accrue credits elapsed days of secondary reward to a position, capped by
// what remains in the pool. The reservation is a single atomic store
// operation, so concurrent accruals can never overdraw; exhaustion caps the
// credit to zero instead of failing.
func (l *Ledger) Accrue(ctx context.Context, positionID string, depositValue float64, rateBP int64, elapsedDays int64) (AccrualResult, error) {
	cfg, err := l.loadConfig(ctx)
	if err != nil {
		return AccrualResult{}, err
	}

	pos, err := l.positions.GetByID(ctx, positionID)
	if err != nil {
		return AccrualResult{}, fmt.Errorf("load position %s: %w", positionID, err)
	}

	dr, err := l.DailyReward(ctx, depositValue, rateBP)
	if err != nil {
		return AccrualResult{}, err
	}

	raw := dr.DailyTokens * float64(elapsedDays)
	if elapsedDays <= 0 || raw <= 0 {
		return AccrualResult{
			NewPendingTotal: pos.PendingSecondaryReward,
			RemainingAfter:  cfg.PoolRemaining,
			IsActive:        cfg.Active(),
		}, nil
	}

	reserved, remaining, err := l.configs.ReservePool(ctx, raw)
	if err != nil {
		return AccrualResult{}, fmt.Errorf("reserve pool: %w", err)
	}
	l.updateCachedRemaining(remaining)

	newPending := pos.PendingSecondaryReward
	if reserved > 0 {
		newPending, err = l.positions.AddPendingReward(ctx, positionID, reserved)
		if err != nil {
			// Return the reservation so a storage fault does not leak
			// tokens out of the pool with no position credited.
			if rem, rerr := l.configs.ReleasePool(ctx, reserved); rerr != nil {
				l.logger.Printf("pool release failed for %s after credit error: %v", positionID, rerr)
			} else {
				l.updateCachedRemaining(rem)
			}
			return AccrualResult{}, fmt.Errorf("credit pending reward: %w", err)
		}

		// Allocation bookkeeping and the audit trail are best effort;
		// the position credit is already durable.
		if l.vaults != nil {
			if err := l.vaults.AddMiningAllocation(ctx, pos.VaultID, reserved); err != nil {
				l.logger.Printf("vault allocation update failed for %s: %v", pos.VaultID, err)
			}
		}
		if l.events != nil {
			event := &domain.RewardEvent{
				PositionID:         positionID,
				VaultID:            pos.VaultID,
				AmountTokens:       reserved,
				AmountValue:        reserved * cfg.InternalPrice,
				ElapsedDays:        elapsedDays,
				PoolRemainingAfter: remaining,
				OccurredAt:         l.clock.Now().UnixMilli(),
			}
			if err := l.events.Append(ctx, event); err != nil {
				l.logger.Printf("reward event append failed for %s: %v", positionID, err)
			}
		}
	}

	if err := l.positions.SetLastAccruedAt(ctx, positionID, l.clock.Now().UnixMilli()); err != nil {
		l.logger.Printf("last accrued update failed for %s: %v", positionID, err)
	}

	return AccrualResult{
		Accrued:         reserved,
		NewPendingTotal: newPending,
		RemainingAfter:  remaining,
		IsActive:        remaining > 0,
	}, nil
}

// Claim converts pending secondary reward into a pending claim record. A
// zero requestedAmount claims the full pending balance. The check and the
// deduction are one atomic conditional decrement, so an invalid amount
// leaves the position untouched.
func (l *Ledger) Claim(ctx context.Context, positionID, claimant string, requestedAmount float64) (*domain.ClaimRecord, error) {
	if err := wallet.ValidateAddress(claimant); err != nil {
		return nil, err
	}

	cfg, err := l.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	pos, err := l.positions.GetByID(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("load position %s: %w", positionID, err)
	}

	amount := requestedAmount
	if amount == 0 {
		amount = pos.PendingSecondaryReward
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: nothing to claim", ErrInvalidAmount)
	}

	err = l.positions.DeductPendingReward(ctx, positionID, amount)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) || errors.Is(err, storage.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %.9f exceeds pending %.9f", ErrInvalidAmount, amount, pos.PendingSecondaryReward)
		}
		return nil, fmt.Errorf("deduct pending reward: %w", err)
	}

	now := l.clock.Now().UnixMilli()
	claim := &domain.ClaimRecord{
		ClaimID:         idhash.ComputeClaimID(positionID, claimant, amount, now),
		PositionID:      positionID,
		ClaimantAddress: claimant,
		Amount:          amount,
		PriceAtClaim:    cfg.InternalPrice,
		Status:          domain.ClaimStatusPending,
		CreatedAt:       now,
	}

	if err := l.claims.Append(ctx, claim); err != nil {
		// Restore the deducted balance so a storage fault does not eat
		// the user's pending reward.
		if _, rerr := l.positions.AddPendingReward(ctx, positionID, amount); rerr != nil {
			l.logger.Printf("pending restore failed for %s after claim append error: %v", positionID, rerr)
		}
		return nil, fmt.Errorf("append claim: %w", err)
	}

	if err := l.configs.AddDistributed(ctx, amount); err != nil {
		l.logger.Printf("distributed counter update failed for claim %s: %v", claim.ClaimID, err)
	} else {
		l.mu.Lock()
		if l.cached != nil {
			l.cached.PoolDistributed += amount
		}
		l.mu.Unlock()
	}

	result := *claim
	return &result, nil
}

// ConfirmClaim transitions a pending claim to confirmed exactly once.
// A duplicate confirmation returns storage.ErrNotFound so repeated
// settlement events surface instead of silently succeeding.
func (l *Ledger) ConfirmClaim(ctx context.Context, claimID, externalRef string) (*domain.ClaimRecord, error) {
	claim, err := l.claims.Confirm(ctx, claimID, externalRef)
	if err != nil {
		return nil, fmt.Errorf("confirm claim %s: %w", claimID, err)
	}
	return claim, nil
}

// Stats reports pool totals and the distribution percentage.
func (l *Ledger) Stats(ctx context.Context) (*PoolStats, error) {
	cfg, err := l.configs.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("load mining config: %w", err)
	}

	l.mu.Lock()
	copy := *cfg
	l.cached = &copy
	l.mu.Unlock()

	return &PoolStats{
		InternalPrice:      cfg.InternalPrice,
		TotalSupply:        cfg.TotalSupply,
		PoolTotal:          cfg.PoolTotal,
		PoolRemaining:      cfg.PoolRemaining,
		PoolDistributed:    cfg.PoolDistributed,
		PercentDistributed: cfg.PercentDistributed(),
		IsActive:           cfg.Active(),
		TokenMint:          cfg.TokenMint,
	}, nil
}

// History returns a claimant's claims, newest first.
func (l *Ledger) History(ctx context.Context, claimant string) ([]*domain.ClaimRecord, error) {
	if err := wallet.ValidateAddress(claimant); err != nil {
		return nil, err
	}
	records, err := l.claims.ListByClaimant(ctx, claimant)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return records, nil
}

// loadConfig returns the cached config, falling back to the store.
func (l *Ledger) loadConfig(ctx context.Context) (*domain.MiningConfig, error) {
	l.mu.Lock()
	if l.cached != nil {
		cfg := *l.cached
		l.mu.Unlock()
		return &cfg, nil
	}
	l.mu.Unlock()

	cfg, err := l.configs.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("load mining config: %w", err)
	}

	l.mu.Lock()
	copy := *cfg
	l.cached = &copy
	l.mu.Unlock()

	return cfg, nil
}

func (l *Ledger) updateCachedRemaining(remaining float64) {
	l.mu.Lock()
	if l.cached != nil {
		l.cached.PoolRemaining = remaining
	}
	l.mu.Unlock()
}
