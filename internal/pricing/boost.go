package pricing

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// BoostResult is the outcome of a boost eligibility evaluation.
type BoostResult struct {
	CollateralBalance float64
	CollateralValue   float64
	RequiredValue     float64
	Shortfall         float64
	PriceUsed         float64
	MarketPrice       float64
	PriceKnown        bool
	IsEligible        bool
}

// Evaluator decides boost eligibility from priced collateral. Eligibility
// requires the discounted collateral value to cover 40% of the deposit.
// An unknown price (zero quote) is deterministically ineligible, never an
// error.
type Evaluator struct {
	quotes    *QuoteCache
	snapshots storage.BoostSnapshotStore
	token     string
	clock     clockwork.Clock
}

// NewEvaluator creates a boost evaluator for the given collateral token.
// The snapshot store may be nil when persistence is not needed.
func NewEvaluator(quotes *QuoteCache, snapshots storage.BoostSnapshotStore, token string, clock clockwork.Clock) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{
		quotes:    quotes,
		snapshots: snapshots,
		token:     token,
		clock:     clock,
	}
}

// Evaluate computes boost eligibility for a collateral balance against a
// deposit value.
func (e *Evaluator) Evaluate(ctx context.Context, collateralBalance, depositValue float64) BoostResult {
	quote := e.quotes.GetQuote(ctx, e.token)

	value := collateralBalance * quote.DiscountedPrice
	required := domain.BoostThresholdFraction * depositValue
	shortfall := required - value
	if shortfall < 0 {
		shortfall = 0
	}

	return BoostResult{
		CollateralBalance: collateralBalance,
		CollateralValue:   value,
		RequiredValue:     required,
		Shortfall:         shortfall,
		PriceUsed:         quote.DiscountedPrice,
		MarketPrice:       quote.MarketPrice,
		PriceKnown:        quote.MarketPrice > 0,
		IsEligible:        quote.MarketPrice > 0 && value >= required,
	}
}

// Snapshot evaluates eligibility and upserts the outcome for the position.
// Re-running with the same inputs overwrites the previous snapshot, so the
// operation is idempotent.
func (e *Evaluator) Snapshot(ctx context.Context, positionID string, collateralBalance, depositValue float64) (BoostResult, error) {
	result := e.Evaluate(ctx, collateralBalance, depositValue)

	if e.snapshots == nil {
		return result, nil
	}

	snap := &domain.BoostSnapshot{
		PositionID:        positionID,
		CollateralBalance: collateralBalance,
		MarketPrice:       result.MarketPrice,
		DiscountedPrice:   result.PriceUsed,
		CollateralValue:   result.CollateralValue,
		DepositValue:      depositValue,
		ThresholdValue:    result.RequiredValue,
		IsEligible:        result.IsEligible,
		CheckedAt:         e.clock.Now().UnixMilli(),
	}
	if err := e.snapshots.Upsert(ctx, snap); err != nil {
		return result, fmt.Errorf("upsert boost snapshot: %w", err)
	}

	return result, nil
}
