// Package yield composes primary (rate + boost, frequency-scaled) and
// secondary (mining pool) reward streams into effective APYs.
package yield

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/mining"
	"vault-rewards/internal/pricing"
	"vault-rewards/internal/storage"
)

// CalcInput carries the position-shaped values a calculation needs.
type CalcInput struct {
	DepositValue      float64
	Frequency         domain.PayoutFrequency
	BaseRateBP        int64
	BoostMaxBP        int64
	SecondaryRateBP   int64
	CollateralBalance float64 // 0 skips the boost evaluation
}

// YieldResult is a full yield breakdown for one deposit.
type YieldResult struct {
	Multiplier    float64
	BoostApplied  bool
	BoostEligible bool
	PriceKnown    bool

	PrimaryAPY          float64 // percent, multiplier applied
	PrimaryAnnualValue  float64
	PrimaryMonthlyValue float64
	PrimaryDailyValue   float64

	SecondaryActive       bool
	SecondaryDailyTokens  float64
	SecondaryAnnualTokens float64
	SecondaryAnnualValue  float64

	CombinedAPY float64 // percent
}

// SimulationResult compares a deposit with and without its collateral.
type SimulationResult struct {
	Eligible bool
	Reason   string

	Base    YieldResult // collateral ignored
	Boosted YieldResult // supplied collateral applied

	BoostBenefitAPY          float64
	RequiredCollateralTokens float64 // tokens needed for eligibility at the current price
	Boost                    pricing.BoostResult
}

// PeriodInput parameterizes a pure period-reward computation.
type PeriodInput struct {
	DepositValue         float64
	Frequency            domain.PayoutFrequency
	BaseRateBP           int64
	BoostMaxBP           int64
	BoostActive          bool
	SecondaryDailyTokens float64
	StartMs              int64
	EndMs                int64
}

// PeriodResult is the reward total for a time window.
type PeriodResult struct {
	Days            int64
	PrimaryValue    float64
	SecondaryTokens float64
}

// VaultSummary is the per-vault rate card.
type VaultSummary struct {
	VaultID          string
	Name             string
	MinEntryValue    float64
	DurationMonths   int
	SecondaryAPR     float64 // percent
	MiningAllocation float64
	MaxAPYMonthly    float64 // percent, base+boost at monthly multiplier
	MaxAPYQuarterly  float64
	MaxAPYYearly     float64
	EventCount       int64
	TotalTokens      float64
}

// EngineOptions configures Engine.
type EngineOptions struct {
	Logger *log.Logger
}

// Engine computes blended yields. The secondary stream degrades to inactive
// zeros when the mining pool is exhausted or not yet initialized; exhaustion
// never hides inside an error.
type Engine struct {
	ledger *mining.Ledger
	boost  *pricing.Evaluator
	vaults storage.VaultStore
	events storage.RewardEventStore
	logger *log.Logger
}

// NewEngine creates a yield engine. The event store is optional and only
// feeds the vault summary counters.
func NewEngine(ledger *mining.Ledger, boost *pricing.Evaluator, vaults storage.VaultStore, events storage.RewardEventStore, opts EngineOptions) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[yield] ", log.LstdFlags)
	}
	return &Engine{
		ledger: ledger,
		boost:  boost,
		vaults: vaults,
		events: events,
		logger: opts.Logger,
	}
}

// Calculate produces the yield breakdown for one deposit.
func (e *Engine) Calculate(ctx context.Context, in CalcInput) (YieldResult, error) {
	mult := in.Frequency.Multiplier()

	var boostEligible, priceKnown bool
	if in.CollateralBalance > 0 && e.boost != nil {
		r := e.boost.Evaluate(ctx, in.CollateralBalance, in.DepositValue)
		boostEligible = r.IsEligible
		priceKnown = r.PriceKnown
	}

	rateBP := in.BaseRateBP
	if boostEligible {
		rateBP += in.BoostMaxBP
	}

	primaryFrac := domain.RateFraction(rateBP) * mult
	primaryAnnual := in.DepositValue * primaryFrac

	result := YieldResult{
		Multiplier:          mult,
		BoostApplied:        boostEligible,
		BoostEligible:       boostEligible,
		PriceKnown:          priceKnown,
		PrimaryAPY:          primaryFrac * 100,
		PrimaryAnnualValue:  primaryAnnual,
		PrimaryMonthlyValue: primaryAnnual / 12,
		PrimaryDailyValue:   primaryAnnual / mining.DaysPerYear,
	}

	dr, err := e.ledger.DailyReward(ctx, in.DepositValue, in.SecondaryRateBP)
	if err != nil {
		if !errors.Is(err, mining.ErrNotInitialized) {
			return YieldResult{}, fmt.Errorf("secondary daily reward: %w", err)
		}
		// No pool yet: the secondary stream simply contributes nothing.
	} else {
		result.SecondaryActive = dr.IsActive
		result.SecondaryDailyTokens = dr.DailyTokens
		result.SecondaryAnnualTokens = dr.AnnualTokens
		result.SecondaryAnnualValue = dr.AnnualTokens * dr.PriceUsed
	}

	if in.DepositValue > 0 {
		result.CombinedAPY = (result.PrimaryAnnualValue + result.SecondaryAnnualValue) / in.DepositValue * 100
	}

	return result, nil
}

// Simulate reports the yield a deposit would earn in a vault, with and
// without the supplied collateral. Deposits below the vault minimum come
// back ineligible, not as an error.
func (e *Engine) Simulate(ctx context.Context, depositValue float64, vault *domain.Vault, frequency domain.PayoutFrequency, collateralBalance float64) (SimulationResult, error) {
	if depositValue < vault.MinEntryValue {
		return SimulationResult{
			Eligible: false,
			Reason:   fmt.Sprintf("deposit %.2f below vault minimum %.2f", depositValue, vault.MinEntryValue),
		}, nil
	}

	base := CalcInput{
		DepositValue:    depositValue,
		Frequency:       frequency,
		BaseRateBP:      vault.BaseRateBP,
		BoostMaxBP:      vault.BoostMaxBP,
		SecondaryRateBP: vault.SecondaryRateBP,
	}

	baseResult, err := e.Calculate(ctx, base)
	if err != nil {
		return SimulationResult{}, err
	}

	boosted := base
	boosted.CollateralBalance = collateralBalance
	boostedResult, err := e.Calculate(ctx, boosted)
	if err != nil {
		return SimulationResult{}, err
	}

	sim := SimulationResult{
		Eligible:        true,
		Base:            baseResult,
		Boosted:         boostedResult,
		BoostBenefitAPY: boostedResult.PrimaryAPY - baseResult.PrimaryAPY,
	}

	if e.boost != nil {
		sim.Boost = e.boost.Evaluate(ctx, collateralBalance, depositValue)
		if sim.Boost.PriceUsed > 0 {
			sim.RequiredCollateralTokens = sim.Boost.RequiredValue / sim.Boost.PriceUsed
		}
	}

	return sim, nil
}

// PeriodRewards computes reward totals for [start, end]. Days are counted
// with a ceiling so any started day earns in full.
func PeriodRewards(in PeriodInput) PeriodResult {
	if in.EndMs <= in.StartMs {
		return PeriodResult{}
	}

	const dayMs = 24 * 60 * 60 * 1000
	days := int64(math.Ceil(float64(in.EndMs-in.StartMs) / dayMs))

	rateBP := in.BaseRateBP
	if in.BoostActive {
		rateBP += in.BoostMaxBP
	}
	dailyPrimary := in.DepositValue * domain.RateFraction(rateBP) * in.Frequency.Multiplier() / mining.DaysPerYear

	return PeriodResult{
		Days:            days,
		PrimaryValue:    dailyPrimary * float64(days),
		SecondaryTokens: in.SecondaryDailyTokens * float64(days),
	}
}

// VaultSummaries produces the rate card for every active vault.
func (e *Engine) VaultSummaries(ctx context.Context) ([]VaultSummary, error) {
	vaults, err := e.vaults.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}

	totals := make(map[string]*storage.VaultTotals)
	if e.events != nil {
		byVault, err := e.events.TotalsByVault(ctx)
		if err != nil {
			// The rate card still works without audit counters.
			e.logger.Printf("vault totals unavailable: %v", err)
		} else {
			for _, t := range byVault {
				totals[t.VaultID] = t
			}
		}
	}

	summaries := make([]VaultSummary, 0, len(vaults))
	for _, v := range vaults {
		maxFrac := domain.RateFraction(v.BaseRateBP + v.BoostMaxBP)
		s := VaultSummary{
			VaultID:          v.VaultID,
			Name:             v.Name,
			MinEntryValue:    v.MinEntryValue,
			DurationMonths:   v.DurationMonths,
			SecondaryAPR:     domain.RateFraction(v.SecondaryRateBP) * 100,
			MiningAllocation: v.MiningAllocation,
			MaxAPYMonthly:    maxFrac * domain.MultiplierMonthly * 100,
			MaxAPYQuarterly:  maxFrac * domain.MultiplierQuarterly * 100,
			MaxAPYYearly:     maxFrac * domain.MultiplierYearly * 100,
		}
		if t, ok := totals[v.VaultID]; ok {
			s.EventCount = t.EventCount
			s.TotalTokens = t.TotalTokens
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}
