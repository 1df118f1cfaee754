package domain

// BoostThresholdFraction of the deposit value that collateral must cover
// for boost eligibility.
const BoostThresholdFraction = 0.40

// BoostSnapshot records a boost eligibility evaluation for a position.
// At most one row per position; a new evaluation overwrites the previous one.
// Corresponds to boost_snapshots table in PostgreSQL.
type BoostSnapshot struct {
	PositionID        string  // PK + FK to positions
	CollateralBalance float64 // collateral token balance at check time
	MarketPrice       float64 // undiscounted collateral price used
	DiscountedPrice   float64 // price after haircut
	CollateralValue   float64 // balance * discounted price
	DepositValue      float64 // position principal at check time
	ThresholdValue    float64 // 0.40 * deposit value
	IsEligible        bool    // collateral value >= threshold
	CheckedAt         int64   // evaluation timestamp (ms)
}
