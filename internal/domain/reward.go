package domain

// RewardEvent is an append-only record of a non-zero accrual.
// Corresponds to reward_events table in ClickHouse.
type RewardEvent struct {
	PositionID         string  // position the accrual was credited to
	VaultID            string  // vault the position belongs to
	AmountTokens       float64 // secondary tokens accrued (after pool capping)
	AmountValue        float64 // token amount * internal price
	ElapsedDays        int64   // days covered by the accrual
	PoolRemainingAfter float64 // pool_remaining after the reservation
	OccurredAt         int64   // accrual timestamp (ms)
}
