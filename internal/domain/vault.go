package domain

// Vault is a deposit product definition.
// Corresponds to vaults table in PostgreSQL.
type Vault struct {
	VaultID          string  // PRIMARY KEY
	Name             string  // display name
	BaseRateBP       int64   // primary base rate, basis points (1800 = 18% APY)
	BoostMaxBP       int64   // additional rate when boost is eligible, basis points
	SecondaryRateBP  int64   // secondary (mining) rate, basis points
	MinEntryValue    float64 // minimum deposit value accepted
	DurationMonths   int     // lock duration
	MiningAllocation float64 // cumulative secondary tokens accrued against the vault
	IsActive         bool    // inactive vaults accept no new positions
	CreatedAt        int64   // record creation timestamp (ms)
}

// RateFraction converts a basis-point rate to a fraction (1800 -> 0.18).
func RateFraction(bp int64) float64 {
	return float64(bp) / 10000
}
