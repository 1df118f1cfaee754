package domain

// PoolShareOfSupply is the fraction of total supply allocated to the
// mining pool at initialization.
const PoolShareOfSupply = 0.6

// MiningConfig is the singleton mining pool state.
// Corresponds to mining_config table in PostgreSQL (single row, id=1).
type MiningConfig struct {
	InternalPrice   float64 // reference value per secondary token (reporting)
	TotalSupply     float64 // total secondary token supply
	PoolTotal       float64 // 0.6 * TotalSupply, fixed at initialization
	PoolRemaining   float64 // tokens not yet promised to positions
	PoolDistributed float64 // tokens recorded as paid out at claim time
	TokenMint       *string // secondary token mint address (nullable)
	UpdatedAt       int64   // Unix timestamp in milliseconds
}

// Active reports whether the pool can still back new accruals.
func (c *MiningConfig) Active() bool {
	return c.PoolRemaining > 0
}

// PercentDistributed returns PoolDistributed as a percentage of PoolTotal.
func (c *MiningConfig) PercentDistributed() float64 {
	if c.PoolTotal <= 0 {
		return 0
	}
	return c.PoolDistributed / c.PoolTotal * 100
}
