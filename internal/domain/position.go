package domain

// Position is a single deposit locked in a vault.
// Corresponds to positions table in PostgreSQL.
type Position struct {
	PositionID             string          // PRIMARY KEY
	VaultID                string          // FK to vaults
	OwnerAddress           string          // depositor wallet address
	PrincipalValue         float64         // deposit value at entry
	Frequency              PayoutFrequency // monthly | quarterly | yearly
	PendingSecondaryReward float64         // accrued, unclaimed secondary tokens
	BoostActive            bool            // latest boost snapshot outcome
	LastAccruedAt          int64           // last accrual timestamp (ms), 0 if never
	CreatedAt              int64           // record creation timestamp (ms)
}
