package domain

// Claim status constants
const (
	ClaimStatusPending   = "pending"
	ClaimStatusConfirmed = "confirmed"
)

// ClaimRecord is a withdrawal of pending secondary rewards.
// Corresponds to claims table in PostgreSQL.
// Status transitions pending -> confirmed exactly once.
type ClaimRecord struct {
	ClaimID          string  // PRIMARY KEY, deterministic hash
	PositionID       string  // FK to positions
	ClaimantAddress  string  // validated wallet address
	Amount           float64 // claimed secondary tokens
	PriceAtClaim     float64 // internal price at claim time
	Status           string  // "pending" | "confirmed"
	ExternalRef      *string // settlement reference, set on confirmation
	CreatedAt        int64   // claim creation timestamp (ms)
	ConfirmedAt      *int64  // confirmation timestamp (ms), nullable
}
