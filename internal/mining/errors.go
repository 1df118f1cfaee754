package mining

import "errors"

// Ledger errors.
var (
	// ErrNotInitialized is returned when an operation runs before the
	// mining pool singleton has been initialized.
	ErrNotInitialized = errors.New("mining pool not initialized")

	// ErrInvalidAmount is returned when a claim amount is non-positive or
	// exceeds the position's pending reward.
	ErrInvalidAmount = errors.New("invalid claim amount")
)
