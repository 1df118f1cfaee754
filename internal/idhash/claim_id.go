package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeClaimID computes a deterministic claim_id using SHA256.
// Formula: SHA256(position_id|claimant|amount|created_at)
// Returns hex-encoded hash (64 characters).
func ComputeClaimID(
	positionID string,
	claimant string,
	amount float64,
	createdAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%.9f|%d",
		positionID,
		claimant,
		amount,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputePositionID computes a deterministic position_id using SHA256.
// Formula: SHA256(vault_id|owner|principal|created_at)
// Returns hex-encoded hash (64 characters).
func ComputePositionID(
	vaultID string,
	owner string,
	principal float64,
	createdAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%.9f|%d",
		vaultID,
		owner,
		principal,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
