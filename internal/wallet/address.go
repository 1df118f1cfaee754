// Package wallet validates claimant wallet addresses.
package wallet

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned when an address fails validation.
var ErrInvalidAddress = errors.New("invalid wallet address")

// ValidateAddress checks that an address is a base58-encoded 32-byte
// ed25519 public key on the curve. Program-derived addresses are off-curve
// and cannot sign claims, so they are rejected.
func ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	raw, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: decoded length %d, want 32", ErrInvalidAddress, len(raw))
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("%w: point not on curve", ErrInvalidAddress)
	}
	return nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
