package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Address identifies a caller or component in the game economy.
// The zero value means "no one" and never passes an authorization check.
type Address string

// ZeroAddress is the empty address.
const ZeroAddress Address = ""

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// DeriveAddress produces a stable address from a seed string
// (an account login or a component name).
func DeriveAddress(seed string) Address {
	sum := sha256.Sum256([]byte(seed))
	return Address("0x" + hex.EncodeToString(sum[:20]))
}
