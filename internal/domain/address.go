package domain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for strings that are not a wallet address.
var ErrInvalidAddress = errors.New("invalid address")

// DecodeAddress decodes a base58 wallet address and checks that it is a
// point on the ed25519 curve. Program-derived addresses are rejected since
// they cannot sign the fee transfer.
func DecodeAddress(s string) ([32]byte, error) {
	var out [32]byte

	raw, err := base58.Decode(s)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%w: got %d bytes", ErrInvalidAddress, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return out, fmt.Errorf("%w: not on curve", ErrInvalidAddress)
	}

	copy(out[:], raw)
	return out, nil
}
