package domain

import (
	"errors"
	"math/bits"
)

// MaxDecimals is the largest decimal count a mint accepts.
const MaxDecimals = 18

// ErrSupplyOverflow is returned when supply * 10^decimals does not fit in a u64.
var ErrSupplyOverflow = errors.New("supply overflows u64 base units")

// ScaleSupply converts whole tokens to base units.
func ScaleSupply(supply uint64, decimals uint8) (uint64, error) {
	if decimals > MaxDecimals {
		return 0, ErrSupplyOverflow
	}
	amount := supply
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(amount, 10)
		if hi != 0 {
			return 0, ErrSupplyOverflow
		}
		amount = lo
	}
	return amount, nil
}
