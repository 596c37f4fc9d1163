package core

import (
	"github.com/ethereum/go-ethereum/common/math"
)

// MaxDecimals is the largest precision whose scale factor fits in a uint64.
const MaxDecimals = 19

// Power converts a raw token amount into whole-token voting power.
// Fractions of a token carry no weight.
func Power(balance uint64, decimals uint8) (uint64, error) {
	unit, err := MinimumPower(decimals)
	if err != nil {
		return 0, err
	}
	return balance / unit, nil
}

// MinimumPower is the raw amount of one whole token, the least a member must
// hold to vote.
func MinimumPower(decimals uint8) (uint64, error) {
	return pow10(decimals)
}

func pow10(exp uint8) (uint64, error) {
	result := uint64(1)
	for i := uint8(0); i < exp; i++ {
		var overflow bool
		result, overflow = math.SafeMul(result, 10)
		if overflow {
			return 0, ErrMathOverflow
		}
	}
	return result, nil
}

// ScaleAmount multiplies a whole-unit amount by 10^decimals.
func ScaleAmount(raw uint64, decimals uint8) (uint64, error) {
	unit, err := pow10(decimals)
	if err != nil {
		return 0, err
	}
	scaled, overflow := math.SafeMul(raw, unit)
	if overflow {
		return 0, ErrMathOverflow
	}
	return scaled, nil
}
