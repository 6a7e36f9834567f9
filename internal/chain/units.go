package chain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrTooManyDecimals is returned when an amount has more fractional digits
// than the token supports.
var ErrTooManyDecimals = errors.New("chain: too many decimal places for token")

// ToBaseUnits scales a human amount to the token's smallest unit.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (decimal.Decimal, error) {
	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%w: %s with %d decimals", ErrTooManyDecimals, amount, decimals)
	}
	return scaled.Truncate(0), nil
}

// FromBaseUnits scales a base-unit amount back to human units.
func FromBaseUnits(raw decimal.Decimal, decimals int32) decimal.Decimal {
	return raw.Shift(-decimals)
}
