package domain

import "github.com/shopspring/decimal"

// Sample is one (amountIn, amountOut) observation, in human units.
type Sample struct {
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
}

// Arbitrage is what the swap gains in the output token.
func (s Sample) Arbitrage() decimal.Decimal {
	return s.AmountOut.Sub(s.AmountIn)
}
