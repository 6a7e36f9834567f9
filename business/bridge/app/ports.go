// Package app contains port definitions for the bridge context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/bridge-screener/business/bridge/domain"
)

// Quoter estimates what a bridge pays out for a transfer.
//
// Implementations return apperror values whose fault kind is transport or
// response, and must not retry beyond their own bounded transport budget.
type Quoter interface {
	// EstimateOutput returns the amount received on out, in human units,
	// for sending amountIn (human units) from in.
	EstimateOutput(ctx context.Context, amountIn decimal.Decimal, in, out domain.Network) (decimal.Decimal, error)
}
