// Package domain contains the screening context's value types: jobs,
// samples, arbitrage records and the record set used for deduplication.
package domain

import (
	"slices"

	"github.com/shopspring/decimal"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
)

// Job is one ordered (coin, source network, destination network) query unit.
// Jobs are built once by the expander and never mutated.
type Job struct {
	Coin         string
	MinArbitrage decimal.Decimal
	// Amounts are sampled in order.
	Amounts []decimal.Decimal
	In      bridgeDomain.Network
	Out     bridgeDomain.Network
	Special *SpecialRouting
}

// Route returns the job's bridge route.
func (j Job) Route() bridgeDomain.Route {
	return bridgeDomain.Route{In: j.In, Out: j.Out}
}

// Key identifies the job for logs, e.g. "USDC Ethereum->Optimism".
func (j Job) Key() string {
	return j.Coin + " " + j.Route().Key()
}

// Precision is the number of places arbitrage is rounded to.
func (j Job) Precision() int32 {
	return j.In.Decimals / 3
}

// SpecialRouting is the cap and allow-list for the auxiliary alert channel.
type SpecialRouting struct {
	MaxSwapAmount decimal.Decimal
	Coins         []string
}

// Matches reports whether a swap of amountIn of coin goes to the special
// channel.
func (s *SpecialRouting) Matches(coin string, amountIn decimal.Decimal) bool {
	if s == nil {
		return false
	}
	return amountIn.LessThanOrEqual(s.MaxSwapAmount) && slices.Contains(s.Coins, coin)
}
