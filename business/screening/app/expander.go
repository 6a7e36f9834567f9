package app

import (
	"fmt"
	"sort"
	"strings"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/apperror"
	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/config"
)

// Expand turns the coin schema into one job per ordered network pair:
// N networks give N*(N-1) jobs. Coins are visited by symbol and networks by
// key, so the result is deterministic. Swap amounts finer than a network's
// decimals are rejected here rather than on every iteration.
func Expand(coins map[string]config.Coin, special *config.SpecialRouting, chains *chain.Registry) ([]domain.Job, error) {
	if len(coins) == 0 {
		return nil, apperror.Config("no coins to screen")
	}

	var routing *domain.SpecialRouting
	if special != nil {
		routing = &domain.SpecialRouting{
			MaxSwapAmount: special.MaxSwapAmountDecimal(),
			Coins:         special.Coins,
		}
	}

	symbols := make([]string, 0, len(coins))
	for sym := range coins {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var jobs []domain.Job
	for _, sym := range symbols {
		coin := coins[sym]
		amounts := coin.SwapAmountsDecimal()
		if len(amounts) == 0 {
			return nil, apperror.Config(fmt.Sprintf("coins.%s.swapAmount is empty", sym))
		}

		keys := coin.NetworkKeys()
		networks := make([]bridgeDomain.Network, len(keys))
		for i, k := range keys {
			n := coin.Networks[k]
			networks[i] = bridgeDomain.Network{
				Key:      k,
				Name:     chains.Name(n.ChainID),
				ChainID:  n.ChainID,
				Decimals: n.Decimals,
				Token:    n.Token,
			}
			for _, a := range amounts {
				if _, err := chain.ToBaseUnits(a, n.Decimals); err != nil {
					return nil, apperror.New(apperror.CodeInvalidInput,
						apperror.WithCause(err),
						apperror.WithContext(fmt.Sprintf("coins.%s.networks.%s: swap amount %s", sym, k, a)))
				}
			}
		}

		for i, in := range networks {
			for j, out := range networks {
				if i == j {
					continue
				}
				jobs = append(jobs, domain.Job{
					Coin:         strings.ToUpper(sym),
					MinArbitrage: coin.ArbitrageDecimal(),
					Amounts:      amounts,
					In:           in,
					Out:          out,
					Special:      routing,
				})
			}
		}
	}

	return jobs, nil
}
