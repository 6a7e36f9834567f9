package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/logger"
)

func discard() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decs(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		out[i] = dec(s)
	}
	return out
}

var (
	ethereum = bridgeDomain.Network{Key: "ethereum", Name: "Ethereum", ChainID: 1, Decimals: 6, Token: "USDC"}
	optimism = bridgeDomain.Network{Key: "optimism", Name: "Optimism", ChainID: 10, Decimals: 6, Token: "USDC"}
)

func usdcJob(in, out bridgeDomain.Network) domain.Job {
	return domain.Job{
		Coin:         "USDC",
		MinArbitrage: dec("5"),
		Amounts:      decs("100", "1000"),
		In:           in,
		Out:          out,
	}
}

// quoteFunc adapts a function to the bridge quoter port.
type quoteFunc func(ctx context.Context, amountIn decimal.Decimal, in, out bridgeDomain.Network) (decimal.Decimal, error)

func (f quoteFunc) EstimateOutput(ctx context.Context, amountIn decimal.Decimal, in, out bridgeDomain.Network) (decimal.Decimal, error) {
	return f(ctx, amountIn, in, out)
}

// table answers from a fixed amountIn -> amountOut map.
func table(m map[string]string) quoteFunc {
	return func(_ context.Context, amountIn decimal.Decimal, _, _ bridgeDomain.Network) (decimal.Decimal, error) {
		if out, ok := m[amountIn.String()]; ok {
			return dec(out), nil
		}
		return amountIn, nil
	}
}

type recordingAlerter struct {
	mu      sync.Mutex
	records []domain.Record
}

func (a *recordingAlerter) Alert(_ context.Context, rec domain.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

type nopReporter struct {
	iterations []IterationStats
}

func (r *nopReporter) Start(context.Context, []domain.Job) error { return nil }
func (r *nopReporter) ReportAlert(domain.Record)                 {}
func (r *nopReporter) ReportIteration(s IterationStats)          { r.iterations = append(r.iterations, s) }
func (r *nopReporter) Stop() error                               { return nil }

func newTestDispatcher(q quoteFunc, maxWait time.Duration) *Dispatcher {
	d, err := NewDispatcher(q, NewSelector(DefaultMinDiff), DispatcherConfig{MaxWait: maxWait}, discard(), discard())
	if err != nil {
		panic(err)
	}
	return d
}
