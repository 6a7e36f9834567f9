package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/internal/chain"
	"github.com/fd1az/bridge-screener/internal/config"
)

func newTestLoop(t *testing.T, jobs []domain.Job, q quoteFunc) (*Loop, *recordingAlerter, *nopReporter) {
	t.Helper()

	alerter := &recordingAlerter{}
	reporter := &nopReporter{}
	l, err := NewLoop(jobs, 0, LoopDeps{
		Dispatcher: newTestDispatcher(q, time.Second),
		Alerter:    alerter,
		Reporter:   reporter,
		Logger:     discard(),
		AlertLog:   discard(),
	})
	require.NoError(t, err)
	return l, alerter, reporter
}

func TestLoop_USDCEndToEnd(t *testing.T) {
	coins := map[string]config.Coin{
		"USDC": {
			SwapAmount: []float64{100, 1000},
			Arbitrage:  5,
			Networks: map[string]config.Network{
				"a": {Decimals: 6, ChainID: 1, Token: "USDC"},
				"b": {Decimals: 6, ChainID: 10, Token: "USDC"},
			},
		},
	}
	jobs, err := Expand(coins, nil, chain.DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	l, alerter, reporter := newTestLoop(t, jobs[:1], table(map[string]string{"100": "106", "1000": "990"}))

	first := l.RunOnce(context.Background())
	require.Equal(t, 1, alerter.count())
	rec := alerter.records[0]
	assert.Equal(t, domain.RecordID("Ethereum", "Optimism", dec("6.0")), rec.ID)
	assert.Equal(t, "6", rec.Arbitrage.String())
	assert.Equal(t, 1, first.New)

	second := l.RunOnce(context.Background())
	assert.Equal(t, 1, alerter.count(), "identical iteration must not alert again")
	assert.Zero(t, second.New)
	assert.Equal(t, 1, second.Records)

	require.Len(t, reporter.iterations, 2)
	assert.Equal(t, uint64(1), reporter.iterations[1].Number)
}

func TestLoop_ForgetsRecordsAbsentFromLastIteration(t *testing.T) {
	responses := []map[string]string{
		{"100": "106"},
		{"100": "100"},
		{"100": "106"},
	}
	step := 0
	q := quoteFunc(func(ctx context.Context, amountIn decimal.Decimal, in, out bridgeDomain.Network) (decimal.Decimal, error) {
		return table(responses[step]).EstimateOutput(ctx, amountIn, in, out)
	})

	job := usdcJob(ethereum, optimism)
	job.Amounts = decs("100")
	l, alerter, _ := newTestLoop(t, []domain.Job{job}, q)

	for step = range responses {
		l.RunOnce(context.Background())
	}
	assert.Equal(t, 2, alerter.count(), "a record that disappears and returns is alerted again")
}

func TestLoop_QuoteDriftWithinOneUnitAlertsOnce(t *testing.T) {
	outputs := []string{"106.37", "106.41", "106.12"}
	step := 0
	q := quoteFunc(func(ctx context.Context, amountIn decimal.Decimal, in, out bridgeDomain.Network) (decimal.Decimal, error) {
		return table(map[string]string{"100": outputs[step]}).EstimateOutput(ctx, amountIn, in, out)
	})

	job := usdcJob(ethereum, optimism)
	job.Amounts = decs("100")
	l, alerter, _ := newTestLoop(t, []domain.Job{job}, q)

	for step = range outputs {
		l.RunOnce(context.Background())
	}
	require.Equal(t, 1, alerter.count())
	assert.Equal(t, "6.37", alerter.records[0].Arbitrage.String(), "the alert keeps the token precision")
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	l, _, _ := newTestLoop(t, nil, table(nil))
	l.sleep = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_FreshnessCheck(t *testing.T) {
	l, _, _ := newTestLoop(t, nil, table(nil))

	ok, _ := l.FreshnessCheck(time.Minute)(context.Background())
	assert.True(t, ok)

	l.started = time.Now().Add(-2 * time.Minute)
	ok, msg := l.FreshnessCheck(time.Minute)(context.Background())
	assert.False(t, ok)
	assert.Contains(t, msg, "ago")

	l.RunOnce(context.Background())
	ok, _ = l.FreshnessCheck(time.Minute)(context.Background())
	assert.True(t, ok)
}
