package infra

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
)

func amounts(vals ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestSwapAmounts(t *testing.T) {
	assert.Equal(t, "[100, 1000, 2k, 50k, 1k]", SwapAmounts(append(amounts(100, 1000, 2000, 50000), decimal.NewFromInt(1500))))
	assert.Equal(t, "[0.5]", SwapAmounts([]decimal.Decimal{decimal.RequireFromString("0.5")}))
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &ConsoleReporter{out: &buf, appName: "bridge-screener"}

	job := domain.Job{
		Coin:         "USDC",
		MinArbitrage: decimal.NewFromInt(5),
		Amounts:      amounts(100, 20000),
		In:           bridgeDomain.Network{Name: "Ethereum"},
		Out:          bridgeDomain.Network{Name: "Optimism"},
	}
	require.NoError(t, r.Start(context.Background(), []domain.Job{job}))

	out := buf.String()
	assert.Contains(t, out, "Started screening")
	for _, want := range []string{"Token", "SwapAmounts", "USDC", "Ethereum", "Optimism", "[100, 20k]"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	r.ReportAlert(domain.Record{TerminalMessage: "Sell 100 USDC for 106.00 USDC"})
	r.ReportIteration(app.IterationStats{Number: 3, Jobs: 2, Records: 1, New: 1, Duration: 1500 * time.Millisecond, Finished: time.Now()})
	require.NoError(t, r.Stop())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasSuffix(lines[0], "Sell 100 USDC for 106.00 USDC"))
	assert.Contains(t, lines[1], "iteration 3: 2 jobs, 1 records, 1 new")
	assert.Contains(t, lines[1], "(1.50s)")
	assert.Equal(t, "bridge-screener stopped", lines[len(lines)-1])
}
