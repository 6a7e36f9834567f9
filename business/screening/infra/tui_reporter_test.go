package infra

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/pkg/ui"
)

func TestTUIReporter_TranslatesToMessages(t *testing.T) {
	var sent []any
	r := &TUIReporter{send: func(msg any) { sent = append(sent, msg) }}

	job := domain.Job{
		Coin:         "USDC",
		MinArbitrage: decimal.NewFromInt(5),
		Amounts:      amounts(100, 2000),
		In:           bridgeDomain.Network{Name: "Ethereum", Token: "USDC"},
		Out:          bridgeDomain.Network{Name: "Optimism", Token: "USDC"},
	}
	require.NoError(t, r.Start(context.Background(), []domain.Job{job}))
	r.ReportAlert(domain.Record{
		Coin:      "USDC",
		AmountIn:  decimal.NewFromInt(1500),
		AmountOut: decimal.NewFromInt(1510),
		Arbitrage: decimal.NewFromInt(10),
		Job:       job,
	})
	r.ReportIteration(app.IterationStats{Number: 4, New: 1, Duration: time.Second})

	require.Len(t, sent, 4)

	jobs, ok := sent[0].(ui.JobsMsg)
	require.True(t, ok)
	assert.Equal(t, "[100, 2k]", jobs.Rows[0].SwapAmounts)

	alert, ok := sent[2].(ui.AlertMsg)
	require.True(t, ok)
	assert.Equal(t, "Ethereum->Optimism", alert.Route)
	assert.Equal(t, "1,500 USDC", alert.AmountIn)
	assert.Equal(t, "1,510.00 USDC", alert.AmountOut)

	it, ok := sent[3].(ui.IterationMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(4), it.Number)
}
