package app

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
	"github.com/fd1az/bridge-screener/business/screening/domain"
)

// samplesWithArbs builds samples whose arbitrage equals each value, using
// distinct input amounts.
func samplesWithArbs(arbs ...int64) []domain.Sample {
	out := make([]domain.Sample, len(arbs))
	for i, a := range arbs {
		in := decimal.NewFromInt(int64(1000 * (i + 1)))
		out[i] = domain.Sample{AmountIn: in, AmountOut: in.Add(decimal.NewFromInt(a))}
	}
	return out
}

func lowThresholdJob() domain.Job {
	j := usdcJob(ethereum, optimism)
	j.MinArbitrage = dec("-1000")
	return j
}

func TestSelect_Empty(t *testing.T) {
	_, ok := NewSelector(DefaultMinDiff).Select(lowThresholdJob(), nil)
	assert.False(t, ok)
}

func TestSelect_ClusterRule(t *testing.T) {
	tests := []struct {
		name string
		arbs []int64
		want string
	}{
		{"dense cluster keeps its floor, max suppressed", []int64{10, 14, 18}, "10"},
		{"dense spread wider than twice the gap trusts max", []int64{10, 14, 18, 22}, "22"},
		{"outlier after a jump is the new cluster", []int64{10, 11, 12, 50}, "50"},
		{"last jump wins", []int64{-10, 6}, "6"},
		{"top cluster floor within twice the gap", []int64{0, 10, 14}, "10"},
		{"single sample", []int64{7}, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := NewSelector(DefaultMinDiff).Select(lowThresholdJob(), samplesWithArbs(tt.arbs...))
			require.True(t, ok)
			assert.True(t, rec.Arbitrage.Equal(dec(tt.want)), "got %s", rec.Arbitrage)
		})
	}
}

func TestSelect_LaterDuplicateArbitrageWins(t *testing.T) {
	samples := []domain.Sample{
		{AmountIn: dec("100"), AmountOut: dec("110")},
		{AmountIn: dec("1000"), AmountOut: dec("1010")},
	}
	rec, ok := NewSelector(DefaultMinDiff).Select(lowThresholdJob(), samples)
	require.True(t, ok)
	assert.True(t, rec.AmountIn.Equal(dec("1000")))
}

func TestSelect_Rounding(t *testing.T) {
	eth18 := bridgeDomain.Network{Name: "Ethereum", Decimals: 18, Token: "ETH"}
	arb18 := bridgeDomain.Network{Name: "Arbitrum", Decimals: 18, Token: "ETH"}

	job := domain.Job{Coin: "ETH", MinArbitrage: dec("0"), In: eth18, Out: arb18}
	rec, ok := NewSelector(DefaultMinDiff).Select(job, []domain.Sample{
		{AmountIn: dec("1"), AmountOut: dec("1.1234567891")},
	})
	require.True(t, ok)
	assert.Equal(t, "0.123457", rec.Arbitrage.String())

	job = usdcJob(ethereum, optimism)
	job.MinArbitrage = dec("0")
	rec, ok = NewSelector(DefaultMinDiff).Select(job, []domain.Sample{
		{AmountIn: dec("100"), AmountOut: dec("106.456")},
	})
	require.True(t, ok)
	assert.Equal(t, "6.46", rec.Arbitrage.String())
}

func TestSelect_ThresholdAppliesAfterRounding(t *testing.T) {
	job := usdcJob(ethereum, optimism)

	_, ok := NewSelector(DefaultMinDiff).Select(job, []domain.Sample{
		{AmountIn: dec("100"), AmountOut: dec("104.99")},
	})
	assert.False(t, ok)

	rec, ok := NewSelector(DefaultMinDiff).Select(job, []domain.Sample{
		{AmountIn: dec("100"), AmountOut: dec("104.996")},
	})
	require.True(t, ok)
	assert.Equal(t, "5", rec.Arbitrage.String())
}

func TestSelect_RecordFields(t *testing.T) {
	rec, ok := NewSelector(DefaultMinDiff).Select(usdcJob(ethereum, optimism), []domain.Sample{
		{AmountIn: dec("100"), AmountOut: dec("106")},
		{AmountIn: dec("1000"), AmountOut: dec("990")},
	})
	require.True(t, ok)

	assert.Equal(t, domain.RecordID("Ethereum", "Optimism", dec("6")), rec.ID)
	assert.Equal(t, "EthereumOptimism", rec.PairKey)
	assert.Equal(t, "USDC", rec.Coin)
	assert.True(t, rec.AmountIn.Equal(dec("100")))
	assert.True(t, rec.AmountOut.Equal(dec("106")))
	assert.Contains(t, rec.TerminalMessage, "Arbitrage: 6.00 USDC")
}
