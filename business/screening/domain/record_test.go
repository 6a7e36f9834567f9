package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeDomain "github.com/fd1az/bridge-screener/business/bridge/domain"
)

func rec(id, coin string) Record {
	return Record{ID: id, Coin: coin, PairKey: "EthereumOptimism", AmountIn: decimal.NewFromInt(100)}
}

func set(records ...Record) RecordSet {
	s := make(RecordSet)
	for _, r := range records {
		s.Add(r)
	}
	return s
}

func TestComplement_SelfIsEmpty(t *testing.T) {
	s := set(rec("a", "USDC"), rec("b", "USDC"), rec("c", "ETH"))
	assert.Empty(t, Complement(s, s))
}

func TestComplement_RelativeComplement(t *testing.T) {
	prev := set(rec("a", "USDC"), rec("b", "USDC"))
	cur := set(rec("b", "USDC"), rec("c", "USDC"), rec("d", "ETH"))

	got := Complement(prev, cur)

	require.Len(t, got, 2)
	assert.Contains(t, got, "c")
	assert.Contains(t, got, "d")
	for id := range got {
		assert.Contains(t, cur, id)
		assert.NotContains(t, prev, id)
	}
}

func TestComplement_EmptyPrevious(t *testing.T) {
	cur := set(rec("a", "USDC"))
	assert.Equal(t, cur, Complement(nil, cur))
	assert.Empty(t, Complement(cur, nil))
}

func TestRecordSet_AddLastWriteWins(t *testing.T) {
	s := make(RecordSet)
	s.Add(Record{ID: "x", AmountIn: decimal.NewFromInt(100)})
	s.Add(Record{ID: "x", AmountIn: decimal.NewFromInt(1000)})

	require.Len(t, s, 1)
	assert.True(t, s["x"].AmountIn.Equal(decimal.NewFromInt(1000)))
}

func TestRecordSet_Sorted(t *testing.T) {
	s := set(
		Record{ID: "3", Coin: "USDC", PairKey: "OptimismEthereum"},
		Record{ID: "1", Coin: "ETH", PairKey: "EthereumOptimism"},
		Record{ID: "2", Coin: "USDC", PairKey: "EthereumOptimism"},
	)

	var ids []string
	for _, r := range s.Sorted() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestRecordID(t *testing.T) {
	six := decimal.NewFromInt(6)

	id := RecordID("Ethereum", "Optimism", six)
	assert.Len(t, id, 64)

	want := sha256.Sum256([]byte("EthereumOptimism6.0"))
	assert.Equal(t, hex.EncodeToString(want[:]), id)

	for _, v := range []string{"6.000", "6.37", "6.41", "5.5", "6.5", "5.61"} {
		assert.Equal(t, id, RecordID("Ethereum", "Optimism", decimal.RequireFromString(v)), v)
	}
	assert.NotEqual(t, id, RecordID("Optimism", "Ethereum", six))
	assert.NotEqual(t, id, RecordID("Ethereum", "Optimism", decimal.RequireFromString("6.51")))
	assert.NotEqual(t, id, RecordID("Ethereum", "Optimism", decimal.RequireFromString("7.5")))
}

func TestSpecialRouting_Matches(t *testing.T) {
	sr := &SpecialRouting{MaxSwapAmount: decimal.NewFromInt(1000), Coins: []string{"USDC"}}

	assert.True(t, sr.Matches("USDC", decimal.NewFromInt(1000)))
	assert.True(t, sr.Matches("USDC", decimal.NewFromInt(10)))
	assert.False(t, sr.Matches("USDC", decimal.NewFromInt(1001)))
	assert.False(t, sr.Matches("ETH", decimal.NewFromInt(10)))

	var none *SpecialRouting
	assert.False(t, none.Matches("USDC", decimal.NewFromInt(10)))
}

func TestJob_Precision(t *testing.T) {
	assert.Equal(t, int32(6), Job{In: bridgeDomain.Network{Decimals: 18}}.Precision())
	assert.Equal(t, int32(2), Job{In: bridgeDomain.Network{Decimals: 6}}.Precision())
	assert.Equal(t, int32(2), Job{In: bridgeDomain.Network{Decimals: 8}}.Precision())
}

func TestGrouped(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"0", -1, "0"},
		{"100", -1, "100"},
		{"1000", -1, "1,000"},
		{"-1234567.891", -1, "-1,234,567.891"},
		{"999999", 2, "999,999.00"},
		{"999.999", 2, "1,000.00"},
		{"12345678901234", -1, "12,345,678,901,234"},
		{"123456789012345678901234.5", 1, "123,456,789,012,345,678,901,234.5"},
		{"-0.5", 2, "-0.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grouped(decimal.RequireFromString(tt.in), tt.places), tt.in)
	}
}

func TestFormatMessages(t *testing.T) {
	job := Job{
		Coin: "USDC",
		In:   bridgeDomain.Network{Name: "Ethereum", Decimals: 6, Token: "USDC"},
		Out:  bridgeDomain.Network{Name: "Optimism", Decimals: 6, Token: "USDC"},
	}
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	htmlMsg, term := FormatMessages(ts, job,
		decimal.NewFromInt(1500), decimal.RequireFromString("1512.345"), decimal.RequireFromString("12.35"))

	assert.True(t, strings.HasPrefix(htmlMsg, "2024-03-01 12:30:00 - Synapse API\n"))
	assert.Contains(t, htmlMsg, "Sell 1,500 USDC for 1,512.35 USDC, Ethereum -> Optimism")
	assert.Contains(t, htmlMsg, "<a href='https://synapseprotocol.com'>12.35 USDC</a>")
	assert.Equal(t, "Sell 1,500 USDC for 1,512.35 USDC, Ethereum -> Optimism; --->Arbitrage: 12.35 USDC", term)
}
