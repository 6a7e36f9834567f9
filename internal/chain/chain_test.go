package chain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRegistry_Name(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		id   uint64
		want string
	}{
		{IDEthereum, "Ethereum"},
		{IDOptimism, "Optimism"},
		{IDHarmony, "Harmony"},
		{999, "Chain 999"},
	}
	for _, tt := range tests {
		if got := r.Name(tt.id); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRegistry_IDsSorted(t *testing.T) {
	ids := DefaultRegistry().IDs()
	if len(ids) != 14 {
		t.Fatalf("len = %d, want 14", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("not sorted at %d: %v", i, ids)
		}
	}
}

func TestToBaseUnits(t *testing.T) {
	got, err := ToBaseUnits(decimal.RequireFromString("100.5"), 6)
	if err != nil {
		t.Fatalf("ToBaseUnits: %v", err)
	}
	if got.String() != "100500000" {
		t.Fatalf("got %s", got)
	}

	if _, err := ToBaseUnits(decimal.RequireFromString("0.0000001"), 6); !errors.Is(err, ErrTooManyDecimals) {
		t.Fatalf("err = %v, want ErrTooManyDecimals", err)
	}
}

func TestFromBaseUnits(t *testing.T) {
	got := FromBaseUnits(decimal.RequireFromString("1060000000000000000000"), 18)
	if !got.Equal(decimal.NewFromInt(1060)) {
		t.Fatalf("got %s", got)
	}
}
