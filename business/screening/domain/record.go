package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/shopspring/decimal"
)

// Record is the selected arbitrage for one job in one iteration.
type Record struct {
	// ID is the dedup key, see RecordID.
	ID string
	// PairKey concatenates the source and destination chain names.
	PairKey   string
	Coin      string
	Arbitrage decimal.Decimal
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	// Message is the HTML alert text.
	Message string
	// TerminalMessage is the plain one-line form used in logs and the console.
	TerminalMessage string
	// Job is kept for alert routing.
	Job Job
}

// RecordID hashes the chain names and the arbitrage rounded half-to-even
// to whole units, rendered as "6.0". Quotes that drift by a few cents keep
// the same ID, and two jobs of one pair that round alike share it.
func RecordID(inName, outName string, arbitrage decimal.Decimal) string {
	sum := sha256.Sum256([]byte(inName + outName + arbitrage.RoundBank(0).StringFixed(1)))
	return hex.EncodeToString(sum[:])
}

// RecordSet holds one iteration's records keyed by ID.
type RecordSet map[string]Record

// Add stores r, replacing any record with the same ID.
func (s RecordSet) Add(r Record) {
	s[r.ID] = r
}

// Sorted returns the records ordered by coin, pair, then amount in, so
// alerts go out in a stable order.
func (s RecordSet) Sorted() []Record {
	out := make([]Record, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Coin != b.Coin {
			return a.Coin < b.Coin
		}
		if a.PairKey != b.PairKey {
			return a.PairKey < b.PairKey
		}
		if !a.AmountIn.Equal(b.AmountIn) {
			return a.AmountIn.LessThan(b.AmountIn)
		}
		return a.ID < b.ID
	})
	return out
}

// Complement returns the records of current whose ID is not in previous.
func Complement(previous, current RecordSet) RecordSet {
	out := make(RecordSet)
	for id, r := range current {
		if _, seen := previous[id]; !seen {
			out[id] = r
		}
	}
	return out
}
