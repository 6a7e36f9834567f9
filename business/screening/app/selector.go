package app

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/bridge-screener/business/screening/domain"
)

// DefaultMinDiff is the cluster gap used when none is configured.
var DefaultMinDiff = decimal.NewFromInt(5)

// Selector reduces a job's samples to at most one record.
type Selector struct {
	minDiff decimal.Decimal
	now     func() time.Time
}

// NewSelector creates a selector with the given cluster gap.
func NewSelector(minDiff decimal.Decimal) *Selector {
	return &Selector{minDiff: minDiff, now: time.Now}
}

// Select picks the representative arbitrage of samples.
//
// Distinct arbitrage values are sorted ascending and walked; every gap
// wider than minDiff moves the pick to the value after the gap, so the pick
// sits at the bottom of the highest cluster. The maximum replaces it only
// when it lies more than 2*minDiff above. The pick is rounded to
// decimalsIn/3 places and must reach the job's threshold.
func (s *Selector) Select(job domain.Job, samples []domain.Sample) (domain.Record, bool) {
	if len(samples) == 0 {
		return domain.Record{}, false
	}

	byArb := make(map[string]domain.Sample, len(samples))
	values := make([]decimal.Decimal, 0, len(samples))
	for _, sm := range samples {
		arb := sm.Arbitrage()
		k := arb.String()
		if _, dup := byArb[k]; !dup {
			values = append(values, arb)
		}
		byArb[k] = sm
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	current := values[0]
	for i := 1; i < len(values); i++ {
		if values[i].Sub(values[i-1]).GreaterThan(s.minDiff) {
			current = values[i]
		}
	}

	chosen := current
	if top := values[len(values)-1]; top.Sub(current).GreaterThan(s.minDiff.Mul(decimal.NewFromInt(2))) {
		chosen = top
	}

	precision := job.Precision()
	rounded := chosen.Round(precision)
	if rounded.LessThan(job.MinArbitrage) {
		return domain.Record{}, false
	}

	sm := byArb[chosen.String()]
	msg, term := domain.FormatMessages(s.now(), job, sm.AmountIn, sm.AmountOut, rounded)

	return domain.Record{
		ID:              domain.RecordID(job.In.Name, job.Out.Name, rounded),
		PairKey:         job.In.Name + job.Out.Name,
		Coin:            job.Coin,
		Arbitrage:       rounded,
		AmountIn:        sm.AmountIn,
		AmountOut:       sm.AmountOut,
		Message:         msg,
		TerminalMessage: term,
		Job:             job,
	}, true
}
