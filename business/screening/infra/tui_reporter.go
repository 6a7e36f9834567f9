package infra

import (
	"context"
	"time"

	"github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
	"github.com/fd1az/bridge-screener/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter for the Bubble Tea dashboard.
type TUIReporter struct {
	send func(msg any)
}

// NewTUIReporter creates a TUIReporter that feeds the running program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{send: func(msg any) { ui.Send(msg) }}
}

// Start sends the job table and marks startup complete.
func (r *TUIReporter) Start(ctx context.Context, jobs []domain.Job) error {
	rows := make([]ui.JobRow, len(jobs))
	for i, j := range jobs {
		rows[i] = ui.JobRow{
			Coin:        j.Coin,
			From:        j.In.Name,
			To:          j.Out.Name,
			SwapAmounts: SwapAmounts(j.Amounts),
			MinArb:      j.MinArbitrage.String(),
		}
	}
	r.send(ui.JobsMsg{Rows: rows})
	r.send(ui.StartupMsg{Step: "jobs", Status: "done"})
	return nil
}

// ReportAlert sends the record to the alerts panel.
func (r *TUIReporter) ReportAlert(rec domain.Record) {
	r.send(ui.AlertMsg{
		Time:      time.Now(),
		Coin:      rec.Coin,
		Route:     rec.Job.Route().Key(),
		AmountIn:  domain.Grouped(rec.AmountIn, -1) + " " + rec.Job.In.Token,
		AmountOut: domain.Grouped(rec.AmountOut, 2) + " " + rec.Job.Out.Token,
		Arbitrage: rec.Arbitrage,
		Token:     rec.Job.Out.Token,
	})
}

// ReportIteration sends the iteration stats to the status bar.
func (r *TUIReporter) ReportIteration(s app.IterationStats) {
	r.send(ui.IterationMsg{
		Number:   s.Number,
		Jobs:     s.Jobs,
		Records:  s.Records,
		New:      s.New,
		Faulted:  s.Faulted,
		TimedOut: s.TimedOut,
		Duration: s.Duration,
		Finished: s.Finished,
	})
}

// Stop is a no-op; the program exits with the process.
func (r *TUIReporter) Stop() error {
	return nil
}
