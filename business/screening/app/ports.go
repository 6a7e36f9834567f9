// Package app contains the screening services (expander, selector,
// dispatcher, loop) and the ports they drive.
package app

import (
	"context"
	"time"

	"github.com/fd1az/bridge-screener/business/screening/domain"
)

// Alerter delivers a newly surfaced record. Delivery problems are the
// alerter's to log; they never reach the loop.
type Alerter interface {
	Alert(ctx context.Context, rec domain.Record)
}

// Reporter displays loop progress on the console or the TUI.
type Reporter interface {
	// Start shows the job table before the first iteration.
	Start(ctx context.Context, jobs []domain.Job) error

	// ReportAlert shows a newly surfaced record.
	ReportAlert(rec domain.Record)

	// ReportIteration shows the stats of a finished iteration.
	ReportIteration(stats IterationStats)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// IterationStats summarises one loop iteration.
type IterationStats struct {
	Number   uint64
	Jobs     int
	Records  int
	New      int
	Faulted  int
	TimedOut int
	Duration time.Duration
	Finished time.Time
}
