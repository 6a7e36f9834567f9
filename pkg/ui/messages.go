package ui

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/bridge-screener/pkg/ui/components"
)

// Message types for TUI updates

// JobRow is one screened route.
type JobRow = components.JobRow

// JobsMsg carries the routes screened every iteration.
type JobsMsg struct {
	Rows []JobRow
}

// AlertMsg is sent when a new arbitrage record surfaces.
type AlertMsg struct {
	Time      time.Time
	Coin      string
	Route     string
	AmountIn  string
	AmountOut string
	Arbitrage decimal.Decimal
	Token     string
}

// IterationMsg is sent when a loop iteration finishes.
type IterationMsg struct {
	Number   uint64
	Jobs     int
	Records  int
	New      int
	Faulted  int
	TimedOut int
	Duration time.Duration
	Finished time.Time
}

// ServiceStatusMsg reports an outside service's state.
type ServiceStatusMsg struct {
	Name   string
	Up     bool
	Detail string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step   string // "config", "bridge", "telegram", "jobs"
	Status string // "connecting", "done", "failed"
}
