// Package infra contains the screening context's display adapters.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/fd1az/bridge-screener/business/screening/app"
	"github.com/fd1az/bridge-screener/business/screening/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

var thousand = decimal.NewFromInt(1000)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out     io.Writer
	appName string
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter(appName string) *ConsoleReporter {
	return &ConsoleReporter{out: os.Stdout, appName: appName}
}

// Start prints the job table.
func (r *ConsoleReporter) Start(ctx context.Context, jobs []domain.Job) error {
	fmt.Fprintf(r.out, "%s - Started screening:\n\n", time.Now().Format(domain.TimeFormat))
	fmt.Fprintln(r.out, JobTable(jobs))
	return nil
}

// ReportAlert prints the record's terminal line.
func (r *ConsoleReporter) ReportAlert(rec domain.Record) {
	fmt.Fprintf(r.out, "%s - %s\n", time.Now().Format(domain.TimeFormat), rec.TerminalMessage)
}

// ReportIteration prints a one-line summary.
func (r *ConsoleReporter) ReportIteration(s app.IterationStats) {
	fmt.Fprintf(r.out, "[%s] iteration %d: %d jobs, %d records, %d new, %d faulted, %d timed out (%.2fs)\n",
		s.Finished.Format("15:04:05"), s.Number, s.Jobs, s.Records, s.New, s.Faulted, s.TimedOut, s.Duration.Seconds())
}

// Stop prints the shutdown line.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintf(r.out, "%s stopped\n", r.appName)
	return nil
}

// JobTable renders jobs as an indexed table.
func JobTable(jobs []domain.Job) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = []string{
			strconv.Itoa(i),
			j.Coin,
			j.In.Name,
			j.Out.Name,
			SwapAmounts(j.Amounts),
			j.MinArbitrage.String(),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Token", "From", "To", "SwapAmounts", "MinArb").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	return t.String()
}

// SwapAmounts renders amounts above 1000 in thousands: [100, 2k, 50k].
func SwapAmounts(amounts []decimal.Decimal) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		if a.GreaterThan(thousand) {
			parts[i] = a.Div(thousand).Truncate(0).String() + "k"
		} else {
			parts[i] = a.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
