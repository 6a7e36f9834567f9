// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// AlertRow is one surfaced arbitrage in the list.
type AlertRow struct {
	Time      string
	Coin      string
	Route     string
	AmountIn  string
	AmountOut string
	Arbitrage decimal.Decimal
	Token     string
}

// AlertsComponent renders the newest alerts first.
type AlertsComponent struct {
	rows    []AlertRow
	maxRows int
	visible int
	offset  int
}

// NewAlertsComponent keeps up to maxRows alerts and shows visible of them.
func NewAlertsComponent(maxRows, visible int) *AlertsComponent {
	return &AlertsComponent{
		rows:    make([]AlertRow, 0),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add prepends an alert.
func (a *AlertsComponent) Add(row AlertRow) {
	a.rows = append([]AlertRow{row}, a.rows...)
	if len(a.rows) > a.maxRows {
		a.rows = a.rows[:a.maxRows]
	}
	a.offset = 0
}

// Len returns the number of stored alerts.
func (a *AlertsComponent) Len() int {
	return len(a.rows)
}

// Clear drops all alerts.
func (a *AlertsComponent) Clear() {
	a.rows = make([]AlertRow, 0)
	a.offset = 0
}

// ScrollUp moves the window toward newer alerts.
func (a *AlertsComponent) ScrollUp() {
	if a.offset > 0 {
		a.offset--
	}
}

// ScrollDown moves the window toward older alerts.
func (a *AlertsComponent) ScrollDown() {
	if a.offset+a.visible < len(a.rows) {
		a.offset++
	}
}

// View renders the alerts table.
func (a *AlertsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	if len(a.rows) == 0 {
		return headerStyle.Render("ALERTS") + "\n\nNo arbitrage above threshold yet..."
	}

	positive := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Padding(0, 1)
	negative := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	end := min(a.offset+a.visible, len(a.rows))
	window := a.rows[a.offset:end]

	rows := make([][]string, len(window))
	for i, r := range window {
		rows[i] = []string{r.Time, r.Coin, r.Route, r.AmountIn, r.AmountOut, r.Arbitrage.String() + " " + r.Token}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Time", "Coin", "Route", "In", "Out", "Arbitrage").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 5 {
				if window[row].Arbitrage.IsNegative() {
					return negative
				}
				return positive
			}
			return cell
		})

	title := fmt.Sprintf("ALERTS (%d-%d of %s)", a.offset+1, end, strconv.Itoa(len(a.rows)))
	return headerStyle.Render(title) + "\n" + t.String()
}
