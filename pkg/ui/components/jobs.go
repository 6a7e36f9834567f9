package components

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// JobRow is one screened route.
type JobRow struct {
	Coin        string
	From        string
	To          string
	SwapAmounts string
	MinArb      string
}

// JobsComponent renders the screened routes.
type JobsComponent struct {
	rows    []JobRow
	visible int
}

// NewJobsComponent shows at most visible routes.
func NewJobsComponent(visible int) *JobsComponent {
	return &JobsComponent{visible: visible}
}

// Set replaces the routes.
func (j *JobsComponent) Set(rows []JobRow) {
	j.rows = rows
}

// Len returns the number of routes.
func (j *JobsComponent) Len() int {
	return len(j.rows)
}

// View renders the routes table.
func (j *JobsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	if len(j.rows) == 0 {
		return headerStyle.Render("ROUTES") + "\n\n" + muted.Render("Loading routes...")
	}

	shown := j.rows
	if len(shown) > j.visible {
		shown = shown[:j.visible]
	}

	rows := make([][]string, len(shown))
	for i, r := range shown {
		rows[i] = []string{strconv.Itoa(i), r.Coin, r.From, r.To, r.SwapAmounts, r.MinArb}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Token", "From", "To", "SwapAmounts", "MinArb").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cell
		})

	out := headerStyle.Render(fmt.Sprintf("ROUTES (%d)", len(j.rows))) + "\n" + t.String()
	if hidden := len(j.rows) - len(shown); hidden > 0 {
		out += "\n" + muted.Render(fmt.Sprintf("  ... %d more", hidden))
	}
	return out
}
