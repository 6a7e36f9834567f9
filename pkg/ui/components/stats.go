package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds loop statistics for display.
type Stats struct {
	Iterations   uint64
	Jobs         int
	LastRecords  int
	LastNew      int
	TotalAlerts  int
	LastFaulted  int
	LastTimedOut int
	LastDuration time.Duration
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update replaces the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	count := func(n int) string {
		if n > 0 {
			return errorStyle.Render(fmt.Sprintf("%d", n))
		}
		return valueStyle.Render(fmt.Sprintf("%d", n))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Iterations: %s  │  Routes: %s  │  Records: %s  │  New: %s  │  Alerts total: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Iterations)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Jobs)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.LastRecords)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.LastNew)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.TotalAlerts)),
		) +
		fmt.Sprintf("Last loop: %s  │  Faulted: %s  │  Timed out: %s",
			valueStyle.Render(fmt.Sprintf("%.2fs", s.stats.LastDuration.Seconds())),
			count(s.stats.LastFaulted),
			count(s.stats.LastTimedOut),
		)
}
