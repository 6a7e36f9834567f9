// Package ui provides the Bubble Tea dashboard for the screener.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
)

// Styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	MutedValue = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	ScanningStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)

// Startup step styles, keyed by StartupMsg status.
var stepStyles = map[string]struct {
	icon, text string
	style      lipgloss.Style
}{
	"done":       {"✓", "Ready", lipgloss.NewStyle().Foreground(ColorSecondary)},
	"connecting": {"", "Working...", lipgloss.NewStyle().Foreground(ColorWarning)},
	"failed":     {"✗", "Failed", lipgloss.NewStyle().Foreground(ColorDanger)},
}
