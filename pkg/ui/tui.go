package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/bridge-screener/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading modules
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// BridgeService is the status name of the estimate API.
const BridgeService = "Bridge API"

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "done", "failed"
}

var stepOrder = []string{"config", "bridge", "telegram", "jobs"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	alerts   *components.AlertsComponent
	jobs     *components.JobsComponent
	stats    *components.StatsComponent
	services *components.StatusComponent

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	phase        Phase
	welcomeStart time.Time
	startupTime  time.Time
	startupSteps map[string]*StartupStep

	quitting     bool
	width        int
	height       int
	lastFinished time.Time
	errors       []ErrorEntry // last 3
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = ScanningStyle

	return Model{
		alerts:       components.NewAlertsComponent(200, 12),
		jobs:         components.NewJobsComponent(12),
		stats:        components.NewStatsComponent(),
		services:     components.NewStatusComponent(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		phase:        PhaseWelcome,
		welcomeStart: now,
		startupTime:  now,
		startupSteps: map[string]*StartupStep{
			"config":   {Name: "Loading configuration", Status: "pending"},
			"bridge":   {Name: "Preparing bridge client", Status: "pending"},
			"telegram": {Name: "Preparing Telegram notifier", Status: "pending"},
			"jobs":     {Name: "Expanding routes", Status: "pending"},
		},
		errors: make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m *Model) enterStartup() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.enterStartup()
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.alerts.Clear()
		case key.Matches(msg, m.keys.Up):
			m.alerts.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.alerts.ScrollDown()
		case key.Matches(msg, m.keys.Errors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.enterStartup()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}

	case JobsMsg:
		m.jobs.Set(msg.Rows)
		m.phase = PhaseDashboard

	case AlertMsg:
		m.alerts.Add(components.AlertRow{
			Time:      msg.Time.Format("15:04:05"),
			Coin:      msg.Coin,
			Route:     msg.Route,
			AmountIn:  msg.AmountIn,
			AmountOut: msg.AmountOut,
			Arbitrage: msg.Arbitrage,
			Token:     msg.Token,
		})
		s := m.stats.Stats()
		s.TotalAlerts++
		m.stats.Update(s)

	case IterationMsg:
		s := m.stats.Stats()
		s.Iterations = msg.Number + 1
		s.Jobs = msg.Jobs
		s.LastRecords = msg.Records
		s.LastNew = msg.New
		s.LastFaulted = msg.Faulted
		s.LastTimedOut = msg.TimedOut
		s.LastDuration = msg.Duration
		m.stats.Update(s)
		m.lastFinished = msg.Finished

		answered := msg.Jobs - msg.Faulted - msg.TimedOut
		m.services.Update(components.ServiceStatus{
			Name:   BridgeService,
			Up:     msg.Jobs == 0 || answered > 0,
			Detail: fmt.Sprintf("%d/%d routes", answered, msg.Jobs),
		})

	case ServiceStatusMsg:
		m.services.Update(components.ServiceStatus{Name: msg.Name, Up: msg.Up, Detail: msg.Detail})

	case ErrorMsg:
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" 🌉 Bridge Arbitrage Screener "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	left := m.jobs.View()
	right := m.alerts.View()
	if m.width > 140 {
		l := BoxStyle.Width(m.width/2 - 2).Render(left)
		r := BoxStyle.Width(m.width/2 - 2).Render(right)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, l, r))
	} else {
		width := max(m.width-4, 40)
		b.WriteString(BoxStyle.Width(width).Render(right))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(left))
	}
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(m.stats.View()))
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorDanger).Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.spinner.View() + ScanningStyle.Render(" Screening")}

	if svc := m.services.View(); svc != "" {
		parts = append(parts, svc)
	}

	if !m.lastFinished.IsZero() {
		ago := time.Since(m.lastFinished).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Last loop: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	goldStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	logo := `
   ██████╗ ██████╗ ██╗██████╗  ██████╗ ███████╗
   ██╔══██╗██╔══██╗██║██╔══██╗██╔════╝ ██╔════╝
   ██████╔╝██████╔╝██║██║  ██║██║  ███╗█████╗
   ██╔══██╗██╔══██╗██║██║  ██║██║   ██║██╔══╝
   ██████╔╝██║  ██║██║██████╔╝╚██████╔╝███████╗
   ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚══════╝
`
	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("            S C R E E N E R"))
	sb.WriteString("\n\n\n")
	sb.WriteString(goldStyle.Render("       🌉  Cross-chain arbitrage watch  🌉"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("              Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("        Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  🌉 Bridge Arbitrage Screener"))
	sb.WriteString("\n\n  Starting up...\n\n")

	for _, k := range stepOrder {
		step := m.startupSteps[k]

		icon, text, style := "○", "Pending", MutedValue
		if st, ok := stepStyles[step.Status]; ok {
			icon, text, style = st.icon, st.text, st.style
			if icon == "" {
				icon = m.spinner.View()
			}
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n", style.Render(icon), MutedValue.Render(step.Name), style.Render(text)))
	}

	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startupTime).Round(time.Second))))
	sb.WriteString("\n")

	for _, err := range m.errors {
		sb.WriteString(ErrorStyle.Render("  • " + err.Message))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
