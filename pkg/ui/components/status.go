package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ServiceStatus is the state of one outside service.
type ServiceStatus struct {
	Name   string
	Up     bool
	Detail string
}

// StatusComponent renders service states in insertion order.
type StatusComponent struct {
	services []ServiceStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		services: make([]ServiceStatus, 0),
	}
}

// Update sets a service's status.
func (s *StatusComponent) Update(status ServiceStatus) {
	for i, svc := range s.services {
		if svc.Name == status.Name {
			s.services[i] = status
			return
		}
	}
	s.services = append(s.services, status)
}

// Get returns the named service's status.
func (s *StatusComponent) Get(name string) (ServiceStatus, bool) {
	for _, svc := range s.services {
		if svc.Name == name {
			return svc, true
		}
	}
	return ServiceStatus{}, false
}

// View renders the services on one line.
func (s *StatusComponent) View() string {
	up := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	down := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	parts := make([]string, 0, len(s.services))
	for _, svc := range s.services {
		icon, style := "●", up
		if !svc.Up {
			icon, style = "○", down
		}
		text := icon + " " + svc.Name
		if svc.Detail != "" {
			text += fmt.Sprintf(" (%s)", svc.Detail)
		}
		parts = append(parts, style.Render(text))
	}
	return strings.Join(parts, "  │  ")
}
