package styles

import (
	"github.com/charmbracelet/lipgloss"

	"plandeck/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Info      = lipgloss.Color("#60A5FA") // Blue
	White     = lipgloss.Color("#FFFFFF")

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Plan ids and paths
	PlanID = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	PathOld = lipgloss.NewStyle().
		Foreground(Muted).
		Strikethrough(true)

	PathNew = lipgloss.NewStyle().
		Foreground(Secondary)

	Arrow = lipgloss.NewStyle().
		Foreground(Muted).
		SetString(" → ")

	// Review pane
	Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Warning)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// StatusColor returns the color for a plan status
func StatusColor(s domain.Status) lipgloss.Color {
	switch s {
	case domain.StatusDone:
		return Secondary
	case domain.StatusInProgress:
		return Info
	case domain.StatusDeferred:
		return Warning
	case domain.StatusCancelled:
		return Muted
	default:
		return White
	}
}

// Status renders a status label in its color
func Status(s domain.Status) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render(string(s))
}

// PriorityColor returns the color for a priority; unset and maybe are muted
func PriorityColor(p domain.Priority) lipgloss.Color {
	switch p {
	case domain.PriorityUrgent:
		return Error
	case domain.PriorityHigh:
		return Warning
	case domain.PriorityMedium:
		return Info
	case domain.PriorityLow:
		return White
	default:
		return Muted
	}
}
