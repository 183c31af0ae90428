package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// One Dark Pro color palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorFgComment = lipgloss.Color("#5C6370")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")

	ColorBorder = lipgloss.Color("#3F4451")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	AgentNameStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	QuestionStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorYellow).
			PaddingLeft(1)

	AnsweredStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorGreen).
			Foreground(ColorFgComment).
			PaddingLeft(1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)

// StateStyle returns the style used to render an agent state.
func StateStyle(s models.AgentState) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case models.StateStarted:
		return base.Foreground(ColorCyan)
	case models.StateWorking:
		return base.Foreground(ColorYellow)
	case models.StateComplete:
		return base.Foreground(ColorGreen)
	case models.StateError:
		return base.Foreground(ColorRed).Bold(true)
	case models.StateBlocked:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorFgPrimary)
	}
}
