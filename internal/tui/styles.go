package tui

import (
	"crypto_dash/pkg/format"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	cardLabel     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardValue     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	favValue      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	colHeader     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedRow   = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	inactiveTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	chartStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	searchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238")).Padding(0, 1)
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	iconStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// changeStyle colors a percentage by its sign.
func changeStyle(change *float64) lipgloss.Style {
	switch format.ChangeDirection(change) {
	case format.Positive:
		return gainStyle
	case format.Negative:
		return lossStyle
	default:
		return dimStyle
	}
}
