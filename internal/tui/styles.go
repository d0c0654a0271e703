package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/checkcard/internal/stats"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#059669")).Bold(true)

	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	explainStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3B82F6"))

	optionBase     = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true)
	optionIdle     = optionBase.BorderForeground(lipgloss.Color("#4A4A4A")).Foreground(lipgloss.Color("#B0B0B0"))
	optionCursor   = optionBase.BorderForeground(lipgloss.Color("#3B82F6")).Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	optionRight    = optionBase.BorderForeground(lipgloss.Color("#059669")).Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#059669")).Bold(true)
	optionWrong    = optionBase.BorderForeground(lipgloss.Color("#DC2626")).Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#DC2626")).Bold(true)
	optionExpected = optionBase.BorderForeground(lipgloss.Color("#059669")).Foreground(lipgloss.Color("#059669"))
	optionDimmed   = optionBase.BorderForeground(lipgloss.Color("#2E2E2E")).Foreground(lipgloss.Color("#4A4A4A"))
)

func bandStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(stats.BandColors[stats.BandFor(percent)])
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#1E3A8A")).
		Bold(true)
	return styles
}
