package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayplan/internal/timer"
)

// Palette. Work and study keep their colors across every view.
var (
	colorWork  = lipgloss.Color("#E0AF68")
	colorStudy = lipgloss.Color("#7DCFFF")
	colorBrand = lipgloss.Color("#BB9AF7")
	colorInk   = lipgloss.Color("#C0CAF5")
	colorDim   = lipgloss.Color("#565F89")
	colorLine  = lipgloss.Color("#3B4261")
	colorGood  = lipgloss.Color("#9ECE6A")
	colorWarn  = lipgloss.Color("#FF9E64")
	colorBad   = lipgloss.Color("#F7768E")
	colorFocus = lipgloss.Color("#7AA2F7")
)

var kindColors = map[timer.Kind]lipgloss.Color{
	timer.Work:  colorWork,
	timer.Study: colorStudy,
}

func kindStyle(k timer.Kind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(kindColors[k])
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLine).
			Padding(1, 2)
	// activePanelStyle frames a panel while a timer runs or a picker is open.
	activePanelStyle = panelStyle.BorderForeground(colorGood)

	timerStyle        = lipgloss.NewStyle().Bold(true).Foreground(colorInk).Align(lipgloss.Center)
	timerRunningStyle = timerStyle.Foreground(colorGood)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorInk)
	successStyle   = lipgloss.NewStyle().Foreground(colorGood)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle     = lipgloss.NewStyle().Foreground(colorBad)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	highlightStyle = lipgloss.NewStyle().Foreground(colorFocus)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorInk)

	// Calendar cells
	dayCellStyle     = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	selectedDayStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true).Reverse(true)
	todayStyle       = lipgloss.NewStyle().Foreground(colorGood).Bold(true)
	otherMonthStyle  = lipgloss.NewStyle().Foreground(colorLine)
)
