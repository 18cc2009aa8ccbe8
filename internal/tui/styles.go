package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/day"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
	colorVacation  = lipgloss.Color("#2EC4B6")
	colorSick      = lipgloss.Color("#FF6B6B")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Timer display
	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg).
			Align(lipgloss.Center)

	timerIdleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMuted).
			Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Calendar day cells
	dayNoneStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	dayNormalStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	dayOvertimeStyle = lipgloss.NewStyle().
				Foreground(colorWarning)

	dayVacationStyle = lipgloss.NewStyle().
				Foreground(colorVacation)

	daySickStyle = lipgloss.NewStyle().
			Foreground(colorSick)

	daySelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Reverse(true)

	dayTodayStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

// dayStyle maps a day bucket to its calendar cell style.
func dayStyle(kind day.Kind) lipgloss.Style {
	switch kind {
	case day.KindNormal:
		return dayNormalStyle
	case day.KindOvertime:
		return dayOvertimeStyle
	case day.KindVacation:
		return dayVacationStyle
	case day.KindSick:
		return daySickStyle
	}
	return dayNoneStyle
}

// kindColor is the chart/legend color of a day bucket.
func kindColor(kind day.Kind) lipgloss.Color {
	switch kind {
	case day.KindNormal:
		return colorSuccess
	case day.KindOvertime:
		return colorWarning
	case day.KindVacation:
		return colorVacation
	case day.KindSick:
		return colorSick
	}
	return colorSubtle
}
