package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewCalendar
	viewReport
	viewSettings
)

var viewNames = []string{"Timer", "Calendar", "Report", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// sessionSavedMsg is emitted after a stopped timer session was confirmed
// into a time entry.
type sessionSavedMsg struct {
	entry store.TimeEntry
}

type entrySavedMsg struct{}
type entryDeletedMsg struct{}
type markerToggledMsg struct{}
type settingsSavedMsg struct{}

type transferDoneMsg struct {
	text string
}

// --- Helpers ---

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

// formatElapsed renders elapsed minutes as HH:MM for the big display.
func formatElapsed(minutes int) string {
	return timecalc.FormatMinutesToTime(minutes)
}

// formatNet renders net minutes, which may be negative, as e.g. "-00:30".
func formatNet(minutes int) string {
	if minutes < 0 {
		return "-" + timecalc.FormatMinutesToTime(-minutes)
	}
	return timecalc.FormatMinutesToTime(minutes)
}

func markerLabel(kind store.MarkerKind) string {
	switch kind {
	case store.MarkerVacation:
		return "Vacation day"
	case store.MarkerSick:
		return "Sick day"
	}
	return ""
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
