package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/day"
	"github.com/mkrenz/stechuhr/internal/export"
	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timer"
)

// Transfer picker actions, in display order.
const (
	transferExportCSV = iota
	transferExportJSON
	transferImportCSV
	transferImportJSON
	transferRestoreJSON
)

var transferLabels = []string{
	"Export entries as CSV",
	"Export backup as JSON",
	"Import CSV (merge into existing)",
	"Import JSON (merge into existing)",
	"Restore JSON backup (replace everything)",
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	width  int
	height int

	activeView viewState
	showHelp   bool

	transferPicking bool
	transferCursor  int
	transferAction  int
	pathActive      bool
	pathInput       textinput.Model

	dashboard dashboardModel
	calendar  calendarModel
	reports   reportsModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(s *store.Store, tm *timer.Timer, days *day.Classifier) App {
	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.Placeholder = "/path/to/file"
	ti.CharLimit = 256

	return App{
		store:      s,
		activeView: viewTimer,
		dashboard:  newDashboardModel(s, tm, days),
		calendar:   newCalendarModel(s, days),
		reports:    newReportsModel(s, days),
		settings:   newSettingsModel(s),
		help:       h,
		pathInput:  ti,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.loadData(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.transferPicking {
			return a.updateTransferPicker(msg)
		}

		// If a child view is capturing input (form or note field), delegate first.
		if a.isInputActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Transfer):
			a.transferPicking = true
			a.transferCursor = 0
			a.pathActive = false
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCalendar
			return a, a.calendar.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReport
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The running timer only lives on the dashboard.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case sessionSavedMsg:
		a.status = fmt.Sprintf("Saved %s – %s", msg.entry.StartTime, msg.entry.EndTime)
		a.isErr = false
		return a.routeToAll(msg)

	case entrySavedMsg:
		a.status = "Entry saved"
		a.isErr = false
		return a.routeToAll(msg)

	case entryDeletedMsg:
		a.status = "Entry deleted"
		a.isErr = false
		return a.routeToAll(msg)

	case markerToggledMsg:
		a.status = "Marker updated"
		a.isErr = false
		return a.routeToAll(msg)

	case settingsSavedMsg:
		a.status = "Settings saved"
		a.isErr = false
		return a, a.settings.refresh()

	case transferDoneMsg:
		a.status = msg.text
		a.isErr = false
		return a.routeToAll(entrySavedMsg{})
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewReport:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

// routeToAll delivers data-changed messages to every view so stale
// panels refresh the next time they are shown.
func (a App) routeToAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	cmds = append(cmds, cmd)
	a.calendar, cmd = a.calendar.update(msg)
	cmds = append(cmds, cmd)
	a.reports, cmd = a.reports.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) isInputActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.dashboard.inputActive()
	case viewCalendar:
		return a.calendar.inputActive()
	case viewSettings:
		return a.settings.inputActive()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.dashboard.loadData()
	case viewCalendar:
		return a.calendar.refresh()
	case viewReport:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.dashboard.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewReport:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.transferPicking {
		content = a.renderTransferPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("stechuhr")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator stays visible on every tab.
	timerInfo := ""
	if a.dashboard.isRunning() {
		timerInfo = successStyle.Render(" ● " + formatElapsed(a.dashboard.elapsed()))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderTransferPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export / Import"))
	rows = append(rows, "")

	if a.pathActive {
		rows = append(rows, normalItemStyle.Render("  "+transferLabels[a.transferAction]))
		rows = append(rows, "")
		rows = append(rows, "  "+a.pathInput.View())
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  enter: import  esc: cancel"))
	} else {
		for i, label := range transferLabels {
			cursor := "  "
			style := normalItemStyle
			if i == a.transferCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(cursor+label))
		}
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))
	}

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateTransferPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.pathActive {
		switch msg.String() {
		case "esc":
			a.pathActive = false
			a.transferPicking = false
			return a, nil
		case "enter":
			path := strings.TrimSpace(a.pathInput.Value())
			a.pathActive = false
			a.transferPicking = false
			if path == "" {
				return a, errStatus("No file given")
			}
			return a, a.doImport(a.transferAction, path)
		}
		var cmd tea.Cmd
		a.pathInput, cmd = a.pathInput.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, keys.Up):
		if a.transferCursor > 0 {
			a.transferCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.transferCursor < len(transferLabels)-1 {
			a.transferCursor++
		}
	case key.Matches(msg, keys.Enter):
		switch a.transferCursor {
		case transferExportCSV, transferExportJSON:
			a.transferPicking = false
			return a, a.doExport(a.transferCursor)
		default:
			a.transferAction = a.transferCursor
			a.pathActive = true
			a.pathInput.SetValue("")
			return a, a.pathInput.Focus()
		}
	case key.Matches(msg, keys.Back):
		a.transferPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.store.AllEntries()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == transferExportCSV {
			path = filepath.Join(home, fmt.Sprintf("stechuhr-export-%s.csv", dateStr))
			if err := export.ToCSV(entries, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			vacation, err := a.store.MarkerDates(store.MarkerVacation)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			sick, err := a.store.MarkerDates(store.MarkerSick)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			path = filepath.Join(home, fmt.Sprintf("stechuhr-backup-%s.json", dateStr))
			if err := export.ToJSON(entries, vacation, sick, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return transferDoneMsg{text: "Exported to " + path}
	}
}

// doImport reads the file fully before any write, so a malformed file
// never changes the database.
func (a App) doImport(action int, path string) tea.Cmd {
	return func() tea.Msg {
		var (
			incoming []store.TimeEntry
			markers  *export.Imported
		)

		switch action {
		case transferImportCSV:
			entries, err := export.FromCSV(path)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
			}
			incoming = entries

		case transferImportJSON, transferRestoreJSON:
			imported, err := export.FromJSON(path)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
			}
			incoming = imported.Entries
			markers = &imported
		}

		// Restore swaps the whole collection; the marker sets follow suit.
		if action == transferRestoreJSON {
			if err := a.store.ReplaceEntries(incoming); err != nil {
				return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
			}
			if markers.HasMarkers {
				if err := a.store.ReplaceMarkers(store.MarkerVacation, markers.VacationDays); err != nil {
					return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
				}
				if err := a.store.ReplaceMarkers(store.MarkerSick, markers.SickDays); err != nil {
					return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
				}
			}
			return transferDoneMsg{text: fmt.Sprintf("Restored %d entries from %s", len(incoming), filepath.Base(path))}
		}

		// Merge adds only what is missing; the existing collection and
		// locally-set markers stay put.
		existing, err := a.store.AllEntries()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
		}
		fresh := export.Merge(existing, incoming)
		for _, e := range fresh {
			if _, err := a.store.AddEntry(e); err != nil {
				return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
			}
		}

		if markers != nil && markers.HasMarkers {
			if err := a.mergeMarkers(markers); err != nil {
				return statusMsg{text: fmt.Sprintf("Import failed: %v", err), isError: true}
			}
		}

		if len(fresh) == 0 {
			return transferDoneMsg{text: "No new entries in " + filepath.Base(path)}
		}
		return transferDoneMsg{text: fmt.Sprintf("Merged %d new entries from %s", len(fresh), filepath.Base(path))}
	}
}

// mergeMarkers unions the imported marker dates into the local sets. A
// date that already carries either marker keeps it.
func (a App) mergeMarkers(imported *export.Imported) error {
	taken := make(map[string]bool)
	for _, kind := range []store.MarkerKind{store.MarkerVacation, store.MarkerSick} {
		dates, err := a.store.MarkerDates(kind)
		if err != nil {
			return err
		}
		for _, d := range dates {
			taken[d] = true
		}
	}

	add := func(kind store.MarkerKind, dates []string) error {
		for _, d := range dates {
			if taken[d] {
				continue
			}
			taken[d] = true
			if err := a.store.SetMarker(d, kind); err != nil {
				return err
			}
		}
		return nil
	}

	if err := add(store.MarkerVacation, imported.VacationDays); err != nil {
		return err
	}
	return add(store.MarkerSick, imported.SickDays)
}
