package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/day"
	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timecalc"
	"github.com/mkrenz/stechuhr/internal/timer"
)

// dashboardModel is the timer tab: digital clock, the running stopwatch,
// and today's entries.
type dashboardModel struct {
	store *store.Store
	timer *timer.Timer
	days  *day.Classifier

	width  int
	height int

	rows   []day.Row
	totals timecalc.Totals

	// Stop confirmation: attach a break and final note to the session.
	formActive bool
	form       *huh.Form
	pending    *timer.Session
	formBreak  *string
	formNote   *string

	// Inline description edit while running.
	noteActive bool
	noteInput  textinput.Model
}

func newDashboardModel(s *store.Store, tm *timer.Timer, days *day.Classifier) dashboardModel {
	brk, note := "", ""
	ti := textinput.New()
	ti.Placeholder = "what are you working on?"
	ti.CharLimit = 120
	return dashboardModel{
		store:     s,
		timer:     tm,
		days:      days,
		formBreak: &brk,
		formNote:  &note,
		noteInput: ti,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.Running() }
func (d dashboardModel) elapsed() int    { return d.timer.Elapsed() }

func (d dashboardModel) inputActive() bool { return d.formActive || d.noteActive }

type dashboardDataMsg struct {
	rows   []day.Row
	totals timecalc.Totals
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		today := timecalc.CurrentDate()
		rows, _ := d.days.RowsForDate(today)

		var entries []store.TimeEntry
		for _, r := range rows {
			if !r.IsMarker() {
				entries = append(entries, *r.Entry)
			}
		}
		return dashboardDataMsg{rows: rows, totals: store.TotalHours(entries)}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}
	if d.noteActive {
		return d.updateNote(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.rows = msg.rows
		d.totals = msg.totals
		return d, nil

	case sessionSavedMsg, entrySavedMsg, entryDeletedMsg, markerToggledMsg:
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if err := d.timer.Start(""); err != nil {
				return d, errStatus("Timer already running — stop or reset it first")
			}
			return d, status("Timer started at " + d.timer.StartClock())

		case key.Matches(msg, keys.Stop):
			session, err := d.timer.Stop()
			if err != nil {
				return d, errStatus(fmt.Sprintf("Stop failed: %v", err))
			}
			if session == nil {
				return d, status("Timer is not running")
			}
			return d.showStopForm(session)

		case key.Matches(msg, keys.Reset):
			if err := d.timer.Reset(); err != nil {
				return d, errStatus(fmt.Sprintf("Reset failed: %v", err))
			}
			return d, status("Timer reset")

		case key.Matches(msg, keys.Note):
			if !d.timer.Running() {
				return d, status("Start the timer to attach a note")
			}
			d.noteActive = true
			d.noteInput.SetValue(d.timer.Description())
			d.noteInput.Focus()
			return d, textinput.Blink
		}
	}
	return d, nil
}

func (d dashboardModel) updateNote(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			d.noteActive = false
			if err := d.timer.UpdateDescription(d.noteInput.Value()); err != nil {
				return d, errStatus(fmt.Sprintf("Note not saved: %v", err))
			}
			return d, nil
		case "esc":
			d.noteActive = false
			return d, nil
		}
	}
	var cmd tea.Cmd
	d.noteInput, cmd = d.noteInput.Update(msg)
	return d, cmd
}

// showStopForm opens the break/note confirmation for a stopped session.
func (d dashboardModel) showStopForm(session *timer.Session) (dashboardModel, tea.Cmd) {
	d.pending = session
	*d.formBreak = strconv.Itoa(d.store.DefaultBreak())
	*d.formNote = session.Description

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Break (minutes)").
				Validate(validateBreak).
				Value(d.formBreak),
			huh.NewInput().
				Title("Description").
				Value(d.formNote),
		).Title(fmt.Sprintf("Session %s – %s (%s)",
			session.StartTime, session.EndTime, formatElapsed(session.Duration))),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			// Session is discarded; the timer slot is already cleared.
			d.formActive = false
			d.form = nil
			d.pending = nil
			return d, status("Session discarded")
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		session := d.pending
		d.pending = nil
		brk, _ := strconv.Atoi(*d.formBreak)
		return d, d.saveSession(session, brk, *d.formNote)
	}

	return d, cmd
}

func (d dashboardModel) saveSession(session *timer.Session, breakMinutes int, note string) tea.Cmd {
	return func() tea.Msg {
		id, err := d.store.AddEntry(store.TimeEntry{
			Date:          session.Date,
			StartTime:     session.StartTime,
			EndTime:       session.EndTime,
			BreakDuration: breakMinutes,
			Description:   note,
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Entry not saved: %v", err), isError: true}
		}
		entry, err := d.store.GetEntry(id)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Entry not saved: %v", err), isError: true}
		}
		return sessionSavedMsg{entry: entry}
	}
}

func validateBreak(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative number of minutes")
	}
	return nil
}

func (d dashboardModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		return activePanelStyle.Width(w).Render(d.form.View())
	}

	var sections []string

	// Digital clock.
	sections = append(sections, clockStyle.Width(w-6).Render(time.Now().Format("15:04:05")))
	sections = append(sections, "")

	// Stopwatch.
	if d.timer.Running() {
		elapsed := timerRunningStyle.Width(w - 6).Render("● " + formatElapsed(d.timer.Elapsed()))
		sections = append(sections, elapsed)
		info := fmt.Sprintf("since %s", d.timer.StartClock())
		if note := d.timer.Description(); note != "" {
			info += "  ·  " + note
		}
		sections = append(sections, mutedStyle.Width(w-6).Align(lipgloss.Center).Render(info))
		if d.timer.LongRunning() {
			sections = append(sections, warningStyle.Width(w-6).Align(lipgloss.Center).
				Render("running for more than 24h — forgotten?"))
		}
	} else {
		sections = append(sections, timerIdleStyle.Width(w-6).Render(formatElapsed(d.timer.Elapsed())))
		sections = append(sections, mutedStyle.Width(w-6).Align(lipgloss.Center).Render("press s to start"))
	}

	if d.noteActive {
		sections = append(sections, "", "  Note: "+d.noteInput.View())
	}

	sections = append(sections, "", titleStyle.Render("Today"))
	sections = append(sections, d.renderRows())

	sections = append(sections, "", fmt.Sprintf("  %s  %s   %s  %s   %s  %s",
		mutedStyle.Render("gross"), highlightStyle.Render(formatElapsed(d.totals.TotalDuration)),
		mutedStyle.Render("breaks"), highlightStyle.Render(formatElapsed(d.totals.TotalBreaks)),
		mutedStyle.Render("net"), successStyle.Render(formatNet(d.totals.NetTime)),
	))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (d dashboardModel) renderRows() string {
	if len(d.rows) == 0 {
		return mutedStyle.Render("  No entries yet")
	}
	var lines []string
	for _, r := range d.rows {
		lines = append(lines, "  "+renderRow(r))
	}
	return strings.Join(lines, "\n")
}

// renderRow renders one unified day row: a marker line or a work entry.
func renderRow(r day.Row) string {
	if r.IsMarker() {
		style := dayVacationStyle
		if r.Marker == store.MarkerSick {
			style = daySickStyle
		}
		return style.Render("■ " + markerLabel(r.Marker))
	}

	e := r.Entry
	span := "—"
	if e.StartTime != "" || e.EndTime != "" {
		span = fmt.Sprintf("%s–%s", e.StartTime, e.EndTime)
	}
	line := fmt.Sprintf("%-13s %s net", span, formatNet(e.NetTime()))
	if e.BreakDuration > 0 {
		line += fmt.Sprintf(" (%d min break)", e.BreakDuration)
	}
	if e.Description != "" {
		line += "  " + mutedStyle.Render(e.Description)
	}
	return line
}
