package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/day"
	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// calendarModel is the month view: a Monday-first grid colored by day
// classification, plus the selected day's entry list with add/edit/delete
// and the vacation/sick toggles.
type calendarModel struct {
	store *store.Store
	days  *day.Classifier

	width  int
	height int

	selected  string // "2006-01-02"
	kinds     map[string]day.Kind
	rows      []day.Row
	rowCursor int

	formActive bool
	form       *huh.Form
	editingID  string // "" while adding
	fStart     *string
	fEnd       *string
	fBreak     *string
	fNote      *string
}

func newCalendarModel(s *store.Store, days *day.Classifier) calendarModel {
	start, end, brk, note := "", "", "", ""
	return calendarModel{
		store:    s,
		days:     days,
		selected: timecalc.CurrentDate(),
		fStart:   &start,
		fEnd:     &end,
		fBreak:   &brk,
		fNote:    &note,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c calendarModel) month() string { return timecalc.MonthOf(c.selected) }

func (c calendarModel) inputActive() bool { return c.formActive }

type calendarDataMsg struct {
	kinds map[string]day.Kind
	rows  []day.Row
}

func (c calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		kinds, _ := c.days.MonthClassification(c.month())
		rows, _ := c.days.RowsForDate(c.selected)
		return calendarDataMsg{kinds: kinds, rows: rows}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		c.kinds = msg.kinds
		c.rows = msg.rows
		if c.rowCursor >= len(c.rows) {
			c.rowCursor = max(0, len(c.rows)-1)
		}
		return c, nil

	case sessionSavedMsg, entrySavedMsg, entryDeletedMsg, markerToggledMsg:
		return c, c.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			return c.moveSelection(-1)
		case key.Matches(msg, keys.Right):
			return c.moveSelection(1)
		case key.Matches(msg, keys.PrevPage):
			return c.moveSelectionMonths(-1)
		case key.Matches(msg, keys.NextPage):
			return c.moveSelectionMonths(1)
		case key.Matches(msg, keys.Today):
			c.selected = timecalc.CurrentDate()
			c.rowCursor = 0
			return c, c.refresh()

		case key.Matches(msg, keys.Up):
			if c.rowCursor > 0 {
				c.rowCursor--
			}
			return c, nil
		case key.Matches(msg, keys.Down):
			if c.rowCursor < len(c.rows)-1 {
				c.rowCursor++
			}
			return c, nil

		case key.Matches(msg, keys.New):
			return c.showEntryForm(nil)
		case key.Matches(msg, keys.Edit):
			entry, cmd := c.selectedEntry()
			if entry == nil {
				return c, cmd
			}
			return c.showEntryForm(entry)
		case key.Matches(msg, keys.Delete):
			entry, cmd := c.selectedEntry()
			if entry == nil {
				return c, cmd
			}
			if entry.ID == "" {
				return c, errStatus("Entry has no id — cannot delete")
			}
			return c, c.deleteEntry(entry.ID)

		case key.Matches(msg, keys.Vacation):
			return c, c.toggleMarker(store.MarkerVacation)
		case key.Matches(msg, keys.Sick):
			return c, c.toggleMarker(store.MarkerSick)
		}
	}
	return c, nil
}

// moveSelection shifts the selected date by days, refreshing the grid
// when the month changes.
func (c calendarModel) moveSelection(days int) (calendarModel, tea.Cmd) {
	d, err := time.ParseInLocation("2006-01-02", c.selected, time.Local)
	if err != nil {
		return c, nil
	}
	c.selected = d.AddDate(0, 0, days).Format("2006-01-02")
	c.rowCursor = 0
	return c, c.refresh()
}

func (c calendarModel) moveSelectionMonths(months int) (calendarModel, tea.Cmd) {
	d, err := time.ParseInLocation("2006-01-02", c.selected, time.Local)
	if err != nil {
		return c, nil
	}
	// Jump to the first of the target month so short months can't skip.
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.Local)
	c.selected = first.AddDate(0, months, 0).Format("2006-01-02")
	c.rowCursor = 0
	return c, c.refresh()
}

// selectedEntry returns the work entry under the row cursor, or nil plus
// a status cmd explaining why there is none.
func (c calendarModel) selectedEntry() (*store.TimeEntry, tea.Cmd) {
	if len(c.rows) == 0 {
		return nil, status("No entries on this day")
	}
	row := c.rows[c.rowCursor]
	if row.IsMarker() {
		return nil, status("Markers are toggled with v/b, not edited")
	}
	return row.Entry, nil
}

func (c calendarModel) toggleMarker(kind store.MarkerKind) tea.Cmd {
	date := c.selected
	return func() tea.Msg {
		var err error
		if kind == store.MarkerVacation {
			err = c.days.ToggleVacation(date)
		} else {
			err = c.days.ToggleSick(date)
		}
		switch {
		case errors.Is(err, day.ErrMarkerConflict):
			return statusMsg{text: "Day already carries the other marker", isError: true}
		case errors.Is(err, day.ErrHasWork):
			return statusMsg{text: "Day has logged working time — remove entries first", isError: true}
		case err != nil:
			return statusMsg{text: fmt.Sprintf("Toggle failed: %v", err), isError: true}
		}
		return markerToggledMsg{}
	}
}

func (c calendarModel) deleteEntry(id string) tea.Cmd {
	return func() tea.Msg {
		if err := c.store.DeleteEntry(id); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete failed: %v", err), isError: true}
		}
		return entryDeletedMsg{}
	}
}

// showEntryForm opens the add/edit form; a nil entry means adding.
func (c calendarModel) showEntryForm(entry *store.TimeEntry) (calendarModel, tea.Cmd) {
	if entry != nil {
		c.editingID = entry.ID
		*c.fStart = entry.StartTime
		*c.fEnd = entry.EndTime
		*c.fBreak = strconv.Itoa(entry.BreakDuration)
		*c.fNote = entry.Description
	} else {
		c.editingID = ""
		*c.fStart = ""
		*c.fEnd = ""
		*c.fBreak = strconv.Itoa(c.store.DefaultBreak())
		*c.fNote = ""
	}

	title := "New entry on " + c.selected
	if entry != nil {
		title = "Edit entry on " + c.selected
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start (HH:MM)").Validate(validateClock).Value(c.fStart),
			huh.NewInput().Title("End (HH:MM)").Validate(validateClock).Value(c.fEnd),
			huh.NewInput().Title("Break (minutes)").Validate(validateBreak).Value(c.fBreak),
			huh.NewInput().Title("Description").Value(c.fNote),
		).Title(title),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if !timecalc.IsValidTimeRange(*c.fStart, *c.fEnd) {
			return c, errStatus("End must differ from start")
		}
		return c, c.saveEntry()
	}

	return c, cmd
}

func (c calendarModel) saveEntry() tea.Cmd {
	id := c.editingID
	date := c.selected
	start, end := *c.fStart, *c.fEnd
	brk, _ := strconv.Atoi(*c.fBreak)
	note := *c.fNote

	return func() tea.Msg {
		var err error
		if id == "" {
			_, err = c.store.AddEntry(store.TimeEntry{
				Date:          date,
				StartTime:     start,
				EndTime:       end,
				BreakDuration: brk,
				Description:   note,
			})
		} else {
			err = c.store.UpdateEntry(id, store.EntryPatch{
				StartTime:     &start,
				EndTime:       &end,
				BreakDuration: &brk,
				Description:   &note,
			})
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Entry not saved: %v", err), isError: true}
		}
		return entrySavedMsg{}
	}
}

func validateClock(s string) error {
	if !timecalc.IsValidTime(strings.TrimSpace(s)) {
		return fmt.Errorf("use 24h HH:MM")
	}
	return nil
}

func (c calendarModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		return activePanelStyle.Width(w).Render(c.form.View())
	}

	grid := c.renderGrid()
	dayPanel := c.renderDayPanel()
	legend := c.renderLegend()
	nav := mutedStyle.Render("  ←/→: day  ↑/↓: entry  [/]: month  t: today  a/e/d: entries  v/b: markers")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, grid, "", dayPanel, "", legend, nav),
	)
}

func (c calendarModel) renderGrid() string {
	monthDays := timecalc.DaysInMonth(c.month())
	if len(monthDays) == 0 {
		return mutedStyle.Render("  Invalid month")
	}

	first, err := time.ParseInLocation("2006-01", c.month(), time.Local)
	if err != nil {
		return mutedStyle.Render("  Invalid month")
	}

	var lines []string
	lines = append(lines, titleStyle.Render("  "+first.Format("January 2006")))
	lines = append(lines, mutedStyle.Render("  Mo  Tu  We  Th  Fr  Sa  Su"))

	today := timecalc.CurrentDate()

	// Monday-first padding before day 1.
	pad := int(first.Weekday()) - 1
	if pad < 0 {
		pad = 6 // Sunday
	}

	cells := make([]string, 0, 7)
	for i := 0; i < pad; i++ {
		cells = append(cells, "    ")
	}
	for _, d := range monthDays {
		date := d.Format("2006-01-02")
		style := dayStyle(c.kinds[date])
		if date == today {
			style = style.Inherit(dayTodayStyle)
		}
		cell := style.Render(fmt.Sprintf("%3d", d.Day()))
		if date == c.selected {
			cell = daySelectedStyle.Render(fmt.Sprintf("%3d", d.Day()))
		}
		cells = append(cells, cell+" ")

		if len(cells) == 7 {
			lines = append(lines, "  "+strings.Join(cells, ""))
			cells = cells[:0]
		}
	}
	if len(cells) > 0 {
		lines = append(lines, "  "+strings.Join(cells, ""))
	}

	return strings.Join(lines, "\n")
}

func (c calendarModel) renderDayPanel() string {
	kind := c.kinds[c.selected]
	if kind == "" {
		kind = day.KindNone
	}

	header := fmt.Sprintf("  %s  %s",
		titleStyle.Render(c.selected),
		dayStyle(kind).Render(string(kind)),
	)

	var lines []string
	lines = append(lines, header)

	if len(c.rows) == 0 {
		lines = append(lines, mutedStyle.Render("    no entries"))
		return strings.Join(lines, "\n")
	}

	var entries []store.TimeEntry
	for i, r := range c.rows {
		cursor := "  "
		style := normalItemStyle
		if i == c.rowCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		lines = append(lines, "  "+cursor+style.Render(renderRow(r)))
		if !r.IsMarker() {
			entries = append(entries, *r.Entry)
		}
	}

	totals := store.TotalHours(entries)
	lines = append(lines, fmt.Sprintf("    %s %s  %s %s",
		mutedStyle.Render("net"), successStyle.Render(formatNet(totals.NetTime)),
		mutedStyle.Render("breaks"), highlightStyle.Render(formatElapsed(totals.TotalBreaks)),
	))

	return strings.Join(lines, "\n")
}

func (c calendarModel) renderLegend() string {
	items := []struct {
		kind  day.Kind
		label string
	}{
		{day.KindNormal, "normal"},
		{day.KindOvertime, "over/under"},
		{day.KindVacation, "vacation"},
		{day.KindSick, "sick"},
	}
	var parts []string
	for _, it := range items {
		dot := lipgloss.NewStyle().Foreground(kindColor(it.kind)).Render("●")
		parts = append(parts, dot+" "+it.label)
	}
	return "  " + mutedStyle.Render(strings.Join(parts, "  "))
}
