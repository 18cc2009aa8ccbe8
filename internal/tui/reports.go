package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkrenz/stechuhr/internal/day"
	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// reportsModel is the monthly report: a bar chart of net hours per day,
// colored by day classification, plus the month's aggregate numbers.
type reportsModel struct {
	store *store.Store
	days  *day.Classifier

	width  int
	height int

	offset    int // months back from the current one (0 = current)
	aggregate day.Aggregate
	entries   []store.TimeEntry
	kinds     map[string]day.Kind
	user      store.UserInfo

	chart barchart.Model
}

func newReportsModel(s *store.Store, days *day.Classifier) reportsModel {
	return reportsModel{
		store: s,
		days:  days,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) month() string {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	return first.AddDate(0, -r.offset, 0).Format("2006-01")
}

type reportsDataMsg struct {
	aggregate day.Aggregate
	entries   []store.TimeEntry
	kinds     map[string]day.Kind
	user      store.UserInfo
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		month := r.month()
		agg, _ := r.days.MonthlyAggregate(month)
		entries, _ := r.store.EntriesForMonth(month)
		kinds, _ := r.days.MonthClassification(month)
		user, _ := r.store.GetUserInfo()
		return reportsDataMsg{aggregate: agg, entries: entries, kinds: kinds, user: user}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.aggregate = msg.aggregate
		r.entries = msg.entries
		r.kinds = msg.kinds
		r.user = msg.user
		r.buildChart()
		return r, nil

	case sessionSavedMsg, entrySavedMsg, entryDeletedMsg, markerToggledMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.PrevPage):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right), key.Matches(msg, keys.NextPage):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Today):
			r.offset = 0
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	netByDate := make(map[string]int)
	for _, e := range r.entries {
		netByDate[e.Date] += e.NetTime()
	}

	var bars []barchart.BarData
	for _, d := range timecalc.DaysInMonth(r.month()) {
		date := d.Format("2006-01-02")
		label := d.Format("02")

		kind := r.kinds[date]
		hours := float64(netByDate[date]) / 60.0
		if hours < 0 {
			hours = 0 // chart floors: negative net shows as empty
		}
		// Markers get a fixed-height block so they stay visible.
		if kind == day.KindVacation || kind == day.KindSick {
			hours = 1
		}

		var values []barchart.BarValue
		if hours > 0 {
			style := lipgloss.NewStyle().Foreground(kindColor(kind))
			values = append(values, barchart.BarValue{Name: string(kind), Value: hours, Style: style})
		} else {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	first, _ := time.ParseInLocation("2006-01", r.month(), time.Local)
	dateLabel := mutedStyle.Render(first.Format("January 2006"))

	who := ""
	if r.user.Name != "" {
		who = mutedStyle.Render(r.user.Name)
		if r.user.Company != "" {
			who = mutedStyle.Render(r.user.Name + " · " + r.user.Company)
		}
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Report"), "  ", dateLabel, "  ", who,
	)

	chartView := r.chart.View()
	tableView := r.renderAggregate(w)
	legend := r.renderLegend()
	nav := mutedStyle.Render("  ←/→: month  t: current month")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderAggregate(w int) string {
	a := r.aggregate

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %12s", "", "")))
	rows = append(rows, fmt.Sprintf("  %-16s %s  (%s h)",
		"Net time", successStyle.Render(formatNet(a.NetTime)), timecalc.FormatMinutesToHours(a.NetTime)))
	rows = append(rows, fmt.Sprintf("  %-16s %s", "Gross time", formatElapsed(a.TotalDuration)))
	rows = append(rows, fmt.Sprintf("  %-16s %s", "Breaks", formatElapsed(a.TotalBreaks)))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 40))))
	rows = append(rows, fmt.Sprintf("  %-16s %d", "Work days", a.WorkDays))
	rows = append(rows, fmt.Sprintf("  %-16s %d", "Vacation days", a.VacationDays))
	rows = append(rows, fmt.Sprintf("  %-16s %d", "Sick days", a.SickDays))

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
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
