// Package day merges work entries with vacation/sick markers: it decides
// the calendar bucket of each date, guards the marker toggles, and builds
// the monthly aggregates the calendar and report views share.
package day

import (
	"errors"
	"fmt"

	"github.com/mkrenz/stechuhr/internal/store"
)

// Refusal signals for the guarded marker toggles. The store is left
// untouched when either is returned.
var (
	ErrMarkerConflict = errors.New("date already carries the other marker")
	ErrHasWork        = errors.New("date has logged working time")
)

// Kind is the day-level bucket driving calendar coloring.
type Kind string

const (
	KindNone     Kind = "none"
	KindVacation Kind = "vacation"
	KindSick     Kind = "sick"
	KindNormal   Kind = "normal"
	KindOvertime Kind = "overtime"
)

// Net-minute thresholds for the work buckets. A positive day under an
// hour counts as overtime too, mirroring the historical behavior.
const (
	minNormalMinutes = 60
	maxNormalMinutes = 8 * 60
)

// Source is the read/write surface the classifier needs from the store.
type Source interface {
	EntriesForDate(date string) ([]store.TimeEntry, error)
	EntriesForMonth(month string) ([]store.TimeEntry, error)
	MarkerFor(date string) (store.MarkerKind, error)
	SetMarker(date string, kind store.MarkerKind) error
	RemoveMarker(date string) error
	MarkersForMonth(month string) (map[string]store.MarkerKind, error)
}

// Classifier is a stateless view over the store; it owns no data of its
// own.
type Classifier struct {
	src Source
}

func New(src Source) *Classifier {
	return &Classifier{src: src}
}

// ClassifyDay returns the bucket for a date. Markers win over work:
// vacation is checked first, then sick, then the net working minutes.
func (c *Classifier) ClassifyDay(date string) (Kind, error) {
	marker, err := c.src.MarkerFor(date)
	if err != nil {
		return KindNone, err
	}
	switch marker {
	case store.MarkerVacation:
		return KindVacation, nil
	case store.MarkerSick:
		return KindSick, nil
	}

	entries, err := c.src.EntriesForDate(date)
	if err != nil {
		return KindNone, err
	}
	net := store.TotalHours(entries).NetTime

	switch {
	case net == 0:
		return KindNone, nil
	case net > maxNormalMinutes || net < minNormalMinutes:
		return KindOvertime, nil
	default:
		return KindNormal, nil
	}
}

// ToggleVacation flips vacation membership for a date.
func (c *Classifier) ToggleVacation(date string) error {
	return c.toggle(date, store.MarkerVacation)
}

// ToggleSick flips sick membership for a date.
func (c *Classifier) ToggleSick(date string) error {
	return c.toggle(date, store.MarkerSick)
}

// toggle removes the marker when the date already carries kind. Adding is
// guarded: it refuses when the date carries the other kind or has any
// entry with nonzero duration. Removal is always permitted.
func (c *Classifier) toggle(date string, kind store.MarkerKind) error {
	current, err := c.src.MarkerFor(date)
	if err != nil {
		return err
	}
	if current == kind {
		return c.src.RemoveMarker(date)
	}
	if current != "" {
		return ErrMarkerConflict
	}

	entries, err := c.src.EntriesForDate(date)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Duration != 0 {
			return ErrHasWork
		}
	}
	return c.src.SetMarker(date, kind)
}

// Row is one line of the unified per-day list: either a persisted work
// entry or a synthetic marker row. Exactly one of Entry/Marker is set;
// marker rows are display-only and excluded from all totals.
type Row struct {
	Entry  *store.TimeEntry
	Marker store.MarkerKind
}

// IsMarker reports whether the row represents a vacation/sick day rather
// than a work entry.
func (r Row) IsMarker() bool {
	return r.Marker != ""
}

// RowsForDate returns the date's work entries (already sorted by start
// clock, placeholders first) preceded by a marker row when the date
// carries one.
func (c *Classifier) RowsForDate(date string) ([]Row, error) {
	marker, err := c.src.MarkerFor(date)
	if err != nil {
		return nil, err
	}
	entries, err := c.src.EntriesForDate(date)
	if err != nil {
		return nil, err
	}

	var rows []Row
	if marker != "" {
		rows = append(rows, Row{Marker: marker})
	}
	for i := range entries {
		rows = append(rows, Row{Entry: &entries[i]})
	}
	return rows, nil
}

// MonthClassification buckets every date of a "2006-01" month that has
// anything on it. Dates absent from the map are KindNone. One bulk load
// instead of a per-day query keeps the calendar grid cheap.
func (c *Classifier) MonthClassification(month string) (map[string]Kind, error) {
	entries, err := c.src.EntriesForMonth(month)
	if err != nil {
		return nil, err
	}
	markers, err := c.src.MarkersForMonth(month)
	if err != nil {
		return nil, err
	}

	net := make(map[string]int)
	for _, e := range entries {
		net[e.Date] += e.NetTime()
	}

	kinds := make(map[string]Kind)
	for date, n := range net {
		switch {
		case n == 0:
			// leave absent, same as an empty day
		case n > maxNormalMinutes || n < minNormalMinutes:
			kinds[date] = KindOvertime
		default:
			kinds[date] = KindNormal
		}
	}
	for date, kind := range markers {
		if kind == store.MarkerVacation {
			kinds[date] = KindVacation
		} else {
			kinds[date] = KindSick
		}
	}
	return kinds, nil
}

// Aggregate is the derived monthly summary. Minutes are gross/break/net
// over all entries of the month; WorkDays counts entries with nonzero
// duration, not distinct dates.
type Aggregate struct {
	TotalDuration int
	TotalBreaks   int
	NetTime       int
	WorkDays      int
	VacationDays  int
	SickDays      int
}

// MonthlyAggregate computes the summary for a "2006-01" month.
func (c *Classifier) MonthlyAggregate(month string) (Aggregate, error) {
	entries, err := c.src.EntriesForMonth(month)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate %s: %w", month, err)
	}
	markers, err := c.src.MarkersForMonth(month)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate %s: %w", month, err)
	}

	totals := store.TotalHours(entries)
	agg := Aggregate{
		TotalDuration: totals.TotalDuration,
		TotalBreaks:   totals.TotalBreaks,
		NetTime:       totals.NetTime,
	}
	for _, e := range entries {
		if e.Duration > 0 {
			agg.WorkDays++
		}
	}
	for _, kind := range markers {
		switch kind {
		case store.MarkerVacation:
			agg.VacationDays++
		case store.MarkerSick:
			agg.SickDays++
		}
	}
	return agg, nil
}
