package store

import (
	"time"

	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// TimeEntry is one logged work interval. StartTime and EndTime are local
// "HH:MM" clocks and may be empty for placeholder entries; Duration is the
// gross span in minutes, derived and cached whenever either clock changes.
type TimeEntry struct {
	ID            string
	Date          string // YYYY-MM-DD, the partition key for per-day queries
	StartTime     string
	EndTime       string
	BreakDuration int // unpaid break, minutes
	Duration      int // gross minutes between start and end
	Description   string
	CreatedAt     time.Time
}

// NetTime returns the paid portion of the entry in minutes. Not clamped:
// a break longer than the entry yields a negative value.
func (e TimeEntry) NetTime() int {
	return e.Duration - e.BreakDuration
}

// TimerState is the persisted single timer slot. Running is true exactly
// when StartTS is set. Date is captured at start so a session crossing
// midnight stays attributed to the day it began.
type TimerState struct {
	Running     bool
	StartTS     *int64 // epoch milliseconds
	EndTS       *int64 // epoch milliseconds, informational
	Date        string
	Description string
}

// MarkerKind tags a calendar date as a full day of leave.
type MarkerKind string

const (
	MarkerVacation MarkerKind = "vacation"
	MarkerSick     MarkerKind = "sick"
)

// EntryPatch is a partial update for UpdateEntry. Nil fields are left
// untouched.
type EntryPatch struct {
	Date          *string
	StartTime     *string
	EndTime       *string
	BreakDuration *int
	Description   *string
}

type Setting struct {
	Key   string
	Value string
}

// UserInfo is the report header data kept in settings.
type UserInfo struct {
	Name    string
	Company string
}

// TotalHours sums gross duration and breaks over entries and derives the
// net working time.
func TotalHours(entries []TimeEntry) timecalc.Totals {
	var t timecalc.Totals
	for _, e := range entries {
		t.TotalDuration += e.Duration
		t.TotalBreaks += e.BreakDuration
	}
	t.NetTime = t.TotalDuration - t.TotalBreaks
	return t
}
