// Package timecalc holds the pure time arithmetic the rest of the
// application is built on: clock-string validation, duration math with
// overnight wrap, and minute/hour formatting. All functions are
// stateless and never panic on bad input.
package timecalc

import (
	"fmt"
	"regexp"
	"time"
)

const minutesPerDay = 24 * 60

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTime reports whether s is a 24-hour clock string like "9:05" or
// "23:59". The hour may be one or two digits, the minute is always two.
func IsValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// CalculateDuration returns the minutes between two clock strings. A session
// whose end clock reads earlier than its start is assumed to have crossed
// midnight, so the result is always in [0, 1440). Equal clocks yield 0,
// as does an empty start or end.
func CalculateDuration(start, end string) int {
	if start == "" || end == "" {
		return 0
	}

	startMin := clockMinutes(start)
	endMin := clockMinutes(end)
	if endMin < startMin {
		endMin += minutesPerDay
	}
	return endMin - startMin
}

// IsValidTimeRange reports whether both clocks are valid and the span
// between them is positive.
func IsValidTimeRange(start, end string) bool {
	if !IsValidTime(start) || !IsValidTime(end) {
		return false
	}
	return CalculateDuration(start, end) > 0
}

// FormatMinutesToTime renders a minute count as zero-padded "HH:MM".
// Negative input clamps to "00:00".
func FormatMinutesToTime(minutes int) string {
	if minutes < 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatMinutesToHours renders a minute count as decimal hours with two
// fraction digits, e.g. 90 -> "1.50".
func FormatMinutesToHours(minutes int) string {
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}

// Totals is the aggregate of a set of entries' durations and breaks,
// all in minutes. NetTime may be negative when breaks exceed the gross
// duration; callers display it as-is.
type Totals struct {
	TotalDuration int
	TotalBreaks   int
	NetTime       int
}

// CurrentDate returns today's date as "2006-01-02".
func CurrentDate() string {
	return time.Now().Format("2006-01-02")
}

// CurrentTime returns the current wall clock as "HH:MM".
func CurrentTime() string {
	return time.Now().Format("15:04")
}

// ClockOf renders a time's wall clock as "HH:MM".
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// MonthOf returns the "2006-01" prefix of a "2006-01-02" date string.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// DaysInMonth returns one time.Time per calendar day of the month given as
// "2006-01".
func DaysInMonth(month string) []time.Time {
	first, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		return nil
	}
	var days []time.Time
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func clockMinutes(clock string) int {
	var h, m int
	fmt.Sscanf(clock, "%d:%d", &h, &m)
	return h*60 + m
}
