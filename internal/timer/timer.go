// Package timer owns the single persistent stopwatch. Elapsed time is
// always derived from the stored start timestamp and the current clock,
// never from ticks counted while the process was alive, so a session
// survives restarts and idle gaps unchanged.
package timer

import (
	"errors"
	"time"

	"github.com/mkrenz/stechuhr/internal/store"
	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// ErrRunning is returned by Start when a session is already in progress.
// Callers stop or reset first.
var ErrRunning = errors.New("timer already running")

// Slot is the persistence port the timer writes through. *store.Store
// satisfies it; tests use an in-memory fake.
type Slot interface {
	LoadTimerState() (store.TimerState, error)
	SaveTimerState(store.TimerState) error
	ClearTimerState() error
}

// Session is a completed timer run, ready to be turned into a time entry
// by the caller (who attaches the break duration).
type Session struct {
	Date        string
	StartTime   string // local HH:MM
	EndTime     string // local HH:MM
	Duration    int    // minutes, rounded to nearest
	Description string
}

// Timer is the single-slot stopwatch state machine.
type Timer struct {
	slot  Slot
	state store.TimerState

	// Transient residue of the last stopped session, for the elapsed
	// display between stop and the next start. Never persisted.
	lastStart, lastEnd *int64

	now func() time.Time
}

// New restores the timer from its persisted slot. A slot saved while
// running resumes counting from its original start timestamp.
func New(slot Slot) (*Timer, error) {
	state, err := slot.LoadTimerState()
	if err != nil {
		return nil, err
	}
	return &Timer{slot: slot, state: state, now: time.Now}, nil
}

// Start begins a new session attributed to today's date. Returns
// ErrRunning when a session is already in progress.
func (t *Timer) Start(description string) error {
	if t.state.Running {
		return ErrRunning
	}

	now := t.now()
	ms := now.UnixMilli()
	t.state = store.TimerState{
		Running:     true,
		StartTS:     &ms,
		Date:        now.Format("2006-01-02"),
		Description: description,
	}
	t.lastStart, t.lastEnd = nil, nil
	return t.slot.SaveTimerState(t.state)
}

// Stop ends the running session and returns it; the persisted slot is
// cleared to idle. On an idle timer it returns (nil, nil) and leaves the
// slot untouched.
func (t *Timer) Stop() (*Session, error) {
	if !t.state.Running || t.state.StartTS == nil {
		return nil, nil
	}

	now := t.now()
	endMS := now.UnixMilli()
	startMS := *t.state.StartTS

	elapsed := endMS - startMS
	minutes := int((elapsed + 30_000) / 60_000) // round to nearest minute

	session := &Session{
		Date:        t.state.Date,
		StartTime:   timecalc.ClockOf(time.UnixMilli(startMS)),
		EndTime:     timecalc.ClockOf(now),
		Duration:    minutes,
		Description: t.state.Description,
	}

	t.lastStart, t.lastEnd = &startMS, &endMS
	t.state = store.TimerState{}
	if err := t.slot.ClearTimerState(); err != nil {
		return nil, err
	}
	return session, nil
}

// Reset unconditionally discards any session, in progress or residual.
func (t *Timer) Reset() error {
	t.state = store.TimerState{}
	t.lastStart, t.lastEnd = nil, nil
	return t.slot.ClearTimerState()
}

// UpdateDescription mutates the running session's description in place.
// Idle timers ignore it.
func (t *Timer) UpdateDescription(text string) error {
	if !t.state.Running {
		return nil
	}
	t.state.Description = text
	return t.slot.SaveTimerState(t.state)
}

// Elapsed returns whole minutes since start while running, or the span of
// the last stopped session until the next start or reset.
func (t *Timer) Elapsed() int {
	if t.state.Running && t.state.StartTS != nil {
		return int((t.now().UnixMilli() - *t.state.StartTS) / 60_000)
	}
	if t.lastStart != nil && t.lastEnd != nil {
		return int((*t.lastEnd - *t.lastStart) / 60_000)
	}
	return 0
}

// Running reports whether a session is in progress.
func (t *Timer) Running() bool {
	return t.state.Running
}

// Description returns the running session's description, or "".
func (t *Timer) Description() string {
	return t.state.Description
}

// Date returns the date the running session is attributed to, or "".
func (t *Timer) Date() string {
	return t.state.Date
}

// StartClock returns the running session's start as local HH:MM, or "".
func (t *Timer) StartClock() string {
	if t.state.StartTS == nil {
		return ""
	}
	return timecalc.ClockOf(time.UnixMilli(*t.state.StartTS))
}

// LongRunning reports whether the session has been running for more than
// 24 hours — advisory only, likely a forgotten timer.
func (t *Timer) LongRunning() bool {
	return t.state.Running && t.Elapsed() > 24*60
}
