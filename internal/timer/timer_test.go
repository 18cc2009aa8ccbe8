package timer

import (
	"testing"
	"time"

	"github.com/mkrenz/stechuhr/internal/store"
)

// fakeSlot persists the timer state in memory, mimicking the store's
// single-row slot.
type fakeSlot struct {
	state store.TimerState
	saves int
}

func (f *fakeSlot) LoadTimerState() (store.TimerState, error) { return f.state, nil }

func (f *fakeSlot) SaveTimerState(ts store.TimerState) error {
	f.state = ts
	f.saves++
	return nil
}

func (f *fakeSlot) ClearTimerState() error {
	f.state = store.TimerState{}
	return nil
}

func newTestTimer(t *testing.T, slot *fakeSlot, at time.Time) (*Timer, *time.Time) {
	t.Helper()
	clock := at
	tm, err := New(slot)
	if err != nil {
		t.Fatalf("new timer: %v", err)
	}
	tm.now = func() time.Time { return clock }
	return tm, &clock
}

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)

// ============================================================
// Start / stop lifecycle
// ============================================================

func TestStartPersistsImmediately(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)

	if err := tm.Start("coding"); err != nil {
		t.Fatal(err)
	}
	if !slot.state.Running {
		t.Fatal("start must persist a running state synchronously")
	}
	if slot.state.StartTS == nil || *slot.state.StartTS != t0.UnixMilli() {
		t.Fatalf("unexpected persisted start: %+v", slot.state)
	}
	if slot.state.Date != "2024-05-01" {
		t.Fatalf("expected session date 2024-05-01, got %q", slot.state.Date)
	}
}

func TestStartWhileRunningRefused(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)
	tm.Start("first")

	if err := tm.Start("second"); err != ErrRunning {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	if slot.state.Description != "first" {
		t.Fatal("refused start must not overwrite the session")
	}
}

func TestStopReturnsSession(t *testing.T) {
	slot := &fakeSlot{}
	tm, clock := newTestTimer(t, slot, t0)
	tm.Start("coding")

	*clock = t0.Add(8*time.Hour + 30*time.Minute)
	session, err := tm.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if session == nil {
		t.Fatal("expected a session")
	}
	if session.Date != "2024-05-01" || session.StartTime != "09:00" || session.EndTime != "17:30" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.Duration != 510 {
		t.Fatalf("expected 510 minutes, got %d", session.Duration)
	}
	if session.Description != "coding" {
		t.Fatalf("expected description kept, got %q", session.Description)
	}

	// Slot is cleared to idle.
	if slot.state.Running || slot.state.StartTS != nil {
		t.Fatalf("expected cleared slot, got %+v", slot.state)
	}
	if tm.Running() {
		t.Fatal("timer must be idle after stop")
	}
}

func TestStopRoundsToNearestMinute(t *testing.T) {
	slot := &fakeSlot{}
	tm, clock := newTestTimer(t, slot, t0)
	tm.Start("")

	// 10 minutes 40 seconds rounds up to 11.
	*clock = t0.Add(10*time.Minute + 40*time.Second)
	session, _ := tm.Stop()
	if session.Duration != 11 {
		t.Fatalf("expected 11, got %d", session.Duration)
	}

	tm.Start("")
	// 10 minutes 20 seconds rounds down to 10.
	*clock = clock.Add(10*time.Minute + 20*time.Second)
	session, _ = tm.Stop()
	if session.Duration != 10 {
		t.Fatalf("expected 10, got %d", session.Duration)
	}
}

func TestStopWhileIdle(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)

	session, err := tm.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Fatalf("expected no session, got %+v", session)
	}
	if slot.saves != 0 {
		t.Fatal("idle stop must not touch the slot")
	}
}

func TestMidnightCrossingKeepsStartDate(t *testing.T) {
	slot := &fakeSlot{}
	late := time.Date(2024, 5, 1, 23, 0, 0, 0, time.Local)
	tm, clock := newTestTimer(t, slot, late)
	tm.Start("night shift")

	*clock = late.Add(3 * time.Hour) // 02:00 next day
	session, _ := tm.Stop()
	if session.Date != "2024-05-01" {
		t.Fatalf("session must keep its start date, got %q", session.Date)
	}
	if session.StartTime != "23:00" || session.EndTime != "02:00" {
		t.Fatalf("unexpected clocks: %+v", session)
	}
	if session.Duration != 180 {
		t.Fatalf("expected 180, got %d", session.Duration)
	}
}

// ============================================================
// Elapsed & restoration
// ============================================================

func TestElapsedFloorsMinutes(t *testing.T) {
	slot := &fakeSlot{}
	tm, clock := newTestTimer(t, slot, t0)
	tm.Start("")

	*clock = t0.Add(125 * time.Second)
	if got := tm.Elapsed(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	*clock = t0.Add(59 * time.Second)
	if got := tm.Elapsed(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestRestorationAcrossRestart(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)
	tm.Start("long job")

	// Simulate a process restart: discard the object, reconstruct from the
	// same slot, query at a later instant.
	t1 := t0.Add(49*time.Minute + 30*time.Second)
	tm2, _ := newTestTimer(t, slot, t1)

	if !tm2.Running() {
		t.Fatal("restored timer must still be running")
	}
	if got := tm2.Elapsed(); got != 49 {
		t.Fatalf("expected 49 elapsed minutes after restore, got %d", got)
	}
	if tm2.Description() != "long job" {
		t.Fatalf("expected description restored, got %q", tm2.Description())
	}
	if tm2.StartClock() != "09:00" {
		t.Fatalf("expected start clock 09:00, got %q", tm2.StartClock())
	}
}

func TestRestorationAfterDays(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)
	tm.Start("forgotten")

	t1 := t0.Add(26 * time.Hour)
	tm2, _ := newTestTimer(t, slot, t1)

	if got := tm2.Elapsed(); got != 26*60 {
		t.Fatalf("expected %d, got %d", 26*60, got)
	}
	if !tm2.LongRunning() {
		t.Fatal("expected long-running advisory after 26h")
	}
	// Advisory only: the session still stops normally.
	session, err := tm2.Stop()
	if err != nil || session == nil {
		t.Fatalf("stop failed: %v %v", session, err)
	}
	if session.Date != "2024-05-01" {
		t.Fatalf("multi-day session keeps its start date, got %q", session.Date)
	}
}

func TestElapsedResidueAfterStop(t *testing.T) {
	slot := &fakeSlot{}
	tm, clock := newTestTimer(t, slot, t0)
	tm.Start("")
	*clock = t0.Add(30 * time.Minute)
	tm.Stop()

	// Until the next start or reset the display keeps the last span.
	if got := tm.Elapsed(); got != 30 {
		t.Fatalf("expected residual 30, got %d", got)
	}

	tm.Reset()
	if got := tm.Elapsed(); got != 0 {
		t.Fatalf("expected 0 after reset, got %d", got)
	}
}

// ============================================================
// Reset & description
// ============================================================

func TestResetDiscardsRunningSession(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)
	tm.Start("oops")

	if err := tm.Reset(); err != nil {
		t.Fatal(err)
	}
	if tm.Running() || slot.state.Running {
		t.Fatal("reset must clear both memory and slot")
	}
	// Fresh start works afterwards.
	if err := tm.Start("again"); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateDescription(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)
	tm.Start("draft")

	if err := tm.UpdateDescription("final"); err != nil {
		t.Fatal(err)
	}
	if slot.state.Description != "final" {
		t.Fatal("description change must be persisted")
	}
	if slot.state.StartTS == nil || *slot.state.StartTS != t0.UnixMilli() {
		t.Fatal("description change must not touch timestamps")
	}
}

func TestUpdateDescriptionWhileIdle(t *testing.T) {
	slot := &fakeSlot{}
	tm, _ := newTestTimer(t, slot, t0)

	saves := slot.saves
	if err := tm.UpdateDescription("ignored"); err != nil {
		t.Fatal(err)
	}
	if slot.saves != saves {
		t.Fatal("idle description update must not persist anything")
	}
}

// ============================================================
// Against the real store
// ============================================================

func TestTimerWithSQLiteSlot(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	tm, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	clock := t0
	tm.now = func() time.Time { return clock }

	if err := tm.Start("db-backed"); err != nil {
		t.Fatal(err)
	}

	tm2, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	clock2 := t0.Add(5 * time.Minute)
	tm2.now = func() time.Time { return clock2 }

	if !tm2.Running() || tm2.Elapsed() != 5 {
		t.Fatalf("expected restored running timer at 5 minutes, got running=%v elapsed=%d", tm2.Running(), tm2.Elapsed())
	}

	session, err := tm2.Stop()
	if err != nil || session == nil {
		t.Fatalf("stop: %v %v", session, err)
	}
	state, _ := s.LoadTimerState()
	if state.Running {
		t.Fatal("slot must be idle after stop")
	}
}
