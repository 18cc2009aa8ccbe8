package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// LoadTimerState reads the persisted timer slot. An empty slot yields the
// idle zero state, not an error.
func (s *Store) LoadTimerState() (TimerState, error) {
	var ts TimerState
	var running int
	var startTS, endTS sql.NullInt64

	err := s.db.QueryRow(
		`SELECT is_running, start_ts, end_ts, date, description FROM timer_state WHERE id = 1`,
	).Scan(&running, &startTS, &endTS, &ts.Date, &ts.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return TimerState{}, nil
	}
	if err != nil {
		return TimerState{}, fmt.Errorf("load timer state: %w", err)
	}

	ts.Running = running == 1
	if startTS.Valid {
		ts.StartTS = &startTS.Int64
	}
	if endTS.Valid {
		ts.EndTS = &endTS.Int64
	}
	return ts, nil
}

// SaveTimerState persists the timer slot. Every timer mutation calls this
// synchronously, so a crash right after a mutation never loses it.
func (s *Store) SaveTimerState(ts TimerState) error {
	running := 0
	if ts.Running {
		running = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO timer_state (id, is_running, start_ts, end_ts, date, description)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			is_running = excluded.is_running,
			start_ts = excluded.start_ts,
			end_ts = excluded.end_ts,
			date = excluded.date,
			description = excluded.description`,
		running, ts.StartTS, ts.EndTS, ts.Date, ts.Description,
	)
	if err != nil {
		return fmt.Errorf("save timer state: %w", err)
	}
	return nil
}

// ClearTimerState resets the slot to idle.
func (s *Store) ClearTimerState() error {
	_, err := s.db.Exec(`DELETE FROM timer_state WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("clear timer state: %w", err)
	}
	return nil
}
