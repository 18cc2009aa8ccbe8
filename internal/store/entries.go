package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkrenz/stechuhr/internal/timecalc"
)

// AddEntry inserts a new time entry and returns its id. Missing fields are
// defaulted: a fresh uuid, today's date, zero break. When both clocks are
// present the cached duration is recomputed; otherwise any duration the
// draft carries (e.g. from an import) is stored as-is.
func (s *Store) AddEntry(draft TimeEntry) (string, error) {
	e := draft
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date == "" {
		e.Date = timecalc.CurrentDate()
	}
	if e.StartTime != "" && e.EndTime != "" {
		e.Duration = timecalc.CalculateDuration(e.StartTime, e.EndTime)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO time_entries (id, date, start_time, end_time, break_minutes, duration, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.StartTime, e.EndTime, e.BreakDuration, e.Duration, e.Description, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	return e.ID, nil
}

// UpdateEntry merges patch into the entry with the given id and recomputes
// the cached duration when either clock was touched. Unknown ids are a
// silent no-op.
func (s *Store) UpdateEntry(id string, patch EntryPatch) error {
	e, err := s.GetEntry(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.StartTime != nil {
		e.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		e.EndTime = *patch.EndTime
	}
	if patch.BreakDuration != nil {
		e.BreakDuration = *patch.BreakDuration
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.StartTime != nil || patch.EndTime != nil {
		e.Duration = timecalc.CalculateDuration(e.StartTime, e.EndTime)
	}

	_, err = s.db.Exec(
		`UPDATE time_entries SET date = ?, start_time = ?, end_time = ?, break_minutes = ?, duration = ?, description = ?
		 WHERE id = ?`,
		e.Date, e.StartTime, e.EndTime, e.BreakDuration, e.Duration, e.Description, id,
	)
	if err != nil {
		return fmt.Errorf("update entry %s: %w", id, err)
	}
	return nil
}

// DeleteEntry removes the entry with the given id; absent ids are a no-op.
func (s *Store) DeleteEntry(id string) error {
	_, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// GetEntry returns the entry with the given id, or sql.ErrNoRows wrapped
// when absent.
func (s *Store) GetEntry(id string) (TimeEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, date, start_time, end_time, break_minutes, duration, description, created_at
		 FROM time_entries WHERE id = ?`, id,
	)
	e, err := scanEntry(row)
	if err != nil {
		return TimeEntry{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

// EntriesForDate returns all entries whose date matches exactly, ordered
// by start clock ascending (empty clocks first).
func (s *Store) EntriesForDate(date string) ([]TimeEntry, error) {
	return s.queryEntries(
		`SELECT id, date, start_time, end_time, break_minutes, duration, description, created_at
		 FROM time_entries WHERE date = ? ORDER BY start_time`, date,
	)
}

// EntriesForMonth returns all entries whose date carries the "2006-01"
// prefix, ordered by date and start clock.
func (s *Store) EntriesForMonth(month string) ([]TimeEntry, error) {
	return s.queryEntries(
		`SELECT id, date, start_time, end_time, break_minutes, duration, description, created_at
		 FROM time_entries WHERE date LIKE ? || '-%' ORDER BY date, start_time`, month,
	)
}

// AllEntries returns the full collection, ordered by date and start clock.
func (s *Store) AllEntries() ([]TimeEntry, error) {
	return s.queryEntries(
		`SELECT id, date, start_time, end_time, break_minutes, duration, description, created_at
		 FROM time_entries ORDER BY date, start_time`,
	)
}

// ReplaceEntries swaps the whole collection in one transaction, applying
// the same defaulting as AddEntry to each incoming entry. Used by the
// import-replace flow; on error the previous collection is untouched.
func (s *Store) ReplaceEntries(entries []TimeEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM time_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Date == "" {
			e.Date = timecalc.CurrentDate()
		}
		if e.StartTime != "" && e.EndTime != "" {
			e.Duration = timecalc.CalculateDuration(e.StartTime, e.EndTime)
		}
		if _, err := tx.Exec(
			`INSERT INTO time_entries (id, date, start_time, end_time, break_minutes, duration, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Date, e.StartTime, e.EndTime, e.BreakDuration, e.Duration, e.Description, now,
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) queryEntries(query string, args ...any) ([]TimeEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (TimeEntry, error) {
	var e TimeEntry
	var createdAt string
	err := row.Scan(&e.ID, &e.Date, &e.StartTime, &e.EndTime, &e.BreakDuration, &e.Duration, &e.Description, &createdAt)
	if err != nil {
		return TimeEntry{}, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}
