package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// MarkerFor returns the marker kind for a date, or "" when the date
// carries none.
func (s *Store) MarkerFor(date string) (MarkerKind, error) {
	var kind string
	err := s.db.QueryRow(`SELECT kind FROM day_markers WHERE date = ?`, date).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get marker %s: %w", date, err)
	}
	return MarkerKind(kind), nil
}

// SetMarker tags a date with a marker kind, replacing any previous kind.
// Exclusivity against work entries is the caller's concern; the store only
// guarantees one kind per date.
func (s *Store) SetMarker(date string, kind MarkerKind) error {
	_, err := s.db.Exec(
		`INSERT INTO day_markers (date, kind) VALUES (?, ?)
		 ON CONFLICT(date) DO UPDATE SET kind = excluded.kind`,
		date, string(kind),
	)
	if err != nil {
		return fmt.Errorf("set marker %s: %w", date, err)
	}
	return nil
}

// RemoveMarker untags a date; dates without a marker are a no-op.
func (s *Store) RemoveMarker(date string) error {
	_, err := s.db.Exec(`DELETE FROM day_markers WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("remove marker %s: %w", date, err)
	}
	return nil
}

// MarkersForMonth returns date -> kind for all marked dates with the
// given "2006-01" prefix.
func (s *Store) MarkersForMonth(month string) (map[string]MarkerKind, error) {
	rows, err := s.db.Query(`SELECT date, kind FROM day_markers WHERE date LIKE ? || '-%'`, month)
	if err != nil {
		return nil, fmt.Errorf("list markers for %s: %w", month, err)
	}
	defer rows.Close()

	markers := make(map[string]MarkerKind)
	for rows.Next() {
		var date, kind string
		if err := rows.Scan(&date, &kind); err != nil {
			return nil, err
		}
		markers[date] = MarkerKind(kind)
	}
	return markers, rows.Err()
}

// MarkerDates returns all dates carrying the given kind, ordered.
func (s *Store) MarkerDates(kind MarkerKind) ([]string, error) {
	rows, err := s.db.Query(`SELECT date FROM day_markers WHERE kind = ? ORDER BY date`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s dates: %w", kind, err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ReplaceMarkers swaps all markers of one kind for a new date list in one
// transaction. Used by the import-replace flow.
func (s *Store) ReplaceMarkers(kind MarkerKind, dates []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace markers: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM day_markers WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("clear %s markers: %w", kind, err)
	}
	for _, d := range dates {
		if _, err := tx.Exec(
			`INSERT INTO day_markers (date, kind) VALUES (?, ?)
			 ON CONFLICT(date) DO UPDATE SET kind = excluded.kind`,
			d, string(kind),
		); err != nil {
			return fmt.Errorf("insert %s marker %s: %w", kind, d, err)
		}
	}
	return tx.Commit()
}
