package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the persistence boundary of the application. Every durable
// piece of state (time entries, the timer slot, vacation/sick markers,
// settings) lives behind it.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS time_entries (
		id             TEXT PRIMARY KEY,
		date           TEXT NOT NULL,
		start_time     TEXT NOT NULL DEFAULT '',
		end_time       TEXT NOT NULL DEFAULT '',
		break_minutes  INTEGER NOT NULL DEFAULT 0,
		duration       INTEGER NOT NULL DEFAULT 0,
		description    TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date ON time_entries(date);

	-- At most one timer exists; the slot is a single fixed row.
	CREATE TABLE IF NOT EXISTS timer_state (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		is_running   INTEGER NOT NULL DEFAULT 0,
		start_ts     INTEGER,
		end_ts       INTEGER,
		date         TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS day_markers (
		date  TEXT PRIMARY KEY,
		kind  TEXT NOT NULL CHECK (kind IN ('vacation', 'sick'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('user_name',     ''),
		('user_company',  ''),
		('default_break', '30');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/stechuhr/stechuhr.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "stechuhr", "stechuhr.db"), nil
}
