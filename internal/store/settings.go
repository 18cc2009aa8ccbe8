package store

import (
	"fmt"
	"strconv"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetUserInfo returns the name/company shown on report headers.
func (s *Store) GetUserInfo() (UserInfo, error) {
	name, err := s.GetSetting("user_name")
	if err != nil {
		return UserInfo{}, err
	}
	company, err := s.GetSetting("user_company")
	if err != nil {
		return UserInfo{}, err
	}
	return UserInfo{Name: name, Company: company}, nil
}

func (s *Store) SetUserInfo(info UserInfo) error {
	if err := s.SetSetting("user_name", info.Name); err != nil {
		return err
	}
	return s.SetSetting("user_company", info.Company)
}

// DefaultBreak returns the break minutes pre-filled when a timer session
// is turned into an entry. Falls back to 30 on unreadable values.
func (s *Store) DefaultBreak() int {
	v, err := s.GetSetting("default_break")
	if err != nil {
		return 30
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 30
	}
	return n
}

func (s *Store) SetDefaultBreak(minutes int) error {
	if minutes < 0 {
		minutes = 0
	}
	return s.SetSetting("default_break", strconv.Itoa(minutes))
}
