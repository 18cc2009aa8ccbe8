package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mkrenz/stechuhr/internal/store"
)

// Backup is the JSON export payload: the full entry collection plus the
// vacation/sick date sets.
type Backup struct {
	ExportedAt   string      `json:"exportedAt"`
	Entries      []jsonEntry `json:"entries"`
	VacationDays []string    `json:"vacationDays"`
	SickDays     []string    `json:"sickDays"`
}

type jsonEntry struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	BreakDuration int    `json:"breakDuration"`
	Duration      int    `json:"duration"`
	Description   string `json:"description,omitempty"`
}

// ToJSON writes a full backup to path.
func ToJSON(entries []store.TimeEntry, vacationDays, sickDays []string, path string) error {
	backup := Backup{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		VacationDays: vacationDays,
		SickDays:     sickDays,
	}
	for _, e := range entries {
		backup.Entries = append(backup.Entries, toJSONEntry(e))
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// Imported is the result of reading a JSON file: entries always, marker
// sets only when the payload bundled them.
type Imported struct {
	Entries      []store.TimeEntry
	VacationDays []string
	SickDays     []string
	HasMarkers   bool
}

// FromJSON reads either export shape: the full backup object or a bare
// entry array (the older format without marker sets). A malformed file is
// an error and nothing is returned.
func FromJSON(path string) (Imported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Imported{}, fmt.Errorf("read json file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Imported{}, fmt.Errorf("json file is empty")
	}

	// Older exports are a bare array of entries.
	if trimmed[0] == '[' {
		var raw []jsonEntry
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Imported{}, fmt.Errorf("parse json entries: %w", err)
		}
		return Imported{Entries: fromJSONEntries(raw)}, nil
	}

	var backup Backup
	if err := json.Unmarshal(trimmed, &backup); err != nil {
		return Imported{}, fmt.Errorf("parse json backup: %w", err)
	}
	if backup.Entries == nil {
		return Imported{}, fmt.Errorf("json backup has no entries key")
	}
	return Imported{
		Entries:      fromJSONEntries(backup.Entries),
		VacationDays: backup.VacationDays,
		SickDays:     backup.SickDays,
		HasMarkers:   backup.VacationDays != nil || backup.SickDays != nil,
	}, nil
}

func toJSONEntry(e store.TimeEntry) jsonEntry {
	return jsonEntry{
		ID:            e.ID,
		Date:          e.Date,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		BreakDuration: e.BreakDuration,
		Duration:      e.Duration,
		Description:   e.Description,
	}
}

func fromJSONEntries(raw []jsonEntry) []store.TimeEntry {
	var entries []store.TimeEntry
	for _, r := range raw {
		if r.Date == "" {
			continue
		}
		entries = append(entries, store.TimeEntry{
			ID:            r.ID,
			Date:          r.Date,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			BreakDuration: r.BreakDuration,
			Duration:      r.Duration,
			Description:   r.Description,
		})
	}
	return entries
}
