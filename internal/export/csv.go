package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/mkrenz/stechuhr/internal/store"
)

var csvHeader = []string{
	"ID",
	"Date",
	"Start Time",
	"End Time",
	"Break Duration (minutes)",
	"Description",
	"Total Duration (minutes)",
}

// ToCSV writes the entries to a CSV file at path.
func ToCSV(entries []store.TimeEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Date,
			e.StartTime,
			e.EndTime,
			strconv.Itoa(e.BreakDuration),
			e.Description,
			strconv.Itoa(e.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// FromCSV parses a CSV file previously written by ToCSV (or a compatible
// spreadsheet export). Rows missing a date are skipped; numeric fields
// default to zero; a missing id stays empty for the store to assign.
// A file without a single parseable data row is an error and nothing is
// returned.
func FromCSV(path string) ([]store.TimeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short rows, validated below

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv file has no data rows")
	}

	var entries []store.TimeEntry
	for _, rec := range records[1:] { // skip header
		if len(rec) < 7 {
			continue
		}
		e := store.TimeEntry{
			ID:          rec[0],
			Date:        rec[1],
			StartTime:   rec[2],
			EndTime:     rec[3],
			Description: rec[5],
		}
		if e.Date == "" {
			continue
		}
		e.BreakDuration, _ = strconv.Atoi(rec[4])
		e.Duration, _ = strconv.Atoi(rec[6])
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("csv file contains no valid entries")
	}
	return entries, nil
}
