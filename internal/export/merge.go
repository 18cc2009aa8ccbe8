package export

import "github.com/mkrenz/stechuhr/internal/store"

// Merge returns the imported entries that are not already present,
// comparing on the (date, startTime, endTime) triple. Ids are ignored so
// a re-import of the same file is a no-op.
func Merge(existing, imported []store.TimeEntry) []store.TimeEntry {
	type key struct {
		date, start, end string
	}
	seen := make(map[key]bool, len(existing))
	for _, e := range existing {
		seen[key{e.Date, e.StartTime, e.EndTime}] = true
	}

	var fresh []store.TimeEntry
	for _, e := range imported {
		k := key{e.Date, e.StartTime, e.EndTime}
		if seen[k] {
			continue
		}
		seen[k] = true
		fresh = append(fresh, e)
	}
	return fresh
}
