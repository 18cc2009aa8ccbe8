package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkrenz/stechuhr/internal/store"
)

func sampleEntries() []store.TimeEntry {
	return []store.TimeEntry{
		{
			ID:            "a1",
			Date:          "2024-05-01",
			StartTime:     "09:00",
			EndTime:       "17:30",
			BreakDuration: 30,
			Duration:      510,
			Description:   `worked on "reports", mostly`,
		},
		{
			ID:        "a2",
			Date:      "2024-05-02",
			StartTime: "22:00",
			EndTime:   "02:00",
			Duration:  240,
		},
		{
			ID:   "a3",
			Date: "2024-05-03", // placeholder, no clocks
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	in := sampleEntries()

	if err := ToCSV(in, path); err != nil {
		t.Fatal(err)
	}

	out, err := FromCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("entry %d mismatch:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}
}

func TestCSVEscapesDescriptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := ToCSV(sampleEntries(), path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)
	if !strings.Contains(content, `"worked on ""reports"", mostly"`) {
		t.Fatalf("quotes not escaped:\n%s", content)
	}
	if !strings.HasPrefix(content, "ID,Date,Start Time,End Time") {
		t.Fatalf("missing header:\n%s", content)
	}
}

func TestFromCSVSkipsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.csv")
	content := strings.Join([]string{
		"ID,Date,Start Time,End Time,Break Duration (minutes),Description,Total Duration (minutes)",
		"x1,2024-05-01,09:00,17:00,30,ok,480",
		",,09:00,17:00,30,missing date,480", // skipped: no date
		"short,row",                         // skipped: too few columns
		",2024-05-02,08:00,12:00,notanumber,bad break,240", // break defaults to 0
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := FromCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].BreakDuration != 0 || entries[1].Duration != 240 {
		t.Fatalf("numeric defaulting failed: %+v", entries[1])
	}
	if entries[1].ID != "" {
		t.Fatal("missing id must stay empty for the store to assign")
	}
}

func TestFromCSVNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	os.WriteFile(path, []byte("ID,Date\n"), 0o644)

	if _, err := FromCSV(path); err == nil {
		t.Fatal("expected error for csv without data rows")
	}
}

// ============================================================
// JSON
// ============================================================

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	in := sampleEntries()
	vac := []string{"2024-05-10"}
	sick := []string{"2024-05-11", "2024-05-12"}

	if err := ToJSON(in, vac, sick, path); err != nil {
		t.Fatal(err)
	}

	got, err := FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.HasMarkers {
		t.Fatal("expected bundled marker sets to be detected")
	}
	if len(got.Entries) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(got.Entries))
	}
	for i := range in {
		if got.Entries[i] != in[i] {
			t.Errorf("entry %d mismatch:\n got %+v\nwant %+v", i, got.Entries[i], in[i])
		}
	}
	if len(got.VacationDays) != 1 || got.VacationDays[0] != "2024-05-10" {
		t.Fatalf("unexpected vacation days: %v", got.VacationDays)
	}
	if len(got.SickDays) != 2 {
		t.Fatalf("unexpected sick days: %v", got.SickDays)
	}
}

func TestFromJSONBareArray(t *testing.T) {
	// The older export format is a plain entry array without marker sets.
	path := filepath.Join(t.TempDir(), "old.json")
	content := `[
		{"id":"x","date":"2024-05-01","startTime":"09:00","endTime":"17:00","breakDuration":30,"duration":480},
		{"date":"2024-05-02","startTime":"","endTime":"","breakDuration":0,"duration":0}
	]`
	os.WriteFile(path, []byte(content), 0o644)

	got, err := FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.HasMarkers {
		t.Fatal("bare array must not report marker sets")
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Duration != 480 {
		t.Fatalf("unexpected entry: %+v", got.Entries[0])
	}
}

func TestFromJSONDropsDatelessEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.json")
	content := `[{"date":"2024-05-01","duration":60},{"duration":120}]`
	os.WriteFile(path, []byte(content), 0o644)

	got, err := FromJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("expected dateless entry dropped, got %d entries", len(got.Entries))
	}
}

func TestFromJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"entries": [`), 0o644)

	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected error for malformed json")
	}

	os.WriteFile(path, []byte(`{"something":"else"}`), 0o644)
	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected error for payload without entries")
	}

	os.WriteFile(path, []byte(``), 0o644)
	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

// ============================================================
// Merge
// ============================================================

func TestMergeDedupsOnTriple(t *testing.T) {
	existing := []store.TimeEntry{
		{ID: "a", Date: "2024-05-01", StartTime: "09:00", EndTime: "17:00"},
	}
	imported := []store.TimeEntry{
		{ID: "other-id", Date: "2024-05-01", StartTime: "09:00", EndTime: "17:00"}, // dup, id ignored
		{ID: "b", Date: "2024-05-01", StartTime: "18:00", EndTime: "19:00"},
		{ID: "c", Date: "2024-05-02", StartTime: "09:00", EndTime: "17:00"},
		{ID: "c2", Date: "2024-05-02", StartTime: "09:00", EndTime: "17:00"}, // dup within import
	}

	fresh := Merge(existing, imported)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh entries, got %d", len(fresh))
	}
	if fresh[0].ID != "b" || fresh[1].ID != "c" {
		t.Fatalf("unexpected merge result: %+v", fresh)
	}
}

func TestMergeEmptyExisting(t *testing.T) {
	imported := sampleEntries()
	fresh := Merge(nil, imported)
	if len(fresh) != len(imported) {
		t.Fatalf("expected all entries fresh, got %d", len(fresh))
	}
}
