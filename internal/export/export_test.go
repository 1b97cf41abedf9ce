package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/kidclock/internal/timer"
)

var exportNow = time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)

func sampleState() timer.State {
	return timer.State{
		CurrentRoutine: timer.CustomRoutine,
		Schedule: []timer.ScheduleItem{
			{Activity: "play", Duration: 30, TotalSeconds: 1800},
			{Activity: "dinner", Duration: 20, TotalSeconds: 1200},
			{Activity: "piano", Duration: 10},
		},
		CurrentIndex:     1,
		RemainingSeconds: 600,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

// ============================================================
// Plan
// ============================================================

func TestPlanTimes(t *testing.T) {
	rows := plan(sampleState(), exportNow)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].Status != StatusDone || !rows[0].StartsAt.IsZero() {
		t.Fatalf("first row should be done without times: %+v", rows[0])
	}

	cur := rows[1]
	if cur.Status != StatusCurrent {
		t.Fatalf("status = %q, want current", cur.Status)
	}
	if !cur.StartsAt.Equal(exportNow.Add(-10*time.Minute)) || !cur.EndsAt.Equal(exportNow.Add(10*time.Minute)) {
		t.Fatalf("current window = %v..%v", cur.StartsAt, cur.EndsAt)
	}

	next := rows[2]
	if next.Status != StatusUpcoming {
		t.Fatalf("status = %q, want upcoming", next.Status)
	}
	if !next.StartsAt.Equal(cur.EndsAt) || !next.EndsAt.Equal(exportNow.Add(20*time.Minute)) {
		t.Fatalf("upcoming window = %v..%v", next.StartsAt, next.EndsAt)
	}
	if next.Seconds != 600 {
		t.Fatalf("unstamped item seconds = %d, want 600", next.Seconds)
	}
}

func TestPlanCompleteDay(t *testing.T) {
	s := sampleState()
	s.CurrentIndex = len(s.Schedule)
	s.RemainingSeconds = 0
	for _, r := range plan(s, exportNow) {
		if r.Status != StatusDone {
			t.Fatalf("row %d status = %q, want done", r.Index, r.Status)
		}
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	if err := ToCSV(sampleState(), exportNow, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"#", "Activity", "Name", "Icon", "Duration (s)", "Duration", "Status", "Start", "End"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[2]
	if row[0] != "2" || row[1] != "dinner" || row[2] != "DINNER" {
		t.Fatalf("unexpected dinner row: %v", row)
	}
	if row[4] != "1200" || row[5] != "00:20:00" {
		t.Fatalf("duration = %q / %q", row[4], row[5])
	}
	if !mustTime(t, row[7]).Equal(exportNow.Add(-10 * time.Minute)) {
		t.Fatalf("start = %q", row[7])
	}

	// Done rows have no times
	if records[1][7] != "" || records[1][8] != "" {
		t.Fatalf("done row should have empty times: %v", records[1])
	}

	// Unknown activity gets the synthesized name
	if records[3][2] != "PIANO" || records[3][3] != "❓" {
		t.Fatalf("unknown activity row = %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(timer.State{}, exportNow, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(sampleState(), exportNow, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := ToJSON(sampleState(), exportNow, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got jsonExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if got.Count != 3 || len(got.Entries) != 3 {
		t.Fatalf("count = %d, entries = %d", got.Count, len(got.Entries))
	}
	if got.Routine != timer.CustomRoutine {
		t.Fatalf("routine = %q", got.Routine)
	}
	if got.Complete {
		t.Fatal("day should not be complete")
	}
	if got.ExportedAt != "2026-03-14T18:00:00Z" {
		t.Fatalf("exported_at = %q", got.ExportedAt)
	}

	e := got.Entries[0]
	if e.Name != "PLAY" || e.Status != StatusDone || e.StartTime != "" {
		t.Fatalf("unexpected first entry: %+v", e)
	}
	if got.Entries[2].Duration != "00:10:00" {
		t.Fatalf("duration = %q", got.Entries[2].Duration)
	}
}

func TestToJSONEmptyHasEntriesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(timer.State{}, exportNow, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["entries"]) != "[]" {
		t.Fatalf("entries = %s, want []", raw["entries"])
	}
	if string(raw["complete"]) != "true" {
		t.Fatalf("empty schedule should be complete, got %s", raw["complete"])
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleState(), exportNow, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}
