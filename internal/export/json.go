package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/kidclock/internal/timer"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Routine    string      `json:"routine"`
	Count      int         `json:"count"`
	Complete   bool        `json:"complete"`
	Entries    []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Index       int    `json:"index"`
	Activity    string `json:"activity"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Status      string `json:"status"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

func ToJSON(s timer.State, now time.Time, path string) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Routine:    s.CurrentRoutine,
		Count:      len(s.Schedule),
		Complete:   s.Done(),
		Entries:    []jsonEntry{},
	}

	for _, r := range plan(s, now) {
		export.Entries = append(export.Entries, jsonEntry{
			Index:       r.Index,
			Activity:    r.ID,
			Name:        r.Name,
			Icon:        r.Icon,
			DurationSec: r.Seconds,
			Duration:    formatDuration(r.Seconds),
			Status:      r.Status,
			StartTime:   formatClock(r.StartsAt),
			EndTime:     formatClock(r.EndsAt),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
