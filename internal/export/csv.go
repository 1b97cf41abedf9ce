package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/kidclock/internal/timer"
)

func ToCSV(s timer.State, now time.Time, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"#", "Activity", "Name", "Icon", "Duration (s)", "Duration", "Status", "Start", "End"}); err != nil {
		return err
	}

	for _, r := range plan(s, now) {
		row := []string{
			strconv.Itoa(r.Index),
			r.ID,
			r.Name,
			r.Icon,
			strconv.Itoa(r.Seconds),
			formatDuration(r.Seconds),
			r.Status,
			formatClock(r.StartsAt),
			formatClock(r.EndsAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
