// Package export writes the current schedule to CSV or JSON, as a plan for
// the rest of the day.
package export

import (
	"fmt"
	"time"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/timer"
)

// Row statuses.
const (
	StatusDone     = "done"
	StatusCurrent  = "current"
	StatusUpcoming = "upcoming"
)

type row struct {
	Index    int
	ID       string
	Name     string
	Icon     string
	Seconds  int
	Status   string
	StartsAt time.Time
	EndsAt   time.Time
}

// plan lays the schedule out on the clock from now: the current activity
// ends when its remaining time runs out and each later one follows at its
// full length. Finished activities have no times.
func plan(s timer.State, now time.Time) []row {
	rows := make([]row, 0, len(s.Schedule))
	cursor := now
	for i, item := range s.Schedule {
		r := row{
			Index:   i + 1,
			ID:      item.Activity,
			Seconds: item.Seconds(),
		}
		a := activity.Resolve(item.Activity)
		r.Name, r.Icon = a.Name, a.Icon

		switch {
		case i < s.CurrentIndex:
			r.Status = StatusDone
		case i == s.CurrentIndex:
			r.Status = StatusCurrent
			elapsed := max(0, r.Seconds-s.RemainingSeconds)
			r.StartsAt = cursor.Add(-time.Duration(elapsed) * time.Second)
			cursor = cursor.Add(time.Duration(max(0, s.RemainingSeconds)) * time.Second)
			r.EndsAt = cursor
		default:
			r.Status = StatusUpcoming
			r.StartsAt = cursor
			cursor = cursor.Add(time.Duration(max(0, r.Seconds)) * time.Second)
			r.EndsAt = cursor
		}
		rows = append(rows, r)
	}
	return rows
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
