package calendar

import (
	"math"
	"slices"
	"time"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/timer"
)

// FilterToday keeps the events starting on now's local calendar day, from
// midnight inclusive to the next midnight exclusive, sorted by start. Equal
// starts keep their feed order and duplicates are kept.
func FilterToday(events []Event, now time.Time) []Event {
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var today []Event
	for _, ev := range events {
		if !ev.Start.Before(dayStart) && ev.Start.Before(dayEnd) {
			today = append(today, ev)
		}
	}
	slices.SortStableFunc(today, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})
	return today
}

// ToSchedule maps events to schedule items. Durations are rounded to whole
// minutes with a floor of one; events that match no activity are dropped.
func ToSchedule(events []Event) []timer.ScheduleItem {
	var items []timer.ScheduleItem
	for _, ev := range events {
		id, ok := activity.MatchFreeText(ev.Summary)
		if !ok {
			continue
		}
		minutes := max(1, int(math.Round(ev.End.Sub(ev.Start).Minutes())))
		items = append(items, timer.ScheduleItem{
			Activity:     id,
			Duration:     minutes,
			TotalSeconds: minutes * 60,
		})
	}
	return items
}
