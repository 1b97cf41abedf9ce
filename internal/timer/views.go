package timer

import "github.com/sadopc/kidclock/internal/activity"

// Slot is a scheduled item joined with its catalog metadata.
type Slot struct {
	activity.Activity
	Item  ScheduleItem
	Index int
}

func slotAt(s State, i int) (Slot, bool) {
	if i < 0 || i >= len(s.Schedule) {
		return Slot{}, false
	}
	item := s.Schedule[i]
	return Slot{Activity: activity.Resolve(item.Activity), Item: item, Index: i}, true
}

// CurrentOf returns the activity being counted down, if any.
func CurrentOf(s State) (Slot, bool) { return slotAt(s, s.CurrentIndex) }

// NextOf returns the activity after the current one, if any.
func NextOf(s State) (Slot, bool) { return slotAt(s, s.CurrentIndex+1) }

// ThenOf returns the activity two places after the current one, if any.
func ThenOf(s State) (Slot, bool) { return slotAt(s, s.CurrentIndex+2) }

// ProgressOf returns the remaining fraction of the current activity in [0, 1].
// It is 0 when there is no current activity or its ceiling is not positive.
func ProgressOf(s State) float64 {
	cur, ok := CurrentOf(s)
	if !ok {
		return 0
	}
	total := cur.Item.Seconds()
	if total <= 0 {
		return 0
	}
	p := float64(s.RemainingSeconds) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
