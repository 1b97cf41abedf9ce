package timer

import (
	"time"

	"github.com/sadopc/kidclock/internal/activity"
)

// CustomRoutine tags a schedule installed by manual edit or calendar import.
const CustomRoutine = "custom"

// DefaultRefreshMinutes is the advisory calendar refresh interval.
const DefaultRefreshMinutes = 60

type ScheduleItem struct {
	Activity     string `json:"activity"`
	Duration     int    `json:"duration"` // minutes
	TotalSeconds int    `json:"totalSeconds,omitempty"`
}

// Seconds returns the countdown ceiling for the item, falling back to the
// nominal duration when the item was never stamped.
func (i ScheduleItem) Seconds() int {
	if i.TotalSeconds != 0 {
		return i.TotalSeconds
	}
	return i.Duration * 60
}

// State is the persisted root of the timer. Field names match the key/value
// server's JSON documents.
type State struct {
	CurrentRoutine   string         `json:"currentRoutine"`
	Schedule         []ScheduleItem `json:"schedule"`
	CurrentIndex     int            `json:"currentIndex"`
	RemainingSeconds int            `json:"remainingSeconds"`
	IsPaused         bool           `json:"isPaused"`
	LastTick         *int64         `json:"lastTick"` // unix ms
}

type Settings struct {
	IcalURL            string `json:"icalUrl"`
	IcalRefreshMinutes int    `json:"icalRefreshMinutes"`
	LastIcalFetch      *int64 `json:"lastIcalFetch"` // unix ms
}

// SettingsPatch holds the fields to merge into Settings; nil fields are kept.
type SettingsPatch struct {
	IcalURL            *string
	IcalRefreshMinutes *int
	LastIcalFetch      *int64
}

// DefaultState returns the first-run state: the default routine, paused.
func DefaultState() State {
	r, _ := activity.LookupRoutine(activity.DefaultRoutine)
	items := stamp(fromSteps(r.Steps))
	return State{
		CurrentRoutine:   r.Key,
		Schedule:         items,
		CurrentIndex:     0,
		RemainingSeconds: firstTotal(items),
		IsPaused:         true,
	}
}

func DefaultSettings() Settings {
	return Settings{IcalRefreshMinutes: DefaultRefreshMinutes}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	if s.Schedule != nil {
		items := make([]ScheduleItem, len(s.Schedule))
		copy(items, s.Schedule)
		s.Schedule = items
	}
	if s.LastTick != nil {
		v := *s.LastTick
		s.LastTick = &v
	}
	return s
}

func (s Settings) Clone() Settings {
	if s.LastIcalFetch != nil {
		v := *s.LastIcalFetch
		s.LastIcalFetch = &v
	}
	return s
}

// Done reports whether every scheduled activity has been consumed.
func (s State) Done() bool {
	return s.CurrentIndex >= len(s.Schedule)
}

// UnixMillis converts t to the persisted timestamp representation.
func UnixMillis(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

// FromMillis converts a persisted timestamp back to a time. ok is false for null.
func FromMillis(ms *int64) (t time.Time, ok bool) {
	if ms == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*ms), true
}

func fromSteps(steps []activity.Step) []ScheduleItem {
	items := make([]ScheduleItem, 0, len(steps))
	for _, s := range steps {
		items = append(items, ScheduleItem{Activity: s.Activity, Duration: s.Minutes})
	}
	return items
}

// stamp copies items, setting TotalSeconds from Duration.
func stamp(items []ScheduleItem) []ScheduleItem {
	out := make([]ScheduleItem, len(items))
	for i, it := range items {
		it.TotalSeconds = it.Duration * 60
		out[i] = it
	}
	return out
}

func firstTotal(items []ScheduleItem) int {
	if len(items) == 0 {
		return 0
	}
	return items[0].Seconds()
}
