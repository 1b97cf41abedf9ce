package timer

import (
	"io"
	"log/slog"
	"sync"

	"github.com/sadopc/kidclock/internal/activity"
)

// Machine owns the timer state and settings. Every operation replaces the
// state atomically and then publishes the new value to observers, outside the
// lock.
type Machine struct {
	mu       sync.Mutex
	state    State
	settings Settings

	logger           *slog.Logger
	stateObservers    []func(State)
	settingsObservers []func(Settings)
}

type Option func(*Machine)

// WithLogger sets the logger used for schedule validation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New returns a Machine seeded with the given state and settings.
func New(state State, settings Settings, opts ...Option) *Machine {
	m := &Machine{
		state:    state.Clone(),
		settings: settings.Clone(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnState registers fn to receive every new state.
func (m *Machine) OnState(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateObservers = append(m.stateObservers, fn)
}

// OnSettings registers fn to receive every new settings value.
func (m *Machine) OnSettings(fn func(Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settingsObservers = append(m.settingsObservers, fn)
}

// update applies fn under the lock and publishes the result.
func (m *Machine) update(fn func(s *State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state.Clone()
	observers := m.stateObservers
	m.mu.Unlock()

	for _, o := range observers {
		o(snapshot.Clone())
	}
}

func (m *Machine) updateSettings(fn func(s *Settings)) {
	m.mu.Lock()
	fn(&m.settings)
	snapshot := m.settings.Clone()
	observers := m.settingsObservers
	m.mu.Unlock()

	for _, o := range observers {
		o(snapshot.Clone())
	}
}

// LoadRoutine installs a built-in routine, paused at its first activity.
// Unknown keys are ignored and reported as false.
func (m *Machine) LoadRoutine(key string) bool {
	r, ok := activity.LookupRoutine(key)
	if !ok {
		return false
	}
	items := stamp(fromSteps(r.Steps))
	m.update(func(s *State) {
		s.CurrentRoutine = r.Key
		install(s, items)
	})
	return true
}

// SetSchedule installs items as the custom schedule, paused at the start.
// Items are not validated; non-positive durations are logged and kept.
func (m *Machine) SetSchedule(items []ScheduleItem) {
	for i, it := range items {
		if it.Duration <= 0 {
			m.logger.Warn("schedule item has non-positive duration",
				"index", i, "activity", it.Activity, "duration", it.Duration)
		}
	}
	stamped := stamp(items)
	m.update(func(s *State) {
		s.CurrentRoutine = CustomRoutine
		install(s, stamped)
	})
}

// ImportSchedule installs a candidate schedule unless it is empty. It
// returns false when there was nothing to import.
func (m *Machine) ImportSchedule(items []ScheduleItem) bool {
	if len(items) == 0 {
		return false
	}
	m.SetSchedule(items)
	return true
}

func install(s *State, items []ScheduleItem) {
	s.Schedule = items
	s.CurrentIndex = 0
	s.RemainingSeconds = max(0, firstTotal(items))
	s.IsPaused = true
}

func (m *Machine) TogglePause() {
	m.update(func(s *State) { s.IsPaused = !s.IsPaused })
}

// Skip zeroes the countdown so the next tick reports a transition.
func (m *Machine) Skip() {
	m.update(func(s *State) { s.RemainingSeconds = 0 })
}

// AddTime extends the current activity. The item's ceiling is raised to the
// new remaining time when needed and never lowered.
func (m *Machine) AddTime(minutes int) {
	m.update(func(s *State) {
		remaining := s.RemainingSeconds + max(0, minutes)*60
		s.RemainingSeconds = remaining
		if s.CurrentIndex >= 0 && s.CurrentIndex < len(s.Schedule) {
			item := &s.Schedule[s.CurrentIndex]
			if item.TotalSeconds < remaining {
				item.TotalSeconds = remaining
			}
		}
	})
}

// Restart rewinds to the first activity without touching the schedule. The
// countdown is the first item's stamped total, or 0 when it was never stamped.
func (m *Machine) Restart() {
	m.update(func(s *State) {
		s.CurrentIndex = 0
		s.RemainingSeconds = 0
		if len(s.Schedule) > 0 {
			s.RemainingSeconds = max(0, s.Schedule[0].TotalSeconds)
		}
		s.IsPaused = true
	})
}

// AdvanceToNext moves to the following activity and resumes the countdown.
// Past the last activity the state becomes terminal: index equals the
// schedule length, paused, zero remaining.
func (m *Machine) AdvanceToNext() {
	m.update(func(s *State) {
		next := s.CurrentIndex + 1
		if next >= len(s.Schedule) {
			s.CurrentIndex = len(s.Schedule)
			s.RemainingSeconds = 0
			s.IsPaused = true
			return
		}
		s.CurrentIndex = next
		s.RemainingSeconds = max(0, s.Schedule[next].Seconds())
		s.IsPaused = false
	})
}

// Tick advances the countdown by one second. It returns true when the
// current activity has run out and the caller should call AdvanceToNext.
func (m *Machine) Tick() bool {
	m.mu.Lock()
	paused, remaining := m.state.IsPaused, m.state.RemainingSeconds
	m.mu.Unlock()

	if paused {
		return false
	}
	if remaining > 0 {
		m.update(func(s *State) {
			if !s.IsPaused && s.RemainingSeconds > 0 {
				s.RemainingSeconds--
			}
		})
		return false
	}
	return true
}

// Replace installs a whole state, as loaded from a store.
func (m *Machine) Replace(s State) {
	s = s.Clone()
	m.update(func(cur *State) { *cur = s })
}

func (m *Machine) ReplaceSettings(s Settings) {
	s = s.Clone()
	m.updateSettings(func(cur *Settings) { *cur = s })
}

// UpdateSettings merges the set fields of p into the current settings.
func (m *Machine) UpdateSettings(p SettingsPatch) {
	m.updateSettings(func(s *Settings) {
		if p.IcalURL != nil {
			s.IcalURL = *p.IcalURL
		}
		if p.IcalRefreshMinutes != nil {
			s.IcalRefreshMinutes = *p.IcalRefreshMinutes
		}
		if p.LastIcalFetch != nil {
			v := *p.LastIcalFetch
			s.LastIcalFetch = &v
		}
	})
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *Machine) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Clone()
}

func (m *Machine) Current() (Slot, bool) { return CurrentOf(m.State()) }
func (m *Machine) Next() (Slot, bool)    { return NextOf(m.State()) }
func (m *Machine) Then() (Slot, bool)    { return ThenOf(m.State()) }
func (m *Machine) Progress() float64     { return ProgressOf(m.State()) }
