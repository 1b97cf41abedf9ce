package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewClock viewState = iota
	viewSchedule
	viewOverview
	viewSettings
)

var viewNames = []string{"Clock", "Schedule", "Overview", "Settings"}

// celebrationTicks is how many seconds the finished-activity screen stays up
// before the next activity starts.
const celebrationTicks = 3

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type syncDoneMsg struct {
	imported bool
	err      error
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatCountdown renders seconds as MM:SS, or H:MM:SS past an hour.
func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(secs int) string {
	return fmt.Sprintf("%d min", (secs+59)/60)
}
