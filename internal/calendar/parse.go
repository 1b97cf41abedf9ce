package calendar

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is a calendar entry reduced to what the import needs.
type Event struct {
	Summary string
	Start   time.Time
	End     time.Time
}

// Parse decodes iCalendar text. Events whose start or end cannot be resolved
// are dropped. An end may come from DTEND or from DTSTART plus DURATION.
func Parse(text string) ([]Event, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var events []Event
	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			d, ok := eventDuration(ev)
			if !ok {
				continue
			}
			end = start.Add(d)
		}
		var summary string
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = p.Value
		}
		events = append(events, Event{Summary: summary, Start: start, End: end})
	}
	return events, nil
}

func eventDuration(ev *ics.VEvent) (time.Duration, bool) {
	p := ev.GetProperty(ics.ComponentProperty(ics.PropertyDuration))
	if p == nil {
		return 0, false
	}
	return parseISODuration(p.Value)
}

// parseISODuration handles the RFC 5545 dur-value forms: P1W, P1D, PT1H30M,
// P1DT2H, with an optional sign.
func parseISODuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 3 {
		return 0, false
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	n, digits := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
			digits++
			continue
		case r == 'T':
			if inTime || digits > 0 {
				return 0, false
			}
			inTime = true
			continue
		}
		if digits == 0 {
			return 0, false
		}
		var unit time.Duration
		switch {
		case r == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			unit = 24 * time.Hour
		case r == 'H' && inTime:
			unit = time.Hour
		case r == 'M' && inTime:
			unit = time.Minute
		case r == 'S' && inTime:
			unit = time.Second
		default:
			return 0, false
		}
		total += time.Duration(n) * unit
		n, digits = 0, 0
	}
	if digits > 0 {
		return 0, false
	}
	return sign * total, true
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
