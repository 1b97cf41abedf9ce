// Package calendar turns an iCalendar feed into today's schedule.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/sadopc/kidclock/internal/observability"
	"github.com/sadopc/kidclock/internal/timer"
)

// Import outcomes, as counted in metrics.
const (
	OutcomeImported = "imported"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeDisabled = "disabled"
)

// Importer runs the whole pipeline: fetch, parse, filter to today, map to
// activities.
type Importer struct {
	fetcher *Fetcher
	clock   clockwork.Clock
	logger  *slog.Logger
}

type Option func(*importerConfig)

type importerConfig struct {
	client *http.Client
	relay  string
	clock  clockwork.Clock
	logger *slog.Logger
}

func WithHTTPClient(c *http.Client) Option { return func(cfg *importerConfig) { cfg.client = c } }

// WithRelay overrides the relay prefix used for the fallback fetch.
func WithRelay(prefix string) Option { return func(cfg *importerConfig) { cfg.relay = prefix } }

func WithClock(c clockwork.Clock) Option { return func(cfg *importerConfig) { cfg.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(cfg *importerConfig) { cfg.logger = l } }

func NewImporter(opts ...Option) *Importer {
	cfg := importerConfig{clock: clockwork.NewRealClock(), logger: discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Importer{
		fetcher: NewFetcher(cfg.client, cfg.relay, cfg.logger),
		clock:   cfg.clock,
		logger:  cfg.logger,
	}
}

// FetchSchedule returns the candidate schedule for today from the feed at
// feedURL. The result may be empty.
func (im *Importer) FetchSchedule(ctx context.Context, feedURL string) ([]timer.ScheduleItem, error) {
	text, err := im.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	events, err := Parse(text)
	if err != nil {
		return nil, err
	}
	today := FilterToday(events, im.clock.Now())
	items := ToSchedule(today)
	im.logger.Debug("calendar parsed",
		"events", len(events), "today", len(today), "matched", len(items))
	return items, nil
}

// Sync imports today's schedule from the feed configured in m's settings.
// It reports whether the schedule was replaced. Nothing is mutated when the
// feed is unset, fails, or yields no usable events; a successful import also
// records the fetch time.
func (im *Importer) Sync(ctx context.Context, m *timer.Machine) (bool, error) {
	feedURL := m.Settings().IcalURL
	if feedURL == "" {
		observability.RecordImport(OutcomeDisabled)
		return false, nil
	}

	items, err := im.FetchSchedule(ctx, feedURL)
	if err != nil {
		observability.RecordImport(OutcomeError)
		im.logger.Error("calendar sync failed", "url", feedURL, "error", err)
		return false, fmt.Errorf("sync calendar: %w", err)
	}
	if !m.ImportSchedule(items) {
		observability.RecordImport(OutcomeEmpty)
		im.logger.Info("calendar has no usable events today", "url", feedURL)
		return false, nil
	}

	m.UpdateSettings(timer.SettingsPatch{LastIcalFetch: timer.UnixMillis(im.clock.Now())})
	observability.RecordImport(OutcomeImported)
	im.logger.Info("calendar imported", "url", feedURL, "activities", len(items))
	return true, nil
}
