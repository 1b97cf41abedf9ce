package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/kidclock/internal/observability"
)

// DefaultRelay is prepended to the escaped feed URL when the direct fetch
// fails, usually because the calendar host refuses cross-origin requests.
const DefaultRelay = "https://api.allorigins.win/raw?url="

// maxFeed caps a downloaded calendar.
const maxFeed = 8 << 20

// ErrFetch is returned when both the direct and the relayed fetch fail.
var ErrFetch = errors.New("fetch calendar")

// Fetcher downloads calendar feeds.
type Fetcher struct {
	client *http.Client
	relay  string
	logger *slog.Logger
}

// NewFetcher returns a Fetcher. A nil client gets a 15s timeout and an empty
// relay falls back to DefaultRelay.
func NewFetcher(client *http.Client, relay string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if relay == "" {
		relay = DefaultRelay
	}
	if logger == nil {
		logger = discard()
	}
	return &Fetcher{client: client, relay: relay, logger: logger}
}

// Fetch returns the raw calendar text at feedURL. A transport error or a
// non-2xx answer triggers exactly one retry through the relay.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	feedURL = normalizeFeedURL(feedURL)
	body, directErr := f.get(ctx, feedURL)
	if directErr == nil {
		return body, nil
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
	}

	f.logger.Warn("direct calendar fetch failed, retrying through relay",
		"url", feedURL, "error", directErr)
	observability.RecordRelayFallback()

	body, relayErr := f.get(ctx, f.relay+url.QueryEscape(feedURL))
	if relayErr != nil {
		return "", fmt.Errorf("%w: direct: %v; relay: %w", ErrFetch, directErr, relayErr)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxFeed))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

// normalizeFeedURL rewrites webcal:// subscription links to https://.
func normalizeFeedURL(feedURL string) string {
	if rest, ok := strings.CutPrefix(feedURL, "webcal://"); ok {
		return "https://" + rest
	}
	return feedURL
}
