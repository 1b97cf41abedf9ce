package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/kidclock/internal/config"
	"github.com/sadopc/kidclock/internal/store"
)

// isolate keeps config lookups away from the developer's real files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("KIDCLOCK_CONFIG_PATH", home)
	t.Chdir(home)
	return t.TempDir()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// todayFeed serves two events early today in local time.
func todayFeed(t *testing.T) *httptest.Server {
	t.Helper()
	y, m, d := time.Now().Date()
	at := func(h, min int) string {
		return time.Date(y, m, d, h, min, 0, 0, time.Local).UTC().Format("20060102T150405Z")
	}
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//kidclock//test//EN",
		"BEGIN:VEVENT", "UID:1", "DTSTAMP:20260301T000000Z", "SUMMARY:Story",
		"DTSTART:" + at(0, 40), "DTEND:" + at(0, 50), "END:VEVENT",
		"BEGIN:VEVENT", "UID:2", "DTSTAMP:20260301T000000Z", "SUMMARY:Bath time",
		"DTSTART:" + at(0, 20), "DTEND:" + at(0, 35), "END:VEVENT",
		"END:VCALENDAR", "",
	}, "\r\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = io.WriteString(w, ics)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRegistersSubcommands(t *testing.T) {
	cmd := New()
	for _, name := range []string{"serve", "import", "routines"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, sub.Name())
	}
}

func TestRoutinesCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "routines")
	require.NoError(t, err)
	require.Contains(t, out, "Normal Day (normal)")
	require.Contains(t, out, "Weekend (weekend)")
	require.Contains(t, out, "PLAY")
	require.Contains(t, out, "30 min")
}

func TestImportCommand(t *testing.T) {
	dataDir := isolate(t)
	feed := todayFeed(t)

	out, err := run(t, "import", "--data-dir", dataDir, "--url", feed.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 2 activities")
	require.Less(t, strings.Index(out, "BATH"), strings.Index(out, "STORY"))

	s, err := store.New(filepath.Join(dataDir, "kidclock.db"))
	require.NoError(t, err)
	defer s.Close()

	state, err := s.Get(store.NamespaceState)
	require.NoError(t, err)
	require.Contains(t, string(state), `"activity":"bath"`)
	require.Contains(t, string(state), `"currentRoutine":"custom"`)

	settings, err := s.Get(store.NamespaceSettings)
	require.NoError(t, err)
	require.Contains(t, string(settings), feed.URL)
	require.NotContains(t, string(settings), `"lastIcalFetch":null`)
}

func TestImportCommandUsesSavedURL(t *testing.T) {
	dataDir := isolate(t)
	feed := todayFeed(t)

	_, err := run(t, "import", "--data-dir", dataDir, "--url", feed.URL)
	require.NoError(t, err)

	out, err := run(t, "import", "--data-dir", dataDir)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 2 activities")
}

// remoteServer is a kidclock server backed by an in-memory store.
func remoteServer(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()
	backend, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	srv := httptest.NewServer(newMux(backend, discard()))
	t.Cleanup(srv.Close)
	return backend, srv
}

func TestImportCommandUsesRemoteSettings(t *testing.T) {
	dataDir := isolate(t)
	feed := todayFeed(t)
	backend, srv := remoteServer(t)
	require.NoError(t, backend.Put(store.NamespaceSettings,
		[]byte(`{"icalUrl":"`+feed.URL+`","icalRefreshMinutes":15}`)))

	out, err := run(t, "import", "--data-dir", dataDir, "--remote", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 2 activities")

	settings, err := backend.Get(store.NamespaceSettings)
	require.NoError(t, err)
	require.Contains(t, string(settings), `"icalRefreshMinutes":15`)
	require.NotContains(t, string(settings), `"lastIcalFetch":null`)

	state, err := backend.Get(store.NamespaceState)
	require.NoError(t, err)
	require.Contains(t, string(state), `"activity":"bath"`)
}

func TestImportCommandURLKeepsRemoteFields(t *testing.T) {
	dataDir := isolate(t)
	feed := todayFeed(t)
	backend, srv := remoteServer(t)
	require.NoError(t, backend.Put(store.NamespaceSettings,
		[]byte(`{"icalUrl":"https://example.com/old.ics","icalRefreshMinutes":15}`)))

	_, err := run(t, "import", "--data-dir", dataDir, "--remote", srv.URL, "--url", feed.URL)
	require.NoError(t, err)

	settings, err := backend.Get(store.NamespaceSettings)
	require.NoError(t, err)
	require.Contains(t, string(settings), feed.URL)
	require.Contains(t, string(settings), `"icalRefreshMinutes":15`)
}

func TestImportCommandWithoutURL(t *testing.T) {
	dataDir := isolate(t)
	_, err := run(t, "import", "--data-dir", dataDir)
	require.ErrorContains(t, err, "no calendar URL")
}

func TestImportCommandFeedDown(t *testing.T) {
	dataDir := isolate(t)
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	_, err := run(t, "import", "--data-dir", dataDir, "--url", down.URL, "--relay", down.URL+"/?url=")
	require.Error(t, err)
}

func TestServeMux(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()

	srv := httptest.NewServer(newMux(s, discard()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/state", "application/json", strings.NewReader(`{"currentIndex":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "kidclock_server_requests_total")
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := config.Config{DataDir: t.TempDir(), Listen: "127.0.0.1:0"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, discard()) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
