package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sadopc/kidclock/internal/config"
	"github.com/sadopc/kidclock/internal/persist"
	"github.com/sadopc/kidclock/internal/remote"
	"github.com/sadopc/kidclock/internal/store"
	"github.com/sadopc/kidclock/internal/timer"
)

const flushTimeout = 5 * time.Second

// session is an opened store with a machine loaded from it and kept in sync.
type session struct {
	store      *store.Store
	reconciler *persist.Reconciler
	machine    *timer.Machine
	logger     *slog.Logger
}

func openSession(cfg config.Config, logger *slog.Logger) (*session, error) {
	s, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	opts := []persist.Option{
		persist.WithDebounce(cfg.Debounce),
		persist.WithLogger(logger),
	}
	if cfg.RemoteURL != "" {
		opts = append(opts, persist.WithRemote(remote.NewClient(cfg.RemoteURL, nil)))
		logger.Info("remote store enabled", "url", cfg.RemoteURL)
	}
	rc := persist.New(s, opts...)

	state, settings := rc.LoadLocal()
	m := timer.New(state, settings, timer.WithLogger(logger))
	rc.Attach(m)

	return &session{store: s, reconciler: rc, machine: m, logger: logger}, nil
}

// close flushes pending remote writes and closes the store.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	s.reconciler.Close(ctx)
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close store", "error", err)
	}
}

// openLog returns a JSON logger writing to the data directory's log file.
func openLog(cfg config.Config) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel})), f, nil
}
