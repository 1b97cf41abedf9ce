package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/kidclock/internal/config"
	"github.com/sadopc/kidclock/internal/remote"
	"github.com/sadopc/kidclock/internal/store"
)

func addServe(topLevel *cobra.Command, v *viper.Viper) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the key/value server other kidclock instances sync with",
		Example: `
kidclock serve
kidclock serve --listen :8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().String("listen", "", "Address to listen on.")
	bindFlags(v, cmd, map[string]string{config.KeyListen: "listen"})

	topLevel.AddCommand(cmd)
}

// newMux exposes the document endpoints, health and metrics.
func newMux(backend remote.Backend, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	remote.NewHandler(backend, logger).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	s, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      newMux(s, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("kidclock server listening", "addr", cfg.Listen, "db", cfg.DBPath())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	return nil
}
