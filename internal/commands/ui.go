package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/kidclock/internal/calendar"
	"github.com/sadopc/kidclock/internal/config"
	"github.com/sadopc/kidclock/internal/tui"
)

func runUI(ctx context.Context, cfg config.Config) error {
	logger, logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.close()

	// The remote copy replaces the local one when it arrives.
	sess.reconciler.LoadRemote(ctx, sess.machine)

	importer := calendar.NewImporter(
		calendar.WithRelay(cfg.RelayURL),
		calendar.WithLogger(logger),
	)
	app := tui.NewApp(sess.machine, tui.Options{Importer: importer})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
