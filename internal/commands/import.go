package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/calendar"
	"github.com/sadopc/kidclock/internal/config"
	"github.com/sadopc/kidclock/internal/timer"
)

const importTimeout = 30 * time.Second

func addImport(topLevel *cobra.Command, v *viper.Viper) {
	var feedURL string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "replace the schedule with today's events from a calendar feed",
		Example: `
kidclock import
kidclock import --url webcal://example.com/family.ics
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, logFile, err := openLog(cfg)
			if err != nil {
				return err
			}
			defer logFile.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
			defer cancel()
			return runImport(ctx, cmd.OutOrStdout(), cfg, logger, feedURL)
		},
	}
	cmd.Flags().StringVar(&feedURL, "url", "", "Calendar feed to import from. Saved as the calendar URL setting.")

	topLevel.AddCommand(cmd)
}

func runImport(ctx context.Context, out io.Writer, cfg config.Config, logger *slog.Logger, feedURL string) error {
	sess, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.close()

	// The remote copy is authoritative; wait for it before reading settings.
	<-sess.reconciler.LoadRemote(ctx, sess.machine)

	if feedURL != "" {
		sess.machine.UpdateSettings(timer.SettingsPatch{IcalURL: &feedURL})
	}
	if sess.machine.Settings().IcalURL == "" {
		return errors.New("no calendar URL: pass --url or set one in the app")
	}

	importer := calendar.NewImporter(
		calendar.WithRelay(cfg.RelayURL),
		calendar.WithLogger(logger),
	)
	ok, err := importer.Sync(ctx, sess.machine)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "No matching calendar events today; schedule unchanged.")
		return nil
	}

	s := sess.machine.State()
	fmt.Fprintf(out, "Imported %d activities:\n", len(s.Schedule))
	printSchedule(out, s.Schedule)
	return nil
}

func printSchedule(out io.Writer, items []timer.ScheduleItem) {
	for i, item := range items {
		a := activity.Resolve(item.Activity)
		fmt.Fprintf(out, "%3d. %s %-12s %4d min\n", i+1, a.Icon, a.Name, item.Duration)
	}
}
