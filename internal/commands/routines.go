package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/kidclock/internal/activity"
	"github.com/sadopc/kidclock/internal/timer"
)

func addRoutines(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "routines",
		Short: "list the built-in routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, key := range activity.RoutineKeys() {
				r, _ := activity.LookupRoutine(key)
				fmt.Fprintf(out, "%s (%s)\n", r.Name, r.Key)
				items := make([]timer.ScheduleItem, len(r.Steps))
				for i, step := range r.Steps {
					items[i] = timer.ScheduleItem{Activity: step.Activity, Duration: step.Minutes}
				}
				printSchedule(out, items)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
