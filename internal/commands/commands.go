// Package commands wires kidclock's packages into the cobra command tree.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/kidclock/internal/config"
)

// New returns the root command. Run without a subcommand it opens the
// clock in the terminal.
func New() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "kidclock",
		Short: "A visual countdown of a child's day, one activity at a time.",
		Example: `
kidclock
kidclock --remote http://localhost:3000
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runUI(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("data-dir", "", "Directory holding the database and log file.")
	flags.String("remote", "", "Base URL of a kidclock key/value server to sync with.")
	flags.String("relay", "", "Relay prefix used when a calendar feed cannot be fetched directly.")
	flags.String("log-level", "", "Log level: debug, info, warn or error.")
	bindFlags(v, cmd, map[string]string{
		config.KeyDataDir:   "data-dir",
		config.KeyRemoteURL: "remote",
		config.KeyRelayURL:  "relay",
		config.KeyLogLevel:  "log-level",
	})

	AddCommands(cmd, v)
	return cmd
}

func AddCommands(topLevel *cobra.Command, v *viper.Viper) {
	addServe(topLevel, v)
	addImport(topLevel, v)
	addRoutines(topLevel)
}

// bindFlags lets set flags override the config file and environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			f = cmd.Flags().Lookup(name)
		}
		_ = v.BindPFlag(key, f)
	}
}
