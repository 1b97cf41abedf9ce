// Package config loads kidclock settings from defaults, an optional
// .kidclock.yaml, and KIDCLOCK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/sadopc/kidclock/internal/calendar"
	"github.com/sadopc/kidclock/internal/persist"
	"github.com/sadopc/kidclock/internal/store"
)

// Keys understood in the config file and, upper-cased with the KIDCLOCK_
// prefix, in the environment.
const (
	KeyDataDir   = "data_dir"
	KeyRemoteURL = "remote_url"
	KeyRelayURL  = "relay_url"
	KeyListen    = "listen"
	KeyDebounce  = "debounce"
	KeyLogLevel  = "log_level"
)

type Config struct {
	DataDir   string
	RemoteURL string // empty disables the remote store
	RelayURL  string
	Listen    string
	Debounce  time.Duration
	LogLevel  slog.Level
}

// DBPath is the SQLite database inside the data directory.
func (c Config) DBPath() string { return filepath.Join(c.DataDir, "kidclock.db") }

// LogPath is where the TUI writes its log, since it owns the terminal.
func (c Config) LogPath() string { return filepath.Join(c.DataDir, "kidclock.log") }

// New returns a viper instance with kidclock's defaults and search paths.
func New() *viper.Viper {
	v := viper.New()
	dataDir := "~/.config/kidclock"
	if p, err := store.DefaultDBPath(); err == nil {
		dataDir = filepath.Dir(p)
	}
	v.SetDefault(KeyDataDir, dataDir)
	v.SetDefault(KeyRemoteURL, "")
	v.SetDefault(KeyRelayURL, calendar.DefaultRelay)
	v.SetDefault(KeyListen, ":3000")
	v.SetDefault(KeyDebounce, persist.DefaultDebounce)
	v.SetDefault(KeyLogLevel, "info")

	v.SetConfigName(".kidclock") // .yaml is implicit
	v.SetEnvPrefix("KIDCLOCK")
	v.AutomaticEnv()

	if override := os.Getenv("KIDCLOCK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "kidclock"))
	}
	return v
}

// Load reads the config file, if any, and resolves v into a Config.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	dataDir, err := homedir.Expand(v.GetString(KeyDataDir))
	if err != nil {
		return Config{}, fmt.Errorf("expand %s: %w", KeyDataDir, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(v.GetString(KeyLogLevel)))); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", KeyLogLevel, err)
	}

	debounce := v.GetDuration(KeyDebounce)
	if debounce <= 0 {
		return Config{}, fmt.Errorf("%s must be positive, got %q", KeyDebounce, v.GetString(KeyDebounce))
	}

	return Config{
		DataDir:   dataDir,
		RemoteURL: strings.TrimSpace(v.GetString(KeyRemoteURL)),
		RelayURL:  v.GetString(KeyRelayURL),
		Listen:    v.GetString(KeyListen),
		Debounce:  debounce,
		LogLevel:  level,
	}, nil
}
