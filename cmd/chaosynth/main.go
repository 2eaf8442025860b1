// chaosynth is a generative music engine driven by chaotic attractors and
// biological models.
//
// Usage:
//
//	chaosynth list                 - List generator kinds
//	chaosynth play                 - Live console with audio output
//	chaosynth render               - Headless run that prints the trigger log
//	chaosynth daemon               - Audio output plus the HTTP control API
//	chaosynth presets <command>    - Manage saved presets
//	chaosynth serve                - SSH watch server
//	chaosynth config               - Print the resolved or default config
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.chaosynth, ./configs, embedded)
//	--seed <value>      - RNG seed for reproducible runs
//	--db <path>         - Preset database path
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chaosynth",
	Short: "chaosynth - music from strange attractors and living systems",
	Long: `chaosynth turns chaotic dynamical systems (Lorenz, Rössler, Hénon, ...)
and biological models (heartbeat, ecosystem, cellular automata, genetic
evolution) into a stream of notes played through a small voice pool.

Available commands:
  list     - Show all generator kinds
  play     - Live console with audio output
  render   - Headless run that prints the trigger log
  daemon   - Audio output plus the HTTP control API
  presets  - List, show, save, remove and browse presets
  serve    - Start the SSH watch server
  config   - Print the resolved or default config

Examples:
  chaosynth list
  chaosynth play --seed 42
  chaosynth render --ticks 600 --seed 7
  chaosynth daemon --addr :8740
  chaosynth presets list`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to preset database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig resolves the config file and applies global flag overrides.
func loadConfig() (config.Config, config.Source, error) {
	cfg, src, err := config.Load(flagConfig)
	if err != nil {
		return cfg, src, err
	}
	if flagDBPath != "" {
		cfg.Presets.Backend = storage.BackendSQLite
		cfg.Presets.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, src, nil
}

// newLogger creates the process logger writing to w.
func newLogger(w io.Writer, cfg config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "chaosynth",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openLogFile opens the configured log file for TUI commands, where writing
// to the terminal would tear the screen. It falls back to io.Discard.
func openLogFile(cfg config.Config) (io.Writer, func()) {
	path := config.ExpandHome(cfg.Log.File)
	if path == "" {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

// setup builds an idle engine logging to w.
func setup(cfg config.Config, w io.Writer) (*engine.Engine, *log.Logger, error) {
	logger := newLogger(w, cfg)

	seed := core.RuntimeConfig{Seed: flagSeed}.ResolvedSeed()
	e, err := engine.New(engine.Options{
		Config: cfg,
		Seed:   seed,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("engine ready", "seed", seed)
	return e, logger, nil
}
