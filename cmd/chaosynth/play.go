package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/chaosynth/internal/audio"
	"github.com/vovakirdan/chaosynth/internal/core"
	"github.com/vovakirdan/chaosynth/internal/platform/tui"
)

var (
	flagTheme  string
	flagPreset string
	flagMute   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the live console",
	Long: `Start both orchestrators and open the live console.

Controls:
  Tab        - Switch focus between chaos and bio
  Left/Right - Previous/next kind
  Space      - Start/stop the focused orchestrator
  M          - Morph (perturb the chaotic state)
  Z          - Toggle pitch quantization
  [ / ]      - Density down/up
  Up/Down    - Speed up/down
  S          - Save preset
  P          - Preset browser
  R          - Reset generator
  Q/Ctrl+C   - Quit

Logs are written to the configured log file while the console is open.

Examples:
  chaosynth play
  chaosynth play --seed 42 --preset ambient
  chaosynth play --mute --theme mono`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagTheme, "theme", "default", "Console theme: default, mono")
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Preset to load before starting")
	playCmd.Flags().BoolVar(&flagMute, "mute", false, "Run without a sound device")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	w, closeLog := openLogFile(cfg)
	defer closeLog()

	e, logger, err := setup(cfg, w)
	if err != nil {
		return err
	}
	defer e.Close()

	if flagPreset != "" {
		if err := e.LoadPreset(flagPreset); err != nil {
			return fmt.Errorf("cannot load preset %q: %w", flagPreset, err)
		}
	}

	// Without a sound device the console drives the clock itself.
	headless := flagMute || !e.Config().Audio.Output
	if !headless {
		out, err := audio.NewOutput(e.Audio(), logger.WithPrefix("audio"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, continuing without sound\n", err)
			headless = true
		} else {
			defer out.Close()
			if err := out.Start(); err != nil {
				return err
			}
		}
	}

	width, height := 80, 24 // Defaults
	if tw, th, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = tw
		height = th
	}

	rc := core.RuntimeConfig{
		ScreenW:    width,
		ScreenH:    height,
		TickRate:   e.Config().Audio.TickRate,
		SampleRate: e.Config().Audio.SampleRate,
		Seed:       flagSeed,
	}

	theme := tui.ThemeByName(flagTheme)
	e.Start()
	return tui.Run(e, tui.Options{
		Config:   rc,
		Headless: headless,
		Theme:    &theme,
	})
}
