package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/orchestrator"
	"github.com/vovakirdan/chaosynth/internal/storage"
)

var (
	flagTicks     int
	flagChaosKind string
	flagBioKind   string
	flagJSON      bool
	flagPlot      bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run headless and print the trigger log",
	Long: `Run both orchestrators without a sound device for a fixed number of ticks
and print every trigger event. The same seed and config always print the
same log.

Examples:
  chaosynth render --seed 7
  chaosynth render --ticks 1200 --chaos henon --bio rule30
  chaosynth render --json | jq .
  chaosynth render --plot`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVar(&flagTicks, "ticks", 600, "Number of host ticks to run")
	renderCmd.Flags().StringVar(&flagChaosKind, "chaos", "", "Chaotic system kind (default from config)")
	renderCmd.Flags().StringVar(&flagBioKind, "bio", "", "Biological model kind (default from config)")
	renderCmd.Flags().BoolVar(&flagJSON, "json", false, "Print events as JSON lines")
	renderCmd.Flags().BoolVar(&flagPlot, "plot", false, "Plot the final spectrum")
}

func runRender(cmd *cobra.Command, args []string) error {
	if flagTicks <= 0 {
		return fmt.Errorf("--ticks must be positive, got %d", flagTicks)
	}
	if flagSeed == 0 {
		// Reproducible by default.
		flagSeed = 1
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if flagChaosKind != "" {
		cfg.Chaos.Kind = flagChaosKind
	}
	if flagBioKind != "" {
		cfg.Bio.Kind = flagBioKind
	}

	out := cmd.OutOrStdout()
	e, err := newRenderEngine(cfg, out)
	if err != nil {
		return err
	}
	defer e.Close()

	interval := time.Second / time.Duration(e.Config().Audio.TickRate)
	e.Start()
	for i := 0; i < flagTicks; i++ {
		e.Step(interval)
	}
	e.Stop()

	if flagJSON {
		return nil
	}
	printSummary(out, e.Status())

	if flagPlot {
		vis := e.Visualizer()
		vis.Update()
		fmt.Fprintln(out)
		fmt.Fprintln(out, vis.Plot(64, 10, fmt.Sprintf("spectrum, peak %.0fHz", vis.PeakFrequency())))
	}
	return nil
}

// newRenderEngine builds an engine with an observer printing each event.
func newRenderEngine(cfg config.Config, out io.Writer) (*engine.Engine, error) {
	cfg.Audio.Output = false
	cfg.Presets.Backend = storage.BackendMemory
	logger := newLogger(os.Stderr, cfg)

	enc := json.NewEncoder(out)
	return engine.New(engine.Options{
		Config: cfg,
		Seed:   flagSeed,
		Logger: logger,
		Observer: func(ev orchestrator.Event) {
			if flagJSON {
				enc.Encode(ev) //nolint:errcheck // best-effort output
				return
			}
			fmt.Fprintln(out, formatEvent(ev))
		},
	})
}

// formatEvent renders one event as a log line.
func formatEvent(ev orchestrator.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%9.3fs %-5s %-12s", ev.At.Seconds(), ev.Family, ev.Kind)
	for _, req := range ev.Requests {
		fmt.Fprintf(&b, " %s:%.2fHz@%.2f", req.Waveform, req.Frequency, req.Amplitude)
	}
	if skipped := len(ev.Requests) - ev.Acquired; skipped > 0 {
		fmt.Fprintf(&b, " (%d skipped)", skipped)
	}
	return b.String()
}

func printSummary(w io.Writer, st engine.Status) {
	fmt.Fprintf(w, "\n--- %.2fs rendered ---\n", st.Now.Seconds())
	for _, o := range []orchestrator.Status{st.Chaos, st.Bio} {
		fmt.Fprintf(w, "%-5s %-12s ticks %-5d triggers %-5d voices %-5d skipped %d\n",
			o.Family, o.Settings.Kind, o.Stats.Ticks, o.Stats.Triggers, o.Stats.Voices, o.Stats.Skipped)
	}
	for _, u := range st.Pool {
		fmt.Fprintf(w, "%-9s %d/%d\n", u.Kind, u.Active, u.Capacity)
	}
}
