package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/chaosynth/internal/audio"
	"github.com/vovakirdan/chaosynth/internal/server"
)

var flagAddr string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Play audio and serve the HTTP control API",
	Long: `Start both orchestrators, stream audio to the sound device, and serve the
HTTP control API until interrupted.

Endpoints:
  GET    /health, /state, /events, /spectrum
  GET    /{chaos|bio}
  PUT    /{chaos|bio}/kind
  POST   /{chaos|bio}/params, /reset, /start, /stop
  POST   /chaos/morph
  GET    /presets
  GET    /presets/{name}   PUT /presets/{name}   DELETE /presets/{name}
  POST   /presets/{name}/load
  POST   /midi             (raw MIDI bytes)

Examples:
  chaosynth daemon
  chaosynth daemon --addr :8740 --mute
  curl -X POST localhost:8740/chaos/params -d '{"density": 0.8}'`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (overrides config)")
	daemonCmd.Flags().BoolVar(&flagMute, "mute", false, "Run without a sound device")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, src, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}

	e, logger, err := setup(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()
	logger.Info("config loaded", "source", src)

	var out audio.Output
	if !flagMute && e.Config().Audio.Output {
		out, err = audio.NewOutput(e.Audio(), logger.WithPrefix("audio"))
		if err != nil {
			logger.Warn("no sound device, rendering silently", "err", err)
		}
	}
	if out == nil {
		// Keeps the engine clock moving without a device.
		out = audio.NewPacedOutput(e.Audio(), 0)
	}
	if err := out.Start(); err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Second / time.Duration(e.Config().Audio.TickRate)
	e.Visualizer().Start(interval)
	e.Start()

	api := server.New(server.Config{Addr: e.Config().Server.Addr}, e, logger.WithPrefix("http"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(ctx)
	})
	g.Go(func() error {
		return e.Run(ctx)
	})

	err = g.Wait()
	logger.Info("daemon stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
