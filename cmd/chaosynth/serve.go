package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chaosynth/internal/config"
	"github.com/vovakirdan/chaosynth/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagReadOnly    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH watch server",
	Long: `Start an SSH server that shows the live console to every connection.

Each SSH session gets its own headless engine: sessions never share state
and nothing is played on the server's sound device. Presets saved in a
session live only as long as the session.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses ssh.host_key from the config, relative to ~/.chaosynth

Examples:
  chaosynth serve                   # Listen on the configured address
  chaosynth serve --ssh :2222       # Listen on port 2222
  chaosynth serve --read-only       # Viewers can only watch

Users can connect with:
  ssh localhost -p 23235`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (generated if missing)")
	idle := int(tui.DefaultSSHServerConfig().IdleTimeout / time.Minute)
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", idle, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().BoolVar(&flagReadOnly, "read-only", false, "Sessions can watch but not change parameters")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg).WithPrefix("ssh")

	server, err := tui.NewSSHServer(serverConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting chaosynth SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.ListenAndServe(ctx)
}

// serverConfig layers the loaded config and the serve flags over
// tui.DefaultSSHServerConfig.
func serverConfig(cfg config.Config) tui.SSHServerConfig {
	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Engine = cfg
	if cfg.SSH.Host != "" || cfg.SSH.Port != 0 {
		sshCfg.Address = fmt.Sprintf("%s:%d", cfg.SSH.Host, cfg.SSH.Port)
	}
	if cfg.SSH.HostKeyPath != "" {
		sshCfg.HostKeyPath = cfg.SSH.HostKeyPath
	}
	if flagSSHAddr != "" {
		sshCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}
	sshCfg.ReadOnly = flagReadOnly
	// Sessions render silently.
	sshCfg.Engine.Audio.Output = false
	return sshCfg
}
