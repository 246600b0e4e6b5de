package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/launcher"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/platform/tui"
	"github.com/vovakirdan/meyendtris/internal/remote"
	"github.com/vovakirdan/meyendtris/internal/signal"
	"github.com/vovakirdan/meyendtris/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Meyendtris SSH server",
	Long: `Start an SSH server that gives every connection its own launcher with
Meyendtris loaded. SSH sessions use the mouse pointer as the position stream.

Remote control lines received on --remote are broadcast to every session,
so one experiment controller can drive all connected clients.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.meyendtris/host_key

Examples:
  meyendtris serve                           # Listen on :23234 with auto-generated key
  meyendtris serve --ssh :2222               # Listen on port 2222
  meyendtris serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	serveCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: relaxed, normal, intense")
	serveCmd.Flags().StringVar(&flagRemoteAddr, "remote", "", "Remote control address (overrides config)")
	serveCmd.Flags().BoolVar(&flagNoRemote, "no-remote", false, "Do not listen for remote control lines")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger("meyendtris-ssh", os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var sessions launcher.SessionStore
	sinks := []markers.Sink{markers.LogSink{Logger: logger}}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open sessions database", "err", err)
	} else {
		defer store.Close()
		sessions = store
		sinks = append(sinks, markers.StoreSink{Store: store})
	}

	dispatcher := markers.NewDispatcher(markers.DefaultBuffer, logger, sinks...)
	defer dispatcher.Close()

	factory := func(id string, rt core.RuntimeConfig, cursor *gaze.Cursor) (*launcher.Launcher, error) {
		if flagSeed != 0 {
			rt.Seed = flagSeed
		}
		l := launcher.New(launcher.Options{
			Runtime:  rt,
			Signal:   signal.NewSource(cfg.Signal.Initial),
			Position: cursor,
			Markers:  dispatcher,
			Sessions: sessions,
			Logger:   logger.With("session", id),
		})
		if err := loadModule(l, cfg); err != nil {
			l.Close()
			return nil, err
		}
		return l, nil
	}

	hub := remote.NewHub(logger)
	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    tickRate(cmd, cfg),
	}, hub, factory, logger)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	if !flagNoRemote {
		rs := remote.NewServer(cfg.Remote.Addr, hub, logger)
		if err := rs.Start(); err != nil {
			return fmt.Errorf("cannot start remote control: %w", err)
		}
		defer rs.Stop()
	}

	fmt.Printf("Starting Meyendtris SSH server on %s\n", flagSSHAddr)
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(flagSSHAddr))
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}

// portOf returns the port part of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
