package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/games/meyendtris"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/launcher"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/platform/tui"
	"github.com/vovakirdan/meyendtris/internal/remote"
	"github.com/vovakirdan/meyendtris/internal/signal"
	"github.com/vovakirdan/meyendtris/internal/storage"
)

var (
	flagConfig     string
	flagPreset     string
	flagInput      string
	flagGazeAddr   string
	flagRemoteAddr string
	flagNoRemote   bool
	flagNoMusic    bool
	flagAutoStart  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play on this terminal",
	Long: `Start the launcher with Meyendtris loaded and run it on this terminal.

Input modes:
  auto      - Position stream if --gaze-addr resolves, else the mouse
  gaze      - Position stream from a tracker bridge ("x y" lines over TCP)
  mouse     - Terminal mouse pointer as the position stream
  keyboard  - Arrows, space and digit keys

Controls:
  Enter     - Leave the wait screen
  F1/F2/F5  - Start, cancel, prune the module
  B         - Toggle the signal between its range ends
  Q/Esc     - Quit

The launcher listens for remote control lines on --remote (default :7897).

Examples:
  meyendtris play
  meyendtris play --input keyboard
  meyendtris play --preset intense --config ./experiment.yaml
  meyendtris play --gaze-addr 192.168.1.20:7898`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Difficulty preset: relaxed, normal, intense")
	playCmd.Flags().StringVar(&flagInput, "input", string(core.InputAuto), "Input mode: auto, gaze, mouse, keyboard")
	playCmd.Flags().StringVar(&flagGazeAddr, "gaze-addr", "", "Tracker bridge address (overrides config)")
	playCmd.Flags().StringVar(&flagRemoteAddr, "remote", "", "Remote control address (overrides config)")
	playCmd.Flags().BoolVar(&flagNoRemote, "no-remote", false, "Do not listen for remote control lines")
	playCmd.Flags().BoolVar(&flagNoMusic, "no-music", false, "Disable background music")
	playCmd.Flags().BoolVar(&flagAutoStart, "autostart", false, "Skip the wait screen")
}

// loadConfig reads the config file and applies the preset and flag overrides.
func loadConfig() (config.MeyendtrisConfig, error) {
	cfg, err := config.LoadMeyendtris(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagPreset)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)

	if flagGazeAddr != "" {
		cfg.Gaze.Addr = flagGazeAddr
	}
	if flagRemoteAddr != "" {
		cfg.Remote.Addr = flagRemoteAddr
	}
	if cfg.Remote.Addr == "" {
		cfg.Remote.Addr = config.DefaultRemoteAddr
	}
	return cfg, config.Validate(cfg)
}

// tickRate is the config's frame rate unless --fps was given. Dwell
// thresholds count frames, so the two must agree.
func tickRate(cmd *cobra.Command, cfg config.MeyendtrisConfig) int {
	if cmd.Flags().Changed("fps") || cfg.Timing.FPS < 1 {
		return flagFPS
	}
	return cfg.Timing.FPS
}

func parseInput(s string) (core.InputMode, error) {
	switch m := core.InputMode(strings.ToLower(s)); m {
	case core.InputAuto, core.InputGaze, core.InputMouse, core.InputKeyboard:
		return m, nil
	default:
		return "", fmt.Errorf("unknown input mode %q", s)
	}
}

// resolvePosition picks the position source for the session. Auto tries
// the tracker stream once and falls back to the mouse; an explicit gaze
// mode without a stream falls back to the keyboard.
func resolvePosition(mode core.InputMode, cfg config.MeyendtrisConfig, width, height int, logger *log.Logger) (core.InputMode, gaze.Source, *gaze.Cursor, io.Closer) {
	switch mode {
	case core.InputKeyboard:
		return mode, nil, nil, nil
	case core.InputMouse:
		c := gaze.NewCursor()
		return mode, c, c, nil
	}

	opts := []gaze.StreamOption{gaze.WithLogger(logger)}
	if cfg.Gaze.ScreenWidth > 0 && cfg.Gaze.ScreenHeight > 0 {
		opts = append(opts, gaze.WithProjection(gaze.Projection{
			SrcX: core.R(0, cfg.Gaze.ScreenWidth),
			SrcY: core.R(0, cfg.Gaze.ScreenHeight),
			DstX: core.R(0, float64(width)),
			DstY: core.R(0, float64(height)),
		}))
	}

	stream, err := gaze.Resolve(context.Background(), cfg.Gaze.Addr, cfg.Gaze.ResolveTimeout, opts...)
	if err == nil {
		return core.InputGaze, stream, nil, stream
	}
	if cfg.Gaze.Addr != "" {
		logger.Warn("no position stream", "err", err)
	}

	if mode == core.InputAuto {
		c := gaze.NewCursor()
		return core.InputMouse, c, c, nil
	}
	return core.InputKeyboard, nil, nil, nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger("meyendtris", io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	fps := tickRate(cmd, cfg)
	mode, err := parseInput(flagInput)
	if err != nil {
		return err
	}

	// Get terminal size early for the layout
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	mode, position, cursor, closer := resolvePosition(mode, cfg, width, height, logger)
	if closer != nil {
		defer closer.Close()
	}

	// Open session storage
	var sessions launcher.SessionStore
	sinks := []markers.Sink{markers.LogSink{Logger: logger}}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		// Continue without storage - the game still works
		logger.Warn("could not open sessions database", "err", err)
	} else {
		defer store.Close()
		sessions = store
		sinks = append(sinks, markers.StoreSink{Store: store})
	}

	dispatcher := markers.NewDispatcher(markers.DefaultBuffer, logger, sinks...)
	defer dispatcher.Close()

	l := launcher.New(launcher.Options{
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  max(height-2, 0), // HUD and help lines
			TickRate: fps,
			Seed:     flagSeed,
			Input:    mode,
		},
		Signal:   signal.NewSource(cfg.Signal.Initial),
		Position: position,
		Markers:  dispatcher,
		Sessions: sessions,
		Logger:   logger,
		Music:    !flagNoMusic,
	})
	defer l.Close()

	if err := loadModule(l, cfg); err != nil {
		return err
	}

	if !flagNoRemote {
		hub := remote.NewHub(logger)
		hub.Register("local", l)
		srv := remote.NewServer(cfg.Remote.Addr, hub, logger)
		if err := srv.Start(); err != nil {
			// Playing without remote control is still useful
			logger.Warn("remote control disabled", "addr", cfg.Remote.Addr, "err", err)
		} else {
			defer srv.Stop()
		}
	}

	return tui.Run(l, tui.Options{
		TickRate:  fps,
		Cursor:    cursor,
		AutoStart: flagAutoStart,
		Logger:    logger,
	})
}

// loadModule loads Meyendtris into l and hands it cfg.
func loadModule(l *launcher.Launcher, cfg config.MeyendtrisConfig) error {
	if err := l.Load(meyendtris.ID); err != nil {
		return fmt.Errorf("cannot load module: %w", err)
	}
	m, ok := l.Module().(*meyendtris.Module)
	if !ok {
		return fmt.Errorf("module %s has unexpected type %T", meyendtris.ID, l.Module())
	}
	return m.SetConfig(cfg)
}
