// meyendtris runs the gaze and signal controlled Tetris variant in the
// terminal, either locally or for SSH clients, and accepts remote control
// lines over TCP.
//
// Usage:
//
//	meyendtris play             - Play on this terminal
//	meyendtris serve            - Start SSH server, one launcher per session
//	meyendtris send <line>...   - Send remote control lines to a launcher
//	meyendtris list             - List available modules
//	meyendtris sessions         - Browse recorded sessions
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: config timing.fps, 60)
//	--seed <value>  - Set RNG seed for reproducible play
//	--db <path>     - Set database path (default: ~/.meyendtris/sessions.db)
//	--log <path>    - Write the log to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/meyendtris/internal/storage"

	// Import modules to register them
	_ "github.com/vovakirdan/meyendtris/internal/games/meyendtris"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogPath  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "meyendtris",
	Short: "Meyendtris - gaze and signal controlled Tetris",
	Long: `Meyendtris is a Tetris variant steered by gaze dwell and paced by a
scalar brain-computer interface signal. The signal speeds the game up or
slows it down; a simulated error detector can undo landed pieces.

Available commands:
  play      - Play on this terminal
  serve     - Start SSH server for remote sessions
  send      - Send remote control lines (start, cancel, setup bci=1.2, ...)
  list      - Show available modules
  sessions  - Browse recorded sessions

Examples:
  meyendtris play
  meyendtris play --input keyboard --preset relaxed
  meyendtris play --gaze-addr localhost:7898
  meyendtris send "setup bci=1.4" start
  meyendtris serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate in frames per second (default: config timing.fps)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to sessions database")
	rootCmd.PersistentFlags().StringVar(&flagLogPath, "log", "", "Write log output to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// newLogger opens the --log file, or falls back to fallback. The returned
// closer releases the file.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func(), error) {
	w := fallback
	closer := func() {}
	if flagLogPath != "" {
		f, err := os.OpenFile(flagLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
	}
	return logger, closer, nil
}
