package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/meyendtris/internal/platform/tui"
	"github.com/vovakirdan/meyendtris/internal/storage"
)

var (
	flagSessionsLimit int
	flagDeleteSession string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse recorded sessions",
	Long: `Display recent sessions with their counters and the markers fired
during the selected session.

Examples:
  meyendtris sessions
  meyendtris sessions --limit 50
  meyendtris sessions --delete 5f1c...`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&flagSessionsLimit, "limit", 20, "Number of sessions to show")
	sessionsCmd.Flags().StringVar(&flagDeleteSession, "delete", "", "Delete a session and its markers")
}

func runSessions(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("cannot open sessions database: %w", err)
	}
	defer store.Close()

	if flagDeleteSession != "" {
		if err := store.DeleteSession(flagDeleteSession); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", flagDeleteSession)
		return nil
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	return tui.RunSessions(store, flagSessionsLimit, width, height)
}
