package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/meyendtris/internal/launcher"
	"github.com/vovakirdan/meyendtris/internal/remote"
)

var (
	flagSendAddr    string
	flagSendTimeout int
)

var sendCmd = &cobra.Command{
	Use:   "send <line>...",
	Short: "Send remote control lines to a running launcher",
	Long: `Connect to a launcher's remote control port and send one line per
argument. Lines are checked locally before anything is sent.

Commands:
  start                 - Start the module (cancels a running one)
  cancel | stop         - Cancel the module
  prune                 - Drop the module's state
  load <module>         - Load a module
  config <file>         - Load a config file into the module
  setup a=1;b=2         - Set parameters (bci sets the signal)

Examples:
  meyendtris send start
  meyendtris send "setup bci=1.4"
  meyendtris send --addr 10.0.0.5:7897 "config relaxed" start`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&flagSendAddr, "addr", remote.DefaultAddr, "Launcher remote control address")
	sendCmd.Flags().IntVar(&flagSendTimeout, "timeout", 3, "Dial timeout in seconds")
}

func runSend(cmd *cobra.Command, args []string) error {
	for _, line := range args {
		if _, err := launcher.Parse(line); err != nil {
			return fmt.Errorf("%q: %w", line, err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(flagSendTimeout)*time.Second)
	defer cancel()

	if err := remote.Send(ctx, flagSendAddr, args...); err != nil {
		return err
	}
	fmt.Printf("Sent %d line(s) to %s\n", len(args), flagSendAddr)
	return nil
}
