// Package tui provides the Bubble Tea front end for the launcher.
// It handles the terminal UI loop, key and mouse input, and rendering of
// the module's screen buffer.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a launcher tick.
type TickMsg time.Time

// maxTickGap caps dt after a stall.
const maxTickGap = 250 * time.Millisecond

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate < 1 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// frameDelta returns the seconds between two ticks, falling back to the
// nominal frame time for the first tick.
func frameDelta(last, now time.Time, tickRate int) float64 {
	if tickRate < 1 {
		tickRate = 60
	}
	if last.IsZero() || !now.After(last) {
		return 1 / float64(tickRate)
	}
	gap := now.Sub(last)
	if gap > maxTickGap {
		gap = maxTickGap
	}
	return gap.Seconds()
}
