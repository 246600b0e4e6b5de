package main

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		in      string
		want    core.InputMode
		wantErr bool
	}{
		{"auto", core.InputAuto, false},
		{"GAZE", core.InputGaze, false},
		{"mouse", core.InputMouse, false},
		{"keyboard", core.InputKeyboard, false},
		{"joystick", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseInput(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseInput(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("parseInput(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestResolvePositionFallbacks(t *testing.T) {
	logger := log.New(io.Discard)
	cfg := config.DefaultMeyendtrisConfig()
	cfg.Gaze.Addr = ""

	tests := []struct {
		mode       core.InputMode
		want       core.InputMode
		wantCursor bool
	}{
		{core.InputKeyboard, core.InputKeyboard, false},
		{core.InputMouse, core.InputMouse, true},
		{core.InputAuto, core.InputMouse, true},
		{core.InputGaze, core.InputKeyboard, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			got, position, cursor, closer := resolvePosition(tc.mode, cfg, 80, 24, logger)
			if got != tc.want {
				t.Errorf("mode = %q, want %q", got, tc.want)
			}
			if (cursor != nil) != tc.wantCursor {
				t.Errorf("cursor = %v, want cursor %v", cursor, tc.wantCursor)
			}
			if (position != nil) != tc.wantCursor {
				t.Errorf("position = %v", position)
			}
			if closer != nil {
				t.Error("no stream should be open")
			}
		})
	}
}

func TestPortOf(t *testing.T) {
	tests := map[string]string{
		":23234":         "23234",
		"localhost:2222": "2222",
		"noport":         "noport",
	}
	for addr, want := range tests {
		if got := portOf(addr); got != want {
			t.Errorf("portOf(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestTickRateFollowsConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "play"}
	cmd.Flags().IntVar(&flagFPS, "fps", 60, "")

	cfg := config.DefaultMeyendtrisConfig()
	cfg.Timing.FPS = 30
	if got := tickRate(cmd, cfg); got != 30 {
		t.Errorf("tickRate() = %d, want config value 30", got)
	}

	if err := cmd.Flags().Set("fps", "90"); err != nil {
		t.Fatalf("Set(fps) failed: %v", err)
	}
	if got := tickRate(cmd, cfg); got != 90 {
		t.Errorf("tickRate() = %d, want flag value 90", got)
	}
}
