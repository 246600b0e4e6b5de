// Package config provides YAML-based configuration loading, presets and
// validation for the Meyendtris module.
package config

import (
	"time"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

// MeyendtrisConfig contains all configuration for the Meyendtris module.
type MeyendtrisConfig struct {
	Field  FieldConfig  `yaml:"field"`
	Signal SignalConfig `yaml:"signal"`
	Timing TimingConfig `yaml:"timing"`
	Dwell  DwellConfig  `yaml:"dwell"`
	Undo   UndoConfig   `yaml:"undo"`
	Gaze   GazeConfig   `yaml:"gaze"`
	Music  MusicConfig  `yaml:"music"`
	Remote RemoteConfig `yaml:"remote"`
}

// FieldConfig defines the play field grid.
type FieldConfig struct {
	Rows         int `yaml:"rows"`
	Cols         int `yaml:"cols"`
	RotationRows int `yaml:"rotation_rows"` // Upper rows used as the rotation zone
}

// SignalConfig defines the BCI scalar and its smoothing.
type SignalConfig struct {
	Initial      float64         `yaml:"initial"`
	InputRange   core.Range      `yaml:"input_range"`   // Nominal range of the scalar
	BufferLength int             `yaml:"buffer_length"` // Samples averaged, one per frame
	DeadBand     signal.DeadBand `yaml:"dead_band"`
}

// TimingConfig defines frame rate and game speed.
type TimingConfig struct {
	FPS           int        `yaml:"fps"`
	MoveTimeRange core.Range `yaml:"move_time_range"` // Seconds per step, [fastest, slowest]
}

// DwellConfig defines gaze dwell times in frames.
type DwellConfig struct {
	Map           bool       `yaml:"map"` // Rescale dwell times from the signal every frame
	Column        float64    `yaml:"column"`
	Drop          float64    `yaml:"drop"`
	Rotation      float64    `yaml:"rotation"`
	ColumnRange   core.Range `yaml:"column_range"`
	DropRange     core.Range `yaml:"drop_range"`
	RotationRange core.Range `yaml:"rotation_range"`
}

// UndoConfig defines the simulated error detection.
type UndoConfig struct {
	Probability float64 `yaml:"probability"` // Chance that a landing is undone
}

// GazeConfig defines the position stream and how it is shown.
type GazeConfig struct {
	Show           bool          `yaml:"show"`
	Addr           string        `yaml:"addr"` // Tracker bridge, empty disables
	ResolveTimeout time.Duration `yaml:"resolve_timeout"`
	Margin         float64       `yaml:"margin"` // Column margin in layout units

	// Tracker pixel space. Zero keeps samples in layout units.
	ScreenWidth  float64 `yaml:"screen_width"`
	ScreenHeight float64 `yaml:"screen_height"`
}

// MusicConfig defines the optional background music.
type MusicConfig struct {
	File          string     `yaml:"file"` // MP3 file, empty disables music
	PlayRateRange core.Range `yaml:"play_rate_range"`
}

// RemoteConfig defines the remote-control listener.
type RemoteConfig struct {
	Addr string `yaml:"addr"`
}
