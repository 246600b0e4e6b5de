package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

//go:embed defaults/meyendtris.yaml
var defaultMeyendtrisYAML []byte

// DefaultRemoteAddr is the listen address of the remote-control server.
const DefaultRemoteAddr = ":7897"

// DefaultMeyendtrisConfig returns the default Meyendtris configuration.
func DefaultMeyendtrisConfig() MeyendtrisConfig {
	return MeyendtrisConfig{
		Field: FieldConfig{
			Rows:         17,
			Cols:         10,
			RotationRows: 4,
		},
		Signal: SignalConfig{
			Initial:      1.5,
			InputRange:   core.R(1, 2),
			BufferLength: 120,
			DeadBand: signal.DeadBand{
				Enabled: false,
				Low:     1.4,
				High:    1.6,
			},
		},
		Timing: TimingConfig{
			FPS:           60,
			MoveTimeRange: core.R(0.4, 1.5),
		},
		Dwell: DwellConfig{
			Map:           true,
			Column:        5,
			Drop:          300,
			Rotation:      60,
			ColumnRange:   core.R(5, 5),
			DropRange:     core.R(100, 300),
			RotationRange: core.R(30, 120),
		},
		Undo: UndoConfig{
			Probability: 0,
		},
		Gaze: GazeConfig{
			Show:           true,
			ResolveTimeout: time.Second,
			Margin:         0.25,
		},
		Music: MusicConfig{
			PlayRateRange: core.R(1.5, 0.75),
		},
		Remote: RemoteConfig{
			Addr: DefaultRemoteAddr,
		},
	}
}
