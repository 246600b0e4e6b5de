package core

// InputMode selects which source drives a module for a whole session.
type InputMode string

const (
	InputAuto     InputMode = "auto"     // gaze stream if one resolves, else keyboard
	InputGaze     InputMode = "gaze"     // tracker stream over TCP
	InputMouse    InputMode = "mouse"    // terminal mouse as cursor stream
	InputKeyboard InputMode = "keyboard" // manual fallback
)

// RuntimeConfig contains configuration passed to modules when they start.
type RuntimeConfig struct {
	ScreenW  int       // Screen width in characters
	ScreenH  int       // Screen height in characters
	TickRate int       // Frames per second (default 60)
	Seed     int64     // RNG seed for deterministic piece order
	Input    InputMode // Input mode resolved by the platform
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
		Input:    InputKeyboard,
	}
}

// ModuleState summarises a running module for the launcher and HUD.
type ModuleState struct {
	Executing    bool
	Phase        string
	Input        InputMode
	Signal       float64 // Smoothed signal level
	MoveInterval float64 // Seconds between automatic steps
	DropDwell    float64 // Column dwell progress toward a drop, 0..1
	RotateDwell  float64 // Rotation dwell progress, 0..1
	Pieces       int
	Lines        int
	Undos        int
	Restarts     int
}
