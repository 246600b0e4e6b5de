package meyendtris

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/core"
)

// Router turns key presses into commands for a session whose input mode
// was decided at startup. Movement keys only work in keyboard mode; the
// signal toggle works in every mode.
type Router struct {
	mode   core.InputMode
	cols   int
	logger *log.Logger
}

// NewRouter creates a router for a field with cols columns.
func NewRouter(mode core.InputMode, cols int, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{mode: mode, cols: cols, logger: logger}
}

// Mode returns the session input mode.
func (r *Router) Mode() core.InputMode {
	return r.mode
}

// Key maps a key name ("left", "up", "3", " ", "b", ...) to a command.
// Digits 1..9 select columns 0..8 and 0 selects column 9.
func (r *Router) Key(key string) (core.Command, bool) {
	if key == "b" {
		return core.Move(core.CmdToggleSignal), true
	}
	if r.mode != core.InputKeyboard {
		return core.Command{}, false
	}

	switch key {
	case "left":
		return core.Move(core.CmdMoveLeft), true
	case "right":
		return core.Move(core.CmdMoveRight), true
	case "down":
		return core.Move(core.CmdMoveDown), true
	case "up":
		return core.Move(core.CmdRotate), true
	case " ", "space":
		return core.Move(core.CmdDrop), true
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		col := int(key[0]-'0') - 1
		if key[0] == '0' {
			col = 9
		}
		if col >= r.cols {
			r.logger.Warn("column out of range", "key", key, "cols", r.cols)
			return core.Command{}, false
		}
		return core.SelectColumn(col), true
	}

	return core.Command{}, false
}
