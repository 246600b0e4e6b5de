package core

import "fmt"

// CommandKind is a semantic module command, abstracted from whichever
// source (keyboard, gaze dwell, remote control) produced it.
type CommandKind int

const (
	CmdNone         CommandKind = iota
	CmdMoveLeft                 // Left arrow, "left"
	CmdMoveRight                // Right arrow, "right"
	CmdMoveDown                 // Down arrow, "down"
	CmdRotate                   // Up arrow, rotation zone dwell, "rotate"
	CmdDrop                     // Space, column drop dwell, "drop"
	CmdSelectColumn             // Digit keys, column dwell, "select <n>"
	CmdToggleSignal             // B key, "toggle"
	CmdSetParam                 // "setup name=value"
)

// String returns a human-readable name for the command kind.
func (k CommandKind) String() string {
	switch k {
	case CmdNone:
		return "None"
	case CmdMoveLeft:
		return "MoveLeft"
	case CmdMoveRight:
		return "MoveRight"
	case CmdMoveDown:
		return "MoveDown"
	case CmdRotate:
		return "Rotate"
	case CmdDrop:
		return "Drop"
	case CmdSelectColumn:
		return "SelectColumn"
	case CmdToggleSignal:
		return "ToggleSignal"
	case CmdSetParam:
		return "SetParam"
	default:
		return "Unknown"
	}
}

// Command is one queued instruction for a module.
type Command struct {
	Kind   CommandKind
	Column int    // CmdSelectColumn only
	Name   string // CmdSetParam only
	Value  string // CmdSetParam only
}

// Move builds a parameterless command.
func Move(kind CommandKind) Command {
	return Command{Kind: kind}
}

// SelectColumn builds a column selection command.
func SelectColumn(col int) Command {
	return Command{Kind: CmdSelectColumn, Column: col}
}

// SetParam builds a parameter assignment command.
func SetParam(name, value string) Command {
	return Command{Kind: CmdSetParam, Name: name, Value: value}
}

func (c Command) String() string {
	switch c.Kind {
	case CmdSelectColumn:
		return fmt.Sprintf("SelectColumn(%d)", c.Column)
	case CmdSetParam:
		return fmt.Sprintf("SetParam(%s=%s)", c.Name, c.Value)
	default:
		return c.Kind.String()
	}
}
