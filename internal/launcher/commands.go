package launcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/meyendtris/internal/core"
)

// Op is the launcher-level meaning of a remote line.
type Op int

const (
	OpNone   Op = iota
	OpStart     // "start"
	OpCancel    // "cancel", "stop"
	OpPrune     // "prune"
	OpLoad      // "load <module>"
	OpConfig    // "config <file>[.yaml]"
	OpSetup     // "setup a=b[;c=d]"
	OpCommand   // game command forwarded to the module
)

// String returns the protocol keyword for the op.
func (o Op) String() string {
	switch o {
	case OpStart:
		return "start"
	case OpCancel:
		return "cancel"
	case OpPrune:
		return "prune"
	case OpLoad:
		return "load"
	case OpConfig:
		return "config"
	case OpSetup:
		return "setup"
	case OpCommand:
		return "command"
	default:
		return "none"
	}
}

// Assignment is one name=value pair of a setup line.
type Assignment struct {
	Name  string
	Value string
}

// Request is a parsed remote line.
type Request struct {
	Op      Op
	Arg     string       // OpLoad, OpConfig
	Assign  []Assignment // OpSetup
	Command core.Command // OpCommand
}

var (
	// ErrUnknownCommand is returned for lines outside the protocol.
	ErrUnknownCommand = errors.New("launcher: unknown command")

	// ErrMalformedSetup is returned for setup lines without a valid assignment.
	ErrMalformedSetup = errors.New("launcher: malformed setup")
)

// Parse reads one protocol line. Surrounding whitespace is ignored.
func Parse(line string) (Request, error) {
	line = strings.TrimSpace(line)
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "start":
		return Request{Op: OpStart}, nil
	case "cancel", "stop":
		return Request{Op: OpCancel}, nil
	case "prune":
		return Request{Op: OpPrune}, nil
	case "load":
		if rest == "" {
			return Request{}, fmt.Errorf("%w: load needs a module name", ErrUnknownCommand)
		}
		return Request{Op: OpLoad, Arg: rest}, nil
	case "config":
		if rest == "" {
			return Request{}, fmt.Errorf("%w: config needs a file name", ErrUnknownCommand)
		}
		return Request{Op: OpConfig, Arg: rest}, nil
	case "setup":
		assign, err := parseSetup(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Op: OpSetup, Assign: assign}, nil
	}

	cmd, err := parseGameCommand(verb, rest)
	if err != nil {
		return Request{}, err
	}
	return Request{Op: OpCommand, Command: cmd}, nil
}

func parseSetup(body string) ([]Assignment, error) {
	var out []Assignment
	for _, part := range strings.Split(body, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedSetup, part)
		}
		out = append(out, Assignment{Name: name, Value: value})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no assignments", ErrMalformedSetup)
	}
	return out, nil
}

func parseGameCommand(verb, arg string) (core.Command, error) {
	switch verb {
	case "left":
		return core.Move(core.CmdMoveLeft), nil
	case "right":
		return core.Move(core.CmdMoveRight), nil
	case "down":
		return core.Move(core.CmdMoveDown), nil
	case "rotate":
		return core.Move(core.CmdRotate), nil
	case "drop":
		return core.Move(core.CmdDrop), nil
	case "toggle":
		return core.Move(core.CmdToggleSignal), nil
	case "select":
		col, err := strconv.Atoi(arg)
		if err != nil {
			return core.Command{}, fmt.Errorf("%w: select %q", ErrUnknownCommand, arg)
		}
		return core.SelectColumn(col), nil
	}
	return core.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
}
