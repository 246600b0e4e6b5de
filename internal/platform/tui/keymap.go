package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the launcher-level key bindings. Game keys (arrows,
// space, digits, b) go to the module's own key map.
type KeyMap struct {
	Continue key.Binding
	Start    key.Binding
	Cancel   key.Binding
	Prune    key.Binding
	Help     key.Binding
	Quit     key.Binding

	// Shown in help only; handled by the module.
	Move   key.Binding
	Rotate key.Binding
	Drop   key.Binding
	Column key.Binding
	Toggle key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Rotate, k.Drop, k.Toggle, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Rotate, k.Drop, k.Column, k.Toggle},
		{k.Start, k.Cancel, k.Prune},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings. F1, F2 and F5 start,
// cancel and prune the module.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Start: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "start"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "cancel"),
		),
		Prune: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("F5", "prune"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc", "q"),
			key.WithHelp("q/esc", "quit"),
		),
		Move: key.NewBinding(
			key.WithKeys("left", "right", "down"),
			key.WithHelp("←/→/↓", "move"),
		),
		Rotate: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "rotate"),
		),
		Drop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "drop"),
		),
		Column: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-0", "column"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "toggle signal"),
		),
	}
}

// Action is what a key means to the front end.
type Action int

const (
	ActionNone     Action = iota
	ActionContinue        // Leave the wait screen
	ActionStart
	ActionCancel
	ActionPrune
	ActionHelp
	ActionQuit
	ActionModule // Forward to the module key map
)

// Resolve maps a key message to a front-end action.
func (k KeyMap) Resolve(msg tea.KeyMsg) Action {
	switch {
	case key.Matches(msg, k.Quit):
		return ActionQuit
	case key.Matches(msg, k.Continue):
		return ActionContinue
	case key.Matches(msg, k.Start):
		return ActionStart
	case key.Matches(msg, k.Cancel):
		return ActionCancel
	case key.Matches(msg, k.Prune):
		return ActionPrune
	case key.Matches(msg, k.Help):
		return ActionHelp
	}
	return ActionModule
}
