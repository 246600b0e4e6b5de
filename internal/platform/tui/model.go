package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/launcher"
)

// footerRows is the space below the module screen for the HUD and help.
const footerRows = 2

// Options configures the front end.
type Options struct {
	TickRate  int
	Cursor    *gaze.Cursor // Fed from mouse motion in mouse sessions
	AutoStart bool         // Skip the wait screen
	Logger    *log.Logger
}

// Model is the Bubble Tea model driving a launcher.
type Model struct {
	launcher *launcher.Launcher
	screen   *core.Screen
	cursor   *gaze.Cursor
	keys     KeyMap
	help     help.Model
	hud      HUD
	tickRate int
	last     time.Time
	waiting  bool
	quitting bool
	logger   *log.Logger
}

// NewModel creates a model for l. Until the user presses enter the model
// shows a wait screen; the module starts afterwards.
func NewModel(l *launcher.Launcher, opts Options) Model {
	if opts.TickRate < 1 {
		opts.TickRate = 60
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return Model{
		launcher: l,
		screen:   core.NewScreen(core.DefaultConfig().ScreenW, core.DefaultConfig().ScreenH-footerRows),
		cursor:   opts.Cursor,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		hud:      NewHUD(),
		tickRate: opts.TickRate,
		waiting:  !opts.AutoStart,
		logger:   opts.Logger,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.tickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.cursor != nil && msg.Action == tea.MouseActionMotion {
			// Sample the centre of the cell under the pointer.
			m.cursor.Move(float64(msg.X)+0.5, float64(msg.Y)+0.5)
		}
		return m, nil

	case tea.WindowSizeMsg:
		h := max(msg.Height-footerRows, 0)
		m.screen.Resize(msg.Width, h)
		m.launcher.SetScreenSize(msg.Width, h)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Resolve(msg) {
	case ActionQuit:
		m.quitting = true
		m.launcher.Close()
		return m, tea.Quit
	case ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case ActionContinue:
		if m.waiting {
			m.waiting = false
			m.launcher.Handle("start")
		}
	case ActionStart:
		m.waiting = false
		m.launcher.Handle("start")
	case ActionCancel:
		m.launcher.Handle("cancel")
	case ActionPrune:
		m.launcher.Handle("prune")
	case ActionModule:
		if !m.waiting {
			m.launcher.Key(msg.String())
		}
	}
	return m, nil
}

// handleTick advances the launcher by the wall time since the last tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	dt := frameDelta(m.last, now, m.tickRate)
	m.last = now
	m.launcher.Tick(dt)
	return m, tickCmd(m.tickRate)
}

// Waiting reports whether the wait screen is showing.
func (m Model) Waiting() bool { return m.waiting }

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	if m.waiting {
		m.drawWaitScreen()
	} else {
		m.launcher.Render(m.screen)
	}

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(m.hud.View(m.launcher.State()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) drawWaitScreen() {
	title := "Meyendtris"
	if mod := m.launcher.Module(); mod != nil {
		title = mod.Title()
	}
	mid := m.screen.Height() / 2
	m.screen.DrawTextCentered(mid-1, title, core.ColorText)
	m.screen.DrawTextCentered(mid+1, "Press enter to continue", core.ColorDim)
}

// Run starts the Bubble Tea program for l on the local terminal.
func Run(l *launcher.Launcher, opts Options) error {
	model := NewModel(l, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),      // Use alternate screen buffer
		tea.WithMouseAllMotion(), // Pointer motion drives the gaze cursor
	)

	_, err := p.Run()
	return err
}
