// Package launcher owns the loaded stimulus module. It drains remote
// commands at the start of every tick, ticks the module, and keeps a
// module fault from taking the process down.
package launcher

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/registry"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

// DefaultQueueSize is the remote command buffer length.
const DefaultQueueSize = 128

// ErrNoModule is returned by Start when nothing is loaded.
var ErrNoModule = errors.New("launcher: no module loaded")

// SessionStore records module sessions. Implemented by the sqlite store.
type SessionStore interface {
	StartSession(id, module string, input core.InputMode, at time.Time) error
	EndSession(id string, st core.ModuleState, at time.Time) error
}

// Options configures a Launcher.
type Options struct {
	Runtime   core.RuntimeConfig
	Signal    *signal.Source      // Shared with every module; created at the default initial level when nil
	Position  gaze.Source         // Nil for keyboard sessions
	Markers   *markers.Dispatcher // Optional
	Sessions  SessionStore        // Optional
	Logger    *log.Logger
	Music     bool
	QueueSize int
}

// Launcher runs one module at a time. Tick, Key, Render and the lifecycle
// methods belong to a single goroutine; Submit may be called from any.
type Launcher struct {
	opts      Options
	module    registry.Module
	executing bool
	session   string
	tick      uint64
	faults    int

	commands chan string
	logger   *log.Logger
}

// New creates a launcher and fires the launcher start marker.
func New(opts Options) *Launcher {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Signal == nil {
		opts.Signal = signal.NewSource(config.DefaultMeyendtrisConfig().Signal.Initial)
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = DefaultQueueSize
	}

	l := &Launcher{
		opts:     opts,
		commands: make(chan string, opts.QueueSize),
		logger:   opts.Logger,
	}
	l.fire(markers.LauncherStart)
	return l
}

// Load replaces the current module with a fresh instance of id. The
// previous module is cancelled and pruned.
func (l *Launcher) Load(id string) error {
	m, err := registry.Create(id)
	if err != nil {
		return err
	}
	l.Cancel()
	l.Prune()
	l.module = m
	l.logger.Info("module loaded", "module", id)
	return nil
}

// LoadConfig hands a configuration file to the loaded module.
func (l *Launcher) LoadConfig(path string) error {
	if l.module == nil {
		return ErrNoModule
	}
	c, ok := l.module.(registry.Configurable)
	if !ok {
		return fmt.Errorf("launcher: module %s does not take config files", l.module.ID())
	}
	return c.LoadConfig(path)
}

// Start begins a new session of the loaded module, cancelling a running one.
func (l *Launcher) Start() error {
	if l.module == nil {
		return ErrNoModule
	}
	l.Cancel()

	l.session = uuid.NewString()
	env := registry.Env{
		Runtime:  l.opts.Runtime,
		Signal:   l.opts.Signal,
		Position: l.opts.Position,
		Markers:  markers.EmitterFunc(l.fire),
		Logger:   l.logger,
		Music:    l.opts.Music,
	}
	if err := l.module.Start(env); err != nil {
		l.session = ""
		return fmt.Errorf("launcher: start %s: %w", l.module.ID(), err)
	}
	l.executing = true
	l.fire(markers.ModuleStart)

	if l.opts.Sessions != nil {
		st := l.module.State()
		if err := l.opts.Sessions.StartSession(l.session, l.module.ID(), st.Input, time.Now()); err != nil {
			l.logger.Warn("recording session start", "err", err)
		}
	}
	l.logger.Info("module started", "module", l.module.ID(), "session", l.session)
	return nil
}

// Cancel stops the running session. The module can be started again.
func (l *Launcher) Cancel() {
	if l.module == nil || !l.executing {
		l.executing = false
		return
	}
	l.module.Cancel()
	l.executing = false
	l.fire(markers.ModuleCancel)

	if l.opts.Sessions != nil {
		if err := l.opts.Sessions.EndSession(l.session, l.module.State(), time.Now()); err != nil {
			l.logger.Warn("recording session end", "err", err)
		}
	}
	l.logger.Info("module cancelled", "module", l.module.ID(), "session", l.session)
}

// Prune releases the module's resources.
func (l *Launcher) Prune() {
	if l.module == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("module prune panicked", "module", l.module.ID(), "panic", r)
		}
	}()
	l.module.Prune()
}

// Close cancels and prunes the module.
func (l *Launcher) Close() {
	l.Cancel()
	l.Prune()
}

// Submit queues a remote line for the next tick. Returns false when the
// queue is full and the line was dropped.
func (l *Launcher) Submit(line string) bool {
	select {
	case l.commands <- line:
		return true
	default:
		l.logger.Warn("command queue full, dropping", "line", line)
		return false
	}
}

// Tick drains queued commands and advances the running module by dt
// seconds. A panicking module tick is logged and skipped.
func (l *Launcher) Tick(dt float64) {
	l.tick++
	l.drain()

	if l.module == nil || !l.executing {
		return
	}
	l.tickModule(dt)
}

func (l *Launcher) tickModule(dt float64) {
	defer func() {
		if r := recover(); r != nil {
			l.faults++
			l.logger.Error("module tick panicked", "module", l.module.ID(), "tick", l.tick, "panic", r)
		}
	}()
	l.module.Tick(dt)
}

func (l *Launcher) drain() {
	for {
		select {
		case line := <-l.commands:
			l.Handle(line)
		default:
			return
		}
	}
}

// Handle executes one protocol line immediately. Unknown commands are
// ignored; failures are logged.
func (l *Launcher) Handle(line string) {
	req, err := Parse(line)
	if err != nil {
		if errors.Is(err, ErrMalformedSetup) {
			l.logger.Warn("malformed setup", "line", line, "err", err)
		} else {
			l.logger.Debug("ignoring command", "line", line)
		}
		return
	}

	switch req.Op {
	case OpStart:
		if err := l.Start(); err != nil {
			l.logger.Error("start failed", "err", err)
		}
	case OpCancel:
		l.Cancel()
	case OpPrune:
		l.Prune()
	case OpLoad:
		if err := l.Load(req.Arg); err != nil {
			l.logger.Error("load failed", "module", req.Arg, "err", err)
		}
	case OpConfig:
		if err := l.LoadConfig(req.Arg); err != nil {
			l.logger.Error("config failed", "file", req.Arg, "err", err)
		}
	case OpSetup:
		for _, a := range req.Assign {
			l.setup(a)
		}
	case OpCommand:
		l.apply(req.Command)
	}
}

// setup assigns one parameter. The signal is owned by the launcher so it
// can be set while no session runs; everything else goes to the module.
func (l *Launcher) setup(a Assignment) {
	if isSignalParam(a.Name) {
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil || math.IsNaN(v) {
			l.logger.Warn("bad signal value", "value", a.Value)
			return
		}
		l.opts.Signal.Set(v)
		return
	}
	l.apply(core.SetParam(a.Name, a.Value))
}

func isSignalParam(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimPrefix(name, "self.") == "bci"
}

func (l *Launcher) apply(cmd core.Command) {
	if l.module == nil {
		l.logger.Debug("no module for command", "cmd", cmd.String())
		return
	}
	l.module.Apply(cmd)
}

// Key routes a key press through the module's key map. Returns false when
// the key means nothing to the module.
func (l *Launcher) Key(key string) bool {
	km, ok := l.module.(registry.KeyMapper)
	if !ok {
		return false
	}
	cmd, ok := km.Key(key)
	if !ok {
		return false
	}
	l.module.Apply(cmd)
	return true
}

// Render draws the module, or a placeholder when nothing is loaded.
func (l *Launcher) Render(dst *core.Screen) {
	if l.module == nil {
		dst.DrawTextCentered(dst.Height()/2, "No module loaded", core.ColorDim)
		return
	}
	l.module.Render(dst)
}

// SetScreenSize records the terminal size handed to the next Start.
func (l *Launcher) SetScreenSize(w, h int) {
	l.opts.Runtime.ScreenW = w
	l.opts.Runtime.ScreenH = h
}

// State returns the module summary, zero when nothing is loaded.
func (l *Launcher) State() core.ModuleState {
	if l.module == nil {
		return core.ModuleState{}
	}
	st := l.module.State()
	st.Executing = st.Executing && l.executing
	return st
}

// Module returns the loaded module, or nil.
func (l *Launcher) Module() registry.Module { return l.module }

// Executing reports whether a session is running.
func (l *Launcher) Executing() bool { return l.executing }

// Session returns the id of the current or last session.
func (l *Launcher) Session() string { return l.session }

// Signal returns the shared signal source.
func (l *Launcher) Signal() *signal.Source { return l.opts.Signal }

// Ticks returns how many ticks have run.
func (l *Launcher) Ticks() uint64 { return l.tick }

// Faults returns how many module ticks panicked.
func (l *Launcher) Faults() int { return l.faults }

// fire stamps a marker with the tick and session and dispatches it.
func (l *Launcher) fire(name markers.Name) {
	if l.opts.Markers == nil {
		return
	}
	l.opts.Markers.Fire(markers.Marker{
		Name:    name,
		Tick:    l.tick,
		Session: l.session,
	})
}
