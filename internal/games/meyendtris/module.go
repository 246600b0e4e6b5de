// Package meyendtris implements the Meyendtris stimulus module: Tetris
// controlled by gaze dwell, paced by a smoothed BCI signal, with a
// simulated error-detection undo.
package meyendtris

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/audio"
	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/registry"
)

// ID is the registry identifier of the module.
const ID = "meyendtris"

func init() {
	registry.Register(ID, func() registry.Module {
		return New()
	})
}

// Module adapts an Engine to the launcher lifecycle.
type Module struct {
	cfg     config.MeyendtrisConfig
	engine  *Engine
	router  *Router
	music   *audio.Player
	input   core.InputMode
	running bool
	logger  *log.Logger

	screenW, screenH int
}

// New creates a module with the default configuration.
func New() *Module {
	return &Module{
		cfg:    config.DefaultMeyendtrisConfig(),
		logger: log.Default(),
	}
}

// ID returns the module identifier.
func (m *Module) ID() string { return ID }

// Title returns the display name.
func (m *Module) Title() string { return "Meyendtris" }

// Config returns the configuration the next Start will use.
func (m *Module) Config() config.MeyendtrisConfig { return m.cfg }

// SetConfig replaces the configuration after validating it.
func (m *Module) SetConfig(cfg config.MeyendtrisConfig) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	m.cfg = cfg
	return nil
}

// LoadConfig reads a configuration file for the next Start.
func (m *Module) LoadConfig(path string) error {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	m.cfg = cfg
	m.logger.Info("config loaded", "path", path)
	return nil
}

// Start builds a fresh engine wired to env.
func (m *Module) Start(env registry.Env) error {
	if env.Logger != nil {
		m.logger = env.Logger
	}

	seed := env.Runtime.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m.input = env.Runtime.Input
	if env.Position == nil && m.input != core.InputKeyboard {
		m.input = core.InputKeyboard
	}

	opts := []Option{
		WithSeed(seed),
		WithLogger(m.logger),
	}
	if env.Signal != nil {
		opts = append(opts, WithSource(env.Signal))
	}
	if env.Markers != nil {
		opts = append(opts, WithMarkers(env.Markers))
	}
	if m.input != core.InputKeyboard {
		opts = append(opts, WithPosition(env.Position))
	}
	if l, ok := FitLayout(env.Runtime.ScreenW, env.Runtime.ScreenH, m.cfg.Field.Rows, m.cfg.Field.Cols, m.cfg.Field.RotationRows, m.cfg.Gaze.Margin); ok {
		opts = append(opts, WithLayout(l))
	}
	m.screenW, m.screenH = env.Runtime.ScreenW, env.Runtime.ScreenH

	engine, err := NewEngine(m.cfg, opts...)
	if err != nil {
		return err
	}

	m.Prune()
	m.engine = engine
	m.router = NewRouter(m.input, m.cfg.Field.Cols, m.logger)
	m.running = true

	if env.Music && m.cfg.Music.File != "" {
		player, err := audio.Open(m.cfg.Music.File, m.cfg.Music.PlayRateRange)
		if err != nil {
			m.logger.Warn("music disabled", "err", err)
		} else {
			m.music = player
		}
	}

	m.logger.Info("module started", "input", m.input, "rows", m.cfg.Field.Rows, "cols", m.cfg.Field.Cols, "seed", seed)
	return nil
}

// Cancel stops ticking and silences the music. The last frame stays
// visible until Prune or the next Start.
func (m *Module) Cancel() {
	m.running = false
	m.stopMusic()
}

// Prune drops the engine and releases audio.
func (m *Module) Prune() {
	m.running = false
	m.stopMusic()
	m.engine = nil
	m.router = nil
}

func (m *Module) stopMusic() {
	if m.music == nil {
		return
	}
	if err := m.music.Close(); err != nil {
		m.logger.Warn("closing music", "err", err)
	}
	m.music = nil
}

// Tick advances the engine by dt seconds.
func (m *Module) Tick(dt float64) {
	if !m.running || m.engine == nil {
		return
	}
	m.engine.Tick(dt)
	if m.music != nil {
		m.music.SetRate(m.engine.MusicRate())
	}
}

// Apply queues a command for the next tick. Commands sent while no
// session runs are dropped.
func (m *Module) Apply(cmd core.Command) {
	if !m.running || m.engine == nil {
		m.logger.Debug("command dropped, module not running", "cmd", cmd.String())
		return
	}
	m.engine.Enqueue(cmd)
}

// Key maps a key press to a command for the session's input mode.
func (m *Module) Key(key string) (core.Command, bool) {
	if m.router == nil {
		return core.Command{}, false
	}
	return m.router.Key(key)
}

// Render draws the field and HUD centred on dst.
func (m *Module) Render(dst *core.Screen) {
	if m.engine == nil {
		dst.DrawTextCentered(dst.Height()/2, "Meyendtris is not running", core.ColorDim)
		return
	}

	l, ok := FitLayout(dst.Width(), dst.Height(), m.cfg.Field.Rows, m.cfg.Field.Cols, m.cfg.Field.RotationRows, m.cfg.Gaze.Margin)
	if !ok {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small", core.ColorText)
		return
	}
	if dst.Width() != m.screenW || dst.Height() != m.screenH {
		m.screenW, m.screenH = dst.Width(), dst.Height()
		m.engine.Selector().SetLayout(l)
	}

	DrawFrame(dst, m.engine.Frame(), l)
	DrawHUD(dst, l, m.State())
}

// State summarises the session.
func (m *Module) State() core.ModuleState {
	if m.engine == nil {
		return core.ModuleState{Input: m.input}
	}

	e := m.engine
	st := e.Stats()
	sel := e.Selector()
	th := sel.Thresholds()

	return core.ModuleState{
		Executing:    m.running,
		Phase:        e.Phase().String(),
		Input:        m.input,
		Signal:       e.Level(),
		MoveInterval: e.MoveInterval(),
		DropDwell:    progress(sel.ColumnDwell(), th.Drop),
		RotateDwell:  progress(sel.RotationDwell(), th.Rotation),
		Pieces:       st.Pieces,
		Lines:        st.Lines,
		Undos:        st.Undos,
		Restarts:     st.Restarts,
	}
}

// Engine returns the running engine, or nil.
func (m *Module) Engine() *Engine { return m.engine }

func progress(count int, threshold float64) float64 {
	if threshold <= 0 {
		return 0
	}
	return core.ClampF(float64(count)/threshold, 0, 1)
}
