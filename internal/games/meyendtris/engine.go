package meyendtris

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

// Phase is the engine's position in the undo animation.
type Phase int

const (
	PhaseFalling Phase = iota
	PhaseUndoHighlighted
)

func (p Phase) String() string {
	switch p {
	case PhaseFalling:
		return "falling"
	case PhaseUndoHighlighted:
		return "undo"
	default:
		return "unknown"
	}
}

// Stats counts what happened during a session.
type Stats struct {
	Pieces   int // Pieces committed to the field
	Lines    int
	Undos    int
	Restarts int
}

// Engine runs one Meyendtris game. It is driven by Tick from a single
// goroutine; only the signal source and the position source may be
// written concurrently.
type Engine struct {
	cfg    config.MeyendtrisConfig
	field  *Field
	piece  Piece
	shapes []Shape
	rng    *rand.Rand

	source   *signal.Source
	smoother *signal.Smoother
	level    float64

	selector *gaze.Selector
	position gaze.Source
	cursor   *core.Point

	pending []core.Command

	undoProbability float64
	mapDwell        bool
	showGaze        bool
	dwell           gaze.Thresholds // used when dwell mapping is off

	phase        Phase
	elapsed      float64
	moveInterval float64
	musicRate    float64
	selectedCol  int

	stats  Stats
	tick   uint64
	emit   markers.Emitter
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the piece order.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// WithSource shares a signal source, e.g. one set over the remote link.
func WithSource(s *signal.Source) Option {
	return func(e *Engine) { e.source = s }
}

// WithPosition enables gaze control from a position source.
func WithPosition(p gaze.Source) Option {
	return func(e *Engine) { e.position = p }
}

// WithLayout places the field in the position source's coordinate space.
func WithLayout(l gaze.Layout) Option {
	return func(e *Engine) { e.selector.SetLayout(l) }
}

// WithMarkers routes fired markers.
func WithMarkers(m markers.Emitter) Option {
	return func(e *Engine) { e.emit = m }
}

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine validates cfg, builds the game and spawns the first piece.
func NewEngine(cfg config.MeyendtrisConfig, opts ...Option) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	smoother, err := signal.NewSmoother(cfg.Signal.BufferLength, cfg.Signal.Initial, cfg.Signal.DeadBand)
	if err != nil {
		return nil, fmt.Errorf("meyendtris: %w", err)
	}

	dwell := gaze.Thresholds{
		Column:   cfg.Dwell.Column,
		Drop:     cfg.Dwell.Drop,
		Rotation: cfg.Dwell.Rotation,
	}

	e := &Engine{
		cfg:             cfg,
		field:           NewField(cfg.Field.Rows, cfg.Field.Cols),
		shapes:          Catalog(),
		rng:             rand.New(rand.NewSource(1)),
		source:          signal.NewSource(cfg.Signal.Initial),
		smoother:        smoother,
		selector:        gaze.NewSelector(DefaultLayout(cfg), dwell),
		undoProbability: cfg.Undo.Probability,
		mapDwell:        cfg.Dwell.Map,
		showGaze:        cfg.Gaze.Show,
		dwell:           dwell,
		selectedCol:     -1,
		emit:            markers.Discard,
		logger:          log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.updateSignal()
	e.spawn()
	return e, nil
}

// DefaultLayout is the terminal layout at the origin: two characters per
// cell horizontally, one per row.
func DefaultLayout(cfg config.MeyendtrisConfig) gaze.Layout {
	return gaze.Layout{
		CellW:        2,
		CellH:        1,
		Cols:         cfg.Field.Cols,
		Rows:         cfg.Field.Rows,
		Margin:       cfg.Gaze.Margin,
		RotationRows: cfg.Field.RotationRows,
	}
}

// Enqueue queues a command for the next tick.
func (e *Engine) Enqueue(cmd core.Command) {
	e.pending = append(e.pending, cmd)
}

// Tick advances the game by dt seconds.
func (e *Engine) Tick(dt float64) {
	e.tick++
	e.updateSignal()

	if e.position != nil {
		e.cursor = nil
		if pt, ok := e.position.Latest(); ok {
			e.cursor = &pt
		}
		e.pending = append(e.pending, e.selector.Step(e.cursor)...)
	}

	cmds := e.pending
	e.pending = nil
	for _, cmd := range cmds {
		if err := e.Apply(cmd); err != nil {
			e.logger.Warn("command ignored", "cmd", cmd.String(), "err", err)
		}
	}

	e.elapsed += dt
	if e.elapsed > e.moveInterval {
		if e.phase == PhaseUndoHighlighted {
			e.undo()
		} else {
			e.moveDown()
		}
		e.elapsed = 0
	}
}

// updateSignal feeds the smoother and recomputes everything derived from
// the smoothed level.
func (e *Engine) updateSignal() {
	e.smoother.Update(e.source.Get())
	e.level = e.smoother.Value()

	in := e.cfg.Signal.InputRange
	e.moveInterval = core.MapRange(e.level, in, e.cfg.Timing.MoveTimeRange)
	e.musicRate = core.MapRange(e.level, in, e.cfg.Music.PlayRateRange)

	if e.mapDwell {
		e.dwell = gaze.Thresholds{
			Column:   core.MapRange(e.level, in, e.cfg.Dwell.ColumnRange),
			Drop:     core.MapRange(e.level, in, e.cfg.Dwell.DropRange),
			Rotation: core.MapRange(e.level, in, e.cfg.Dwell.RotationRange),
		}
	}
	e.selector.SetThresholds(e.dwell)
}

// Apply executes one command immediately. Movement commands follow the
// same collision rules as the automatic fall.
func (e *Engine) Apply(cmd core.Command) error {
	switch cmd.Kind {
	case core.CmdNone:
	case core.CmdMoveLeft:
		e.moveHorizontal(-1)
	case core.CmdMoveRight:
		e.moveHorizontal(1)
	case core.CmdMoveDown:
		e.moveDown()
	case core.CmdRotate:
		e.rotate()
	case core.CmdDrop:
		e.drop()
	case core.CmdSelectColumn:
		return e.selectColumn(cmd.Column)
	case core.CmdToggleSignal:
		in := e.cfg.Signal.InputRange
		v := e.source.Toggle(in.From, in.To)
		e.logger.Info("signal toggled", "bci", v)
	case core.CmdSetParam:
		return e.Set(cmd.Name, cmd.Value)
	default:
		return fmt.Errorf("meyendtris: unsupported command %s", cmd)
	}
	return nil
}

func (e *Engine) spawn() {
	shape := e.shapes[e.rng.Intn(len(e.shapes))].Clone()
	e.piece = Piece{
		Shape: shape,
		Row:   0,
		Col:   e.field.Cols()/2 - shape.Width()/2,
	}
	e.selector.Reset()
	e.emit.Emit(markers.Spawn)

	if e.collides(e.piece.Row, e.piece.Col, e.piece.Shape) {
		e.restart()
	}
}

// restart wipes the field after an overflow. The wiped field always has
// room for any catalog piece, so the second spawn cannot collide.
func (e *Engine) restart() {
	e.field.Reset()
	e.stats.Restarts++
	e.emit.Emit(markers.Restart)
	e.logger.Info("field overflow, restarting", "restarts", e.stats.Restarts)
	e.spawn()
}

func (e *Engine) collides(row, col int, shape Shape) bool {
	return e.field.Collides(row, col, shape)
}

func (e *Engine) moveHorizontal(dir int) {
	if !e.collides(e.piece.Row, e.piece.Col+dir, e.piece.Shape) {
		e.piece.Col += dir
	}
}

// moveDown steps the piece one row; a blocked step lands it.
func (e *Engine) moveDown() {
	if e.collides(e.piece.Row+1, e.piece.Col, e.piece.Shape) {
		e.land()
		return
	}
	e.piece.Row++
}

func (e *Engine) drop() {
	for !e.collides(e.piece.Row+1, e.piece.Col, e.piece.Shape) {
		e.piece.Row++
	}
	e.emit.Emit(markers.Drop)
	e.land()
}

func (e *Engine) rotate() {
	next := e.piece.Shape.Rotate()
	if e.collides(e.piece.Row, e.piece.Col, next) {
		return
	}
	e.piece.Shape = next
	e.emit.Emit(markers.Rotate)
}

// selectColumn walks the piece toward col one step at a time so terrain
// can stop it part way.
func (e *Engine) selectColumn(col int) error {
	if col < 0 || col >= e.field.Cols() {
		return fmt.Errorf("meyendtris: column %d outside [0, %d)", col, e.field.Cols())
	}
	e.selectedCol = col

	for e.piece.Col != col {
		dir := 1
		if e.piece.Col > col {
			dir = -1
		}
		before := e.piece.Col
		e.moveHorizontal(dir)
		if e.piece.Col == before {
			break
		}
	}
	return nil
}

// land either starts the undo animation or commits the piece.
func (e *Engine) land() {
	if e.rng.Float64() < e.undoProbability {
		e.undo()
		return
	}

	e.field.Land(e.piece.Row, e.piece.Col, e.piece.Shape)
	e.stats.Pieces++

	if n := e.field.ClearLines(); n > 0 {
		e.stats.Lines += n
		for range n {
			e.emit.Emit(markers.LineClear)
		}
	}
	e.spawn()
}

// undo is the two-phase removal of a landed piece: the first call
// highlights every empty cell, the second clears the highlight and spawns.
// The landed piece is never committed.
func (e *Engine) undo() {
	if e.phase == PhaseFalling {
		e.field.HighlightEmpty()
		e.phase = PhaseUndoHighlighted
		e.stats.Undos++
		e.emit.Emit(markers.UndoStart)
		return
	}

	e.field.ClearHighlight()
	e.phase = PhaseFalling
	e.emit.Emit(markers.UndoEnd)
	e.spawn()
}

// Field returns the landed cells.
func (e *Engine) Field() *Field { return e.field }

// Piece returns the falling piece.
func (e *Engine) Piece() Piece { return e.piece }

// Phase returns the undo animation phase.
func (e *Engine) Phase() Phase { return e.phase }

// Stats returns the session counters.
func (e *Engine) Stats() Stats { return e.stats }

// Level returns the smoothed signal.
func (e *Engine) Level() float64 { return e.level }

// MoveInterval returns the seconds between automatic steps.
func (e *Engine) MoveInterval() float64 { return e.moveInterval }

// MusicRate returns the playback rate mapped from the signal.
func (e *Engine) MusicRate() float64 { return e.musicRate }

// Source returns the signal source feeding the smoother.
func (e *Engine) Source() *signal.Source { return e.source }

// Selector returns the gaze dwell state machine.
func (e *Engine) Selector() *gaze.Selector { return e.selector }

// Ticks returns how many ticks have run.
func (e *Engine) Ticks() uint64 { return e.tick }
