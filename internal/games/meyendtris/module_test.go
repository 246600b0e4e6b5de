package meyendtris

import (
	"strings"
	"testing"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
	"github.com/vovakirdan/meyendtris/internal/registry"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

func testEnv(input core.InputMode) registry.Env {
	rt := core.DefaultConfig()
	rt.Seed = 7
	rt.Input = input
	return registry.Env{
		Runtime: rt,
		Signal:  signal.NewSource(1.5),
		Logger:  quietLogger(),
	}
}

func TestRegistered(t *testing.T) {
	if !registry.Exists(ID) {
		t.Fatal("meyendtris should register itself")
	}
	m, err := registry.Create(ID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if m.Title() != "Meyendtris" {
		t.Errorf("Title() = %q", m.Title())
	}
	if _, ok := m.(registry.Configurable); !ok {
		t.Error("module should accept config files")
	}
}

func TestRouterKeys(t *testing.T) {
	r := NewRouter(core.InputKeyboard, 10, quietLogger())

	tests := []struct {
		key  string
		want core.Command
		ok   bool
	}{
		{"left", core.Move(core.CmdMoveLeft), true},
		{"right", core.Move(core.CmdMoveRight), true},
		{"down", core.Move(core.CmdMoveDown), true},
		{"up", core.Move(core.CmdRotate), true},
		{" ", core.Move(core.CmdDrop), true},
		{"1", core.SelectColumn(0), true},
		{"9", core.SelectColumn(8), true},
		{"0", core.SelectColumn(9), true},
		{"b", core.Move(core.CmdToggleSignal), true},
		{"x", core.Command{}, false},
	}
	for _, tc := range tests {
		got, ok := r.Key(tc.key)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Key(%q) = %v, %v; want %v, %v", tc.key, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRouterNarrowField(t *testing.T) {
	r := NewRouter(core.InputKeyboard, 6, quietLogger())
	if _, ok := r.Key("7"); ok {
		t.Error("column 6 does not exist on a 6-column field")
	}
	if _, ok := r.Key("0"); ok {
		t.Error("column 9 does not exist on a 6-column field")
	}
	if cmd, ok := r.Key("6"); !ok || cmd.Column != 5 {
		t.Errorf("Key(6) = %v, %v", cmd, ok)
	}
}

func TestRouterGazeModeIgnoresMovement(t *testing.T) {
	r := NewRouter(core.InputGaze, 10, quietLogger())
	if _, ok := r.Key("left"); ok {
		t.Error("movement keys are inactive in gaze mode")
	}
	if cmd, ok := r.Key("b"); !ok || cmd.Kind != core.CmdToggleSignal {
		t.Error("signal toggle works in every mode")
	}
}

func TestModuleLifecycle(t *testing.T) {
	m := New()
	if err := m.Start(testEnv(core.InputKeyboard)); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !m.State().Executing {
		t.Fatal("module should be executing after Start")
	}

	m.Apply(core.Move(core.CmdDrop))
	m.Tick(1.0 / 60)
	if m.State().Pieces != 1 {
		t.Errorf("Pieces = %d, want 1", m.State().Pieces)
	}

	m.Cancel()
	ticks := m.Engine().Ticks()
	m.Tick(1)
	if m.Engine().Ticks() != ticks {
		t.Error("cancelled module must not tick")
	}
	m.Apply(core.Move(core.CmdDrop)) // dropped quietly

	m.Prune()
	if m.Engine() != nil {
		t.Error("Prune should drop the engine")
	}
	m.Tick(1) // no-op without an engine

	if err := m.Start(testEnv(core.InputKeyboard)); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if m.State().Pieces != 0 {
		t.Error("a new session starts with fresh stats")
	}
}

func TestModuleFallsBackToKeyboard(t *testing.T) {
	m := New()
	if err := m.Start(testEnv(core.InputGaze)); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if m.State().Input != core.InputKeyboard {
		t.Errorf("input = %s, want keyboard without a position source", m.State().Input)
	}
	if _, ok := m.Key("left"); !ok {
		t.Error("keyboard movement should be active")
	}
}

func TestModuleGazeMode(t *testing.T) {
	env := testEnv(core.InputMouse)
	env.Position = gaze.NewCursor()

	m := New()
	if err := m.Start(env); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if m.State().Input != core.InputMouse {
		t.Errorf("input = %s, want mouse", m.State().Input)
	}
	if _, ok := m.Key("left"); ok {
		t.Error("movement keys should be off in mouse mode")
	}
}

func TestModuleSetConfig(t *testing.T) {
	m := New()
	cfg := config.DefaultMeyendtrisConfig()
	cfg.Field.Cols = 1
	if err := m.SetConfig(cfg); err == nil {
		t.Error("SetConfig should validate")
	}

	cfg = config.DefaultMeyendtrisConfig()
	cfg.Field.Rows = 12
	if err := m.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig() failed: %v", err)
	}
	if err := m.Start(testEnv(core.InputKeyboard)); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if m.Engine().Field().Rows() != 12 {
		t.Errorf("rows = %d, want 12", m.Engine().Field().Rows())
	}
}

func TestModuleRender(t *testing.T) {
	m := New()
	screen := core.NewScreen(80, 24)

	m.Render(screen)
	if !strings.Contains(screen.String(), "not running") {
		t.Error("idle module should say so")
	}

	if err := m.Start(testEnv(core.InputKeyboard)); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	screen.Clear()
	m.Render(screen)

	out := screen.String()
	for _, want := range []string{"┌", "┘", "MEYENDTRIS", "signal", "pieces"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
	if !strings.ContainsRune(out, '█') {
		t.Error("falling piece not drawn")
	}

	small := core.NewScreen(20, 10)
	m.Render(small)
	if !strings.Contains(small.String(), "too small") {
		t.Error("tiny screen should show a message")
	}
}

func TestFitLayout(t *testing.T) {
	l, ok := FitLayout(80, 24, 17, 10, 4, 0.25)
	if !ok {
		t.Fatal("80x24 should fit a 17x10 field")
	}
	if l.CellW != 2 || l.CellH != 1 || l.Cols != 10 || l.Rows != 17 {
		t.Errorf("layout = %+v", l)
	}
	if l.OriginX < 1 || l.OriginY < 1 {
		t.Errorf("origin leaves no room for the border: %+v", l)
	}
	if int(l.OriginX)+l.Cols*2+1+hudWidth > 80 {
		t.Errorf("layout overflows the screen: %+v", l)
	}

	if _, ok := FitLayout(30, 24, 17, 10, 4, 0.25); ok {
		t.Error("30 columns is too narrow")
	}
}

func TestDrawFrameCursorAndOverlay(t *testing.T) {
	l, _ := FitLayout(80, 24, 17, 10, 4, 0.25)
	cells := make([][]int, 17)
	for r := range cells {
		cells[r] = make([]int, 10)
	}
	cells[16][0] = 3
	cursor := core.Point{X: l.OriginX + 4.5, Y: l.OriginY + 10.5}

	screen := core.NewScreen(80, 24)
	DrawFrame(screen, Frame{Cells: cells, Cursor: &cursor, Column: 5, RotationRows: 4, RotationActive: true}, l)

	ox, oy := int(l.OriginX), int(l.OriginY)
	if c := screen.GetCell(ox, oy+16); c.Rune != '█' || c.Fg != core.ColorBlock3 {
		t.Errorf("landed cell = %+v", c)
	}
	if c := screen.GetCell(ox+5*2, oy+8); c.Bg != core.ColorOverlay {
		t.Errorf("selected column bg = %d, want overlay", c.Bg)
	}
	if c := screen.GetCell(ox, oy); c.Bg != core.ColorRotationZoneActive {
		t.Errorf("rotation zone bg = %d, want active", c.Bg)
	}
	if c := screen.GetCell(ox+4, oy+10); c.Fg != core.ColorCursor {
		t.Errorf("cursor cell = %+v", c)
	}
}
