package launcher

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/config"
	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/markers"
	"github.com/vovakirdan/meyendtris/internal/registry"
	"github.com/vovakirdan/meyendtris/internal/signal"
)

// recorder is a module that records what the launcher does to it.
type recorder struct {
	env      registry.Env
	started  int
	canceled int
	pruned   int
	ticks    int
	applied  []core.Command
	config   string
	panics   bool
	running  bool
}

func (p *recorder) ID() string    { return "recorder" }
func (p *recorder) Title() string { return "Recorder" }

func (p *recorder) Start(env registry.Env) error {
	p.env = env
	p.started++
	p.running = true
	env.Markers.Emit(markers.Spawn)
	return nil
}

func (p *recorder) Cancel() {
	p.canceled++
	p.running = false
}

func (p *recorder) Prune() { p.pruned++ }

func (p *recorder) Tick(float64) {
	if p.panics {
		panic("boom")
	}
	p.ticks++
}

func (p *recorder) Apply(cmd core.Command) { p.applied = append(p.applied, cmd) }

func (p *recorder) Render(dst *core.Screen) { dst.DrawText(0, 0, "recorder", core.ColorText) }

func (p *recorder) LoadConfig(path string) error {
	p.config = path
	return nil
}

func (p *recorder) State() core.ModuleState {
	return core.ModuleState{Executing: p.running, Input: core.InputKeyboard, Pieces: p.ticks}
}

func (p *recorder) Key(key string) (core.Command, bool) {
	if key == "up" {
		return core.Move(core.CmdRotate), true
	}
	return core.Command{}, false
}

var lastRecorder *recorder

func init() {
	registry.Register("recorder", func() registry.Module {
		lastRecorder = &recorder{}
		return lastRecorder
	})
}

type sessionLog struct {
	started []string
	ended   map[string]core.ModuleState
}

func (s *sessionLog) StartSession(id, module string, input core.InputMode, at time.Time) error {
	s.started = append(s.started, id)
	return nil
}

func (s *sessionLog) EndSession(id string, st core.ModuleState, at time.Time) error {
	if s.ended == nil {
		s.ended = make(map[string]core.ModuleState)
	}
	s.ended[id] = st
	return nil
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func newLauncher(t *testing.T, opts Options) (*Launcher, *recorder) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testLogger(&bytes.Buffer{})
	}
	l := New(opts)
	if err := l.Load("recorder"); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return l, lastRecorder
}

func TestStartTickCancel(t *testing.T) {
	sessions := &sessionLog{}
	l, p := newLauncher(t, Options{Sessions: sessions})

	l.Tick(0.1)
	if p.ticks != 0 {
		t.Error("module must not tick before start")
	}

	if err := l.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !l.Executing() || l.Session() == "" {
		t.Fatal("start should open a session")
	}
	l.Tick(0.1)
	l.Tick(0.1)
	if p.ticks != 2 {
		t.Errorf("ticks = %d, want 2", p.ticks)
	}

	first := l.Session()
	if err := l.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if p.canceled != 1 {
		t.Errorf("restart should cancel the running session, canceled = %d", p.canceled)
	}
	if l.Session() == first {
		t.Error("each start gets a new session id")
	}

	l.Cancel()
	l.Tick(0.1)
	if p.ticks != 2 {
		t.Error("cancelled module must not tick")
	}
	if len(sessions.started) != 2 || len(sessions.ended) != 2 {
		t.Errorf("sessions started %d, ended %d; want 2, 2", len(sessions.started), len(sessions.ended))
	}
	if sessions.ended[first].Pieces != 2 {
		t.Errorf("first session state = %+v", sessions.ended[first])
	}
}

func TestStartWithoutModule(t *testing.T) {
	l := New(Options{Logger: testLogger(&bytes.Buffer{})})
	if err := l.Start(); !errors.Is(err, ErrNoModule) {
		t.Errorf("Start() = %v, want ErrNoModule", err)
	}
	l.Tick(0.1) // no module, no panic
	if l.Key("up") {
		t.Error("Key without a module should be ignored")
	}
}

func TestRemoteLinesDrainAtTick(t *testing.T) {
	l, p := newLauncher(t, Options{})

	for _, line := range []string{"start", "left", "select 3", "setup showGaze=false; self.undoProbability = 0.5", "nonsense"} {
		if !l.Submit(line) {
			t.Fatalf("Submit(%q) dropped", line)
		}
	}
	if p.started != 0 {
		t.Fatal("commands must wait for the tick")
	}

	l.Tick(0.1)
	if p.started != 1 || p.ticks != 1 {
		t.Errorf("started %d ticks %d, want 1 1", p.started, p.ticks)
	}
	want := []core.Command{
		core.Move(core.CmdMoveLeft),
		core.SelectColumn(3),
		core.SetParam("showGaze", "false"),
		core.SetParam("self.undoProbability", "0.5"),
	}
	if len(p.applied) != len(want) {
		t.Fatalf("applied %v, want %v", p.applied, want)
	}
	for i := range want {
		if p.applied[i] != want[i] {
			t.Errorf("applied[%d] = %v, want %v", i, p.applied[i], want[i])
		}
	}

	l.Submit("stop")
	l.Tick(0.1)
	if l.Executing() {
		t.Error("stop should cancel")
	}
}

func TestSetupSignalWhileIdle(t *testing.T) {
	src := signal.NewSource(1.5)
	l, p := newLauncher(t, Options{Signal: src})

	l.Handle("setup bci=1.9")
	if src.Get() != 1.9 {
		t.Errorf("signal = %v, want 1.9", src.Get())
	}
	l.Handle("setup self.BCI=1.2;bci=nope")
	if src.Get() != 1.2 {
		t.Errorf("signal = %v, want 1.2", src.Get())
	}
	l.Handle("setup bci=NaN")
	if src.Get() != 1.2 {
		t.Errorf("NaN must be rejected, signal = %v", src.Get())
	}
	l.Handle("setup bci=inf")
	if !math.IsInf(src.Get(), 1) {
		t.Errorf("infinity is accepted as is, signal = %v", src.Get())
	}
	if len(p.applied) != 0 {
		t.Error("signal assignments stay in the launcher")
	}
}

func TestDefaultSignalMatchesConfig(t *testing.T) {
	l, _ := newLauncher(t, Options{})
	want := config.DefaultMeyendtrisConfig().Signal.Initial
	if got := l.Signal().Get(); got != want {
		t.Errorf("default signal = %v, want %v", got, want)
	}
}

func TestMalformedSetupLogged(t *testing.T) {
	var buf bytes.Buffer
	l, p := newLauncher(t, Options{Logger: testLogger(&buf)})

	l.Handle("setup =3")
	if len(p.applied) != 0 {
		t.Error("malformed setup must not reach the module")
	}
	if !strings.Contains(buf.String(), "malformed setup") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestTickPanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	l, p := newLauncher(t, Options{Logger: testLogger(&buf)})
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}

	p.panics = true
	l.Tick(0.1)
	l.Tick(0.1)
	if l.Faults() != 2 {
		t.Errorf("Faults() = %d, want 2", l.Faults())
	}
	if !strings.Contains(buf.String(), "module tick panicked") {
		t.Error("panic should be logged")
	}

	p.panics = false
	l.Tick(0.1)
	if p.ticks != 1 {
		t.Error("module keeps running after a faulted frame")
	}
}

func TestLoadConfigAndPrune(t *testing.T) {
	l, p := newLauncher(t, Options{})

	l.Submit("config study1")
	l.Submit("prune")
	l.Tick(0)
	if p.config != "study1" {
		t.Errorf("config = %q", p.config)
	}
	if p.pruned != 1 {
		t.Errorf("pruned = %d, want 1", p.pruned)
	}
}

func TestLoadUnknownKeepsModule(t *testing.T) {
	l, p := newLauncher(t, Options{})
	l.Handle("load nothing-here")
	if l.Module() != registry.Module(p) {
		t.Error("failed load must keep the current module")
	}

	if err := l.Load("recorder"); err != nil {
		t.Fatal(err)
	}
	if p.pruned != 1 {
		t.Error("replaced module should be pruned")
	}
	if l.Module() == registry.Module(p) {
		t.Error("load should create a fresh instance")
	}
}

func TestKeyPassthrough(t *testing.T) {
	l, p := newLauncher(t, Options{})
	if !l.Key("up") {
		t.Fatal("mapped key should be accepted")
	}
	if l.Key("q") {
		t.Error("unmapped key should be rejected")
	}
	if len(p.applied) != 1 || p.applied[0].Kind != core.CmdRotate {
		t.Errorf("applied = %v", p.applied)
	}
}

func TestSubmitNeverBlocks(t *testing.T) {
	l, _ := newLauncher(t, Options{QueueSize: 2})
	l.Submit("left")
	l.Submit("left")
	if l.Submit("left") {
		t.Error("third line should be dropped on a full queue")
	}
}

func TestMarkersStamped(t *testing.T) {
	var got []markers.Marker
	d := markers.NewDispatcher(16, nil, markers.FuncSink(func(m markers.Marker) error {
		got = append(got, m)
		return nil
	}))

	l, _ := newLauncher(t, Options{Markers: d})
	l.Tick(0)
	l.Tick(0)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	l.Cancel()
	d.Close()

	names := make([]markers.Name, len(got))
	for i, m := range got {
		names[i] = m.Name
	}
	want := []markers.Name{markers.LauncherStart, markers.Spawn, markers.ModuleStart, markers.ModuleCancel}
	if len(names) != len(want) {
		t.Fatalf("markers = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("marker %d = %s, want %s", i, names[i], want[i])
		}
	}
	if got[0].Code != markers.LauncherStartCode {
		t.Errorf("launcher start code = %d", got[0].Code)
	}
	if got[1].Tick != 2 || got[1].Session != l.Session() {
		t.Errorf("spawn marker = %+v", got[1])
	}
}

func TestRender(t *testing.T) {
	screen := core.NewScreen(40, 10)
	l := New(Options{Logger: testLogger(&bytes.Buffer{})})
	l.Render(screen)
	if !strings.Contains(screen.String(), "No module loaded") {
		t.Error("placeholder expected")
	}

	l, _ = newLauncher(t, Options{})
	screen.Clear()
	l.Render(screen)
	if screen.Row(0)[:8] != "recorder" {
		t.Errorf("row 0 = %q", screen.Row(0))
	}
}
