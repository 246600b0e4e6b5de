// Package markers delivers named event markers to recording sinks without
// ever blocking the code that fires them.
package markers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Name identifies a marker.
type Name string

// Markers fired by the game module and the launcher.
const (
	Spawn         Name = "spawn"
	LineClear     Name = "line_clear"
	Rotate        Name = "rotate"
	Drop          Name = "drop"
	UndoStart     Name = "undo_start"
	UndoEnd       Name = "undo_end"
	Restart       Name = "restart"
	ModuleStart   Name = "module_start"
	ModuleCancel  Name = "module_cancel"
	LauncherStart Name = "launcher_start"
)

// LauncherStartCode is sent once when the launcher comes up.
const LauncherStartCode = 999

var codes = map[Name]int{
	Spawn:         1,
	LineClear:     2,
	Rotate:        3,
	Drop:          4,
	UndoStart:     5,
	UndoEnd:       6,
	Restart:       7,
	ModuleStart:   10,
	ModuleCancel:  11,
	LauncherStart: LauncherStartCode,
}

// Code returns the numeric code recorded alongside the name, or 0 for
// names outside the fixed set.
func (n Name) Code() int {
	return codes[n]
}

// Marker is one fired event.
type Marker struct {
	Name    Name
	Code    int
	Tick    uint64
	Time    time.Time
	Session string
}

// Emitter is implemented by whatever stamps and forwards markers on behalf
// of a module.
type Emitter interface {
	Emit(name Name)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Name)

// Emit calls f(name).
func (f EmitterFunc) Emit(name Name) { f(name) }

// Discard drops every marker.
var Discard Emitter = EmitterFunc(func(Name) {})

// Sink receives markers on the dispatcher goroutine.
type Sink interface {
	Write(m Marker) error
}

// Dispatcher fans markers out to its sinks from a single goroutine. Fire
// never blocks; when the buffer is full the marker is dropped and counted.
type Dispatcher struct {
	ch      chan Marker
	sinks   []Sink
	logger  *log.Logger
	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

// DefaultBuffer is the dispatcher queue length.
const DefaultBuffer = 256

// NewDispatcher starts a dispatcher delivering to sinks.
func NewDispatcher(buffer int, logger *log.Logger, sinks ...Sink) *Dispatcher {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		ch:     make(chan Marker, buffer),
		sinks:  sinks,
		logger: logger,
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for m := range d.ch {
		for _, s := range d.sinks {
			if err := s.Write(m); err != nil {
				d.logger.Warn("marker sink failed", "marker", m.Name, "err", err)
			}
		}
	}
}

// Fire queues a marker. Missing Code and Time are filled in.
func (d *Dispatcher) Fire(m Marker) {
	if m.Code == 0 {
		m.Code = m.Name.Code()
	}
	if m.Time.IsZero() {
		m.Time = time.Now()
	}

	select {
	case d.ch <- m:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns how many markers were lost to a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close delivers everything already queued and stops the dispatcher.
// Fire must not be called after Close.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.ch)
	})
	<-d.done
}
