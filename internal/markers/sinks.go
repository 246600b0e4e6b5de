package markers

import (
	"time"

	"github.com/charmbracelet/log"
)

// LogSink writes markers to a logger.
type LogSink struct {
	Logger *log.Logger
}

// Write logs the marker at info level.
func (s LogSink) Write(m Marker) error {
	s.Logger.Info("marker", "name", string(m.Name), "code", m.Code, "tick", m.Tick)
	return nil
}

// Recorder persists markers, e.g. the session store.
type Recorder interface {
	RecordMarker(session, name string, code int, tick uint64, at time.Time) error
}

// StoreSink forwards markers to a Recorder.
type StoreSink struct {
	Store Recorder
}

// Write records the marker.
func (s StoreSink) Write(m Marker) error {
	return s.Store.RecordMarker(m.Session, string(m.Name), m.Code, m.Tick, m.Time)
}

// FuncSink adapts a function to Sink.
type FuncSink func(Marker) error

// Write calls f(m).
func (f FuncSink) Write(m Marker) error { return f(m) }
