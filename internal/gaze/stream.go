package gaze

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/meyendtris/internal/core"
)

// ErrNoStream is returned when no position stream resolves in time.
var ErrNoStream = errors.New("gaze: no position stream")

// DefaultResolveTimeout bounds the one-shot wait for a stream at startup.
const DefaultResolveTimeout = time.Second

// Stream reads "x y" position lines from a tracker bridge over TCP and
// keeps only the latest sample.
type Stream struct {
	conn       net.Conn
	logger     *log.Logger
	projection *Projection

	mu     sync.RWMutex
	latest core.Point
	has    bool

	done chan struct{}
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithProjection maps incoming samples into layout coordinates.
func WithProjection(p Projection) StreamOption {
	return func(s *Stream) {
		s.projection = &p
	}
}

// WithLogger sets the stream logger.
func WithLogger(l *log.Logger) StreamOption {
	return func(s *Stream) {
		s.logger = l
	}
}

// Resolve dials the tracker bridge once, waiting at most timeout. Any
// failure is reported as ErrNoStream so the caller can fall back to
// keyboard control for the rest of the session.
func Resolve(ctx context.Context, addr string, timeout time.Duration, opts ...StreamOption) (*Stream, error) {
	if addr == "" {
		return nil, ErrNoStream
	}
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoStream, addr, err)
	}

	s := newStream(conn, opts...)
	s.logger.Info("position stream resolved", "addr", addr)
	return s, nil
}

func newStream(conn net.Conn, opts ...StreamOption) *Stream {
	s := &Stream{
		conn:   conn,
		logger: log.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	defer close(s.done)

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pt, err := ParseSample(line)
		if err != nil {
			s.logger.Debug("skipping sample", "line", line, "err", err)
			continue
		}
		if s.projection != nil {
			pt = s.projection.Apply(pt)
		}
		s.mu.Lock()
		s.latest = pt
		s.has = true
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.has = false
	s.mu.Unlock()

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("position stream ended", "err", err)
	}
}

// Latest returns the newest sample. After the bridge disconnects no sample
// is available; the session keeps its input mode.
func (s *Stream) Latest() (core.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.has
}

// Close disconnects from the bridge and waits for the reader to exit.
func (s *Stream) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}

// ParseSample parses a position line: two numbers separated by
// whitespace or a comma. Extra trailing fields are ignored.
func ParseSample(line string) (core.Point, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	if len(fields) < 2 {
		return core.Point{}, fmt.Errorf("gaze: want two coordinates, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Point{}, fmt.Errorf("gaze: bad x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Point{}, fmt.Errorf("gaze: bad y: %w", err)
	}
	return core.Point{X: x, Y: y}, nil
}
