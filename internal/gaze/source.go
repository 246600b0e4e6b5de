package gaze

import (
	"sync"

	"github.com/vovakirdan/meyendtris/internal/core"
)

// Source yields the most recent position sample. Implementations are safe
// for a producer goroutine writing while the game tick reads.
type Source interface {
	Latest() (core.Point, bool)
}

// Cursor is a Source fed directly by the host, e.g. terminal mouse motion.
type Cursor struct {
	mu    sync.RWMutex
	point core.Point
	has   bool
}

// NewCursor creates a cursor with no position.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Move records a new position.
func (c *Cursor) Move(x, y float64) {
	c.mu.Lock()
	c.point = core.Point{X: x, Y: y}
	c.has = true
	c.mu.Unlock()
}

// Clear forgets the position, e.g. when the pointer leaves the window.
func (c *Cursor) Clear() {
	c.mu.Lock()
	c.has = false
	c.mu.Unlock()
}

// Latest returns the last recorded position.
func (c *Cursor) Latest() (core.Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.point, c.has
}

// Projection maps tracker coordinates onto layout coordinates, axis by
// axis, with clamping to the destination ranges.
type Projection struct {
	SrcX, SrcY core.Range
	DstX, DstY core.Range
}

// Apply projects a point.
func (p Projection) Apply(pt core.Point) core.Point {
	return core.Point{
		X: core.MapRange(pt.X, p.SrcX, p.DstX),
		Y: core.MapRange(pt.Y, p.SrcY, p.DstY),
	}
}
