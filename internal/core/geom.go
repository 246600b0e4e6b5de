// Package core provides fundamental types and utilities shared by the launcher,
// the stimulus modules and the terminal platform. It has no external
// dependencies so module logic stays pure and testable.
package core

import (
	"fmt"
	"math"
)

// Rect represents an axis-aligned rectangle in cell or pixel units.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Point is a 2D sample in pixel space, e.g. a gaze or cursor position.
type Point struct {
	X, Y float64
}

// Range is a closed interval given as [From, To]. From may be greater
// than To, which describes a decreasing mapping (e.g. [fastest, slowest]).
type Range struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

// UnmarshalYAML accepts either a two-element sequence [from, to] or a
// mapping with from/to keys.
func (r *Range) UnmarshalYAML(unmarshal func(any) error) error {
	var pair []float64
	if err := unmarshal(&pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("range: want 2 values, got %d", len(pair))
		}
		r.From, r.To = pair[0], pair[1]
		return nil
	}

	type plain Range
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}

// R is shorthand for building a Range.
func R(from, to float64) Range {
	return Range{From: from, To: to}
}

// Span returns To - From.
func (r Range) Span() float64 {
	return r.To - r.From
}

// Min returns the smaller end of the range.
func (r Range) Min() float64 {
	return math.Min(r.From, r.To)
}

// Max returns the larger end of the range.
func (r Range) Max() float64 {
	return math.Max(r.From, r.To)
}

// MapRange linearly remaps value from src onto dst and clamps the result
// to dst. Negative infinity maps to dst.From and positive infinity to
// dst.To; NaN and a zero-width source range yield dst.From.
func MapRange(value float64, src, dst Range) float64 {
	span := src.Span()
	if span == 0 || math.IsNaN(value) || math.IsInf(value, -1) {
		return dst.From
	}
	if math.IsInf(value, 1) {
		return dst.To
	}

	scaled := (value - src.From) / span
	return ClampF(dst.From+scaled*dst.Span(), dst.Min(), dst.Max())
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
