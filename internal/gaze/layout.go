// Package gaze turns a 2D position stream into dwell-based game commands.
// A Layout describes where the play field sits in the position space, the
// Selector runs the dwell state machine, and Stream/Cursor provide samples.
package gaze

// Layout places the play field in the coordinate space of the position
// samples. For a pixel tracker the units are pixels; for the terminal they
// are character cells.
type Layout struct {
	OriginX, OriginY float64 // top-left corner of the field
	CellW, CellH     float64 // size of one field cell
	Cols, Rows       int
	Margin           float64 // inward margin ignored on both sides of a column
	RotationRows     int     // rows from the field top that form the rotation zone
}

// Column returns the column whose margin-shrunk bounds strictly contain x,
// or -1. Positions on or near a boundary select no column.
func (l Layout) Column(x float64) int {
	for col := 0; col < l.Cols; col++ {
		left := l.OriginX + float64(col)*l.CellW
		if x > left+l.Margin && x < left+l.CellW-l.Margin {
			return col
		}
	}
	return -1
}

// InRotationZone reports whether y lies above the bottom edge of the
// rotation band. Everything above the field top counts as well.
func (l Layout) InRotationZone(y float64) bool {
	return y < l.OriginY+float64(l.RotationRows)*l.CellH
}

// Width returns the field width in layout units.
func (l Layout) Width() float64 {
	return float64(l.Cols) * l.CellW
}

// Height returns the field height in layout units.
func (l Layout) Height() float64 {
	return float64(l.Rows) * l.CellH
}
