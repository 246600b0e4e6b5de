package gaze

import "github.com/vovakirdan/meyendtris/internal/core"

// Thresholds are dwell times in frames. An action fires once its counter
// exceeds the threshold.
type Thresholds struct {
	Column   float64
	Drop     float64
	Rotation float64
}

// Selector converts one position sample per frame into rotate, select
// column and drop commands.
//
// Dwelling in the rotation zone fires Rotate every time the rotation
// counter passes its threshold; column tracking is suspended meanwhile.
// Outside the zone, holding the same column fires SelectColumn once per
// dwell episode and Drop when the counter passes the drop threshold, after
// which the counter starts over. Any change of candidate, including
// leaving every column, ends the episode.
type Selector struct {
	layout     Layout
	thresholds Thresholds

	rotationCount int
	columnCount   int
	candidate     int
	selected      bool
	inRotation    bool
}

// NewSelector creates a selector for the given field layout.
func NewSelector(layout Layout, th Thresholds) *Selector {
	return &Selector{
		layout:     layout,
		thresholds: th,
		candidate:  -1,
	}
}

// SetLayout replaces the field layout, e.g. after a terminal resize.
func (s *Selector) SetLayout(l Layout) {
	s.layout = l
}

// Layout returns the current field layout.
func (s *Selector) Layout() Layout {
	return s.layout
}

// SetThresholds replaces the dwell thresholds. Counters are kept, so a
// threshold lowered below the current count fires on the next frame.
func (s *Selector) SetThresholds(th Thresholds) {
	s.thresholds = th
}

// Thresholds returns the active dwell thresholds.
func (s *Selector) Thresholds() Thresholds {
	return s.thresholds
}

// Reset clears both dwell counters. Called on every spawn.
func (s *Selector) Reset() {
	s.rotationCount = 0
	s.columnCount = 0
	s.selected = false
}

// Step advances the state machine by one frame. A nil sample means no
// position is available and counts as looking at nothing.
func (s *Selector) Step(sample *core.Point) []core.Command {
	var out []core.Command

	if sample != nil && s.layout.InRotationZone(sample.Y) {
		s.inRotation = true
		s.columnCount = 0
		s.selected = false
		s.candidate = -1

		s.rotationCount++
		if float64(s.rotationCount) > s.thresholds.Rotation {
			out = append(out, core.Move(core.CmdRotate))
			s.rotationCount = 0
		}
		return out
	}

	s.inRotation = false
	s.rotationCount = 0

	candidate := -1
	if sample != nil {
		candidate = s.layout.Column(sample.X)
	}

	if candidate >= 0 && candidate == s.candidate {
		s.columnCount++
		if !s.selected && float64(s.columnCount) > s.thresholds.Column {
			out = append(out, core.SelectColumn(candidate))
			s.selected = true
		}
		if float64(s.columnCount) > s.thresholds.Drop {
			out = append(out, core.Move(core.CmdDrop))
			s.columnCount = 0
			s.selected = false
		}
	} else {
		s.columnCount = 0
		s.selected = false
	}
	s.candidate = candidate

	return out
}

// InRotationZone reports whether the last sample was in the rotation zone.
func (s *Selector) InRotationZone() bool {
	return s.inRotation
}

// Candidate returns the column under the last sample, or -1.
func (s *Selector) Candidate() int {
	return s.candidate
}

// ColumnDwell returns the current column dwell count in frames.
func (s *Selector) ColumnDwell() int {
	return s.columnCount
}

// RotationDwell returns the current rotation dwell count in frames.
func (s *Selector) RotationDwell() int {
	return s.rotationCount
}
