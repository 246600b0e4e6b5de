package meyendtris

import "fmt"

// Field is the grid of landed cells, row 0 at the top. The falling piece
// is not part of the grid until it lands.
type Field struct {
	rows, cols int
	cells      [][]int
}

// NewField creates an empty field.
func NewField(rows, cols int) *Field {
	f := &Field{rows: rows, cols: cols, cells: make([][]int, rows)}
	for r := range f.cells {
		f.cells[r] = make([]int, cols)
	}
	return f
}

// Rows returns the field height.
func (f *Field) Rows() int { return f.rows }

// Cols returns the field width.
func (f *Field) Cols() int { return f.cols }

// At returns the cell tag at (row, col), or -1 outside the field.
func (f *Field) At(row, col int) int {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return -1
	}
	return f.cells[row][col]
}

// Set writes a cell tag. Out-of-bounds writes are ignored.
func (f *Field) Set(row, col, tag int) {
	if row < 0 || row >= f.rows || col < 0 || col >= f.cols {
		return
	}
	f.cells[row][col] = tag
}

// Collides reports whether any non-zero cell of shape, placed with its
// top-left at (row, col), falls outside the field or on a non-empty cell.
func (f *Field) Collides(row, col int, shape Shape) bool {
	for r, line := range shape {
		for c, v := range line {
			if v == 0 {
				continue
			}
			fr, fc := row+r, col+c
			if fr < 0 || fr >= f.rows || fc < 0 || fc >= f.cols {
				return true
			}
			if f.cells[fr][fc] != 0 {
				return true
			}
		}
	}
	return false
}

// Land writes the non-zero cells of shape into the grid. It panics if a
// cell would leave the field or overwrite a landed block; undo highlight
// cells are overwritten.
func (f *Field) Land(row, col int, shape Shape) {
	for r, line := range shape {
		for c, v := range line {
			if v == 0 {
				continue
			}
			fr, fc := row+r, col+c
			if fr < 0 || fr >= f.rows || fc < 0 || fc >= f.cols {
				panic(fmt.Sprintf("meyendtris: landing outside field at (%d, %d)", fr, fc))
			}
			if tag := f.cells[fr][fc]; tag != 0 && tag != UndoTag {
				panic(fmt.Sprintf("meyendtris: landing on occupied cell (%d, %d)", fr, fc))
			}
		}
	}
	for r, line := range shape {
		for c, v := range line {
			if v != 0 {
				f.cells[row+r][col+c] = v
			}
		}
	}
}

// ClearLines removes every full row, scanning top to bottom. Each cleared
// row shifts everything above it down by one and empties row 0. Returns
// the number of rows cleared.
func (f *Field) ClearLines() int {
	cleared := 0
	for r := 0; r < f.rows; r++ {
		if !f.full(r) {
			continue
		}
		for above := r; above > 0; above-- {
			copy(f.cells[above], f.cells[above-1])
		}
		for c := range f.cells[0] {
			f.cells[0][c] = 0
		}
		cleared++
	}
	return cleared
}

func (f *Field) full(row int) bool {
	for _, v := range f.cells[row] {
		if v == 0 {
			return false
		}
	}
	return true
}

// Reset empties the whole grid.
func (f *Field) Reset() {
	for r := range f.cells {
		for c := range f.cells[r] {
			f.cells[r][c] = 0
		}
	}
}

// HighlightEmpty tags every empty cell with UndoTag.
func (f *Field) HighlightEmpty() {
	f.replace(0, UndoTag)
}

// ClearHighlight turns every UndoTag cell back to empty.
func (f *Field) ClearHighlight() {
	f.replace(UndoTag, 0)
}

func (f *Field) replace(from, to int) {
	for r := range f.cells {
		for c := range f.cells[r] {
			if f.cells[r][c] == from {
				f.cells[r][c] = to
			}
		}
	}
}

// Count returns how many cells hold tag.
func (f *Field) Count(tag int) int {
	n := 0
	for _, line := range f.cells {
		for _, v := range line {
			if v == tag {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a copy of the grid.
func (f *Field) Snapshot() [][]int {
	out := make([][]int, f.rows)
	for r, line := range f.cells {
		out[r] = append([]int(nil), line...)
	}
	return out
}
