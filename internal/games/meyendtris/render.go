package meyendtris

import (
	"fmt"
	"math"

	"github.com/vovakirdan/meyendtris/internal/core"
	"github.com/vovakirdan/meyendtris/internal/gaze"
)

// Frame is what a renderer needs for one tick.
type Frame struct {
	Cells          [][]int     // Landed cells with the falling piece composited on top
	Cursor         *core.Point // Position sample, nil when absent or hidden
	Column         int         // Selected column, -1 for none
	RotationRows   int
	RotationActive bool
	Phase          Phase
}

// Frame composites the falling piece into a copy of the field.
func (e *Engine) Frame() Frame {
	cells := e.field.Snapshot()
	for r, line := range e.piece.Shape {
		for c, v := range line {
			if v == 0 {
				continue
			}
			fr, fc := e.piece.Row+r, e.piece.Col+c
			if fr >= 0 && fr < len(cells) && fc >= 0 && fc < len(cells[fr]) {
				cells[fr][fc] = v
			}
		}
	}

	f := Frame{
		Cells:          cells,
		Column:         e.selectedCol,
		RotationRows:   e.cfg.Field.RotationRows,
		RotationActive: e.selector.InRotationZone(),
		Phase:          e.phase,
	}
	if e.showGaze && e.cursor != nil {
		pt := *e.cursor
		f.Cursor = &pt
	}
	return f
}

const (
	cellWidth = 2  // Characters per field cell
	hudWidth  = 22 // Characters right of the field
)

// FitLayout centres a rows x cols field plus HUD on a screen of the given
// size. Returns false when the screen is too small.
func FitLayout(screenW, screenH, rows, cols, rotationRows int, margin float64) (gaze.Layout, bool) {
	fieldW := cols * cellWidth
	totalW := fieldW + 2 + hudWidth
	totalH := rows + 2
	if screenW < totalW || screenH < totalH {
		return gaze.Layout{}, false
	}

	return gaze.Layout{
		OriginX:      float64((screenW-totalW)/2 + 1),
		OriginY:      float64((screenH-totalH)/2 + 1),
		CellW:        cellWidth,
		CellH:        1,
		Cols:         cols,
		Rows:         rows,
		Margin:       margin,
		RotationRows: rotationRows,
	}, true
}

// DrawFrame renders a frame at the layout origin with a border.
func DrawFrame(dst *core.Screen, f Frame, l gaze.Layout) {
	ox, oy := int(l.OriginX), int(l.OriginY)
	dst.DrawBox(core.NewRect(ox-1, oy-1, l.Cols*cellWidth+2, l.Rows+2), core.ColorDim)

	zone := core.ColorRotationZone
	if f.RotationActive {
		zone = core.ColorRotationZoneActive
	}

	for r, line := range f.Cells {
		for c, tag := range line {
			cell := core.Cell{Rune: ' ', Bg: core.ColorEmpty}
			switch {
			case tag > 0:
				cell = core.Cell{Rune: '█', Fg: core.BlockColor(tag), Bg: core.ColorEmpty}
			case c == f.Column:
				cell.Bg = core.ColorOverlay
			case r < f.RotationRows:
				cell.Bg = zone
			}
			x := ox + c*cellWidth
			for i := 0; i < cellWidth; i++ {
				dst.SetCell(x+i, oy+r, cell)
			}
		}
	}

	if f.Cursor != nil {
		cx, cy := int(math.Floor(f.Cursor.X)), int(math.Floor(f.Cursor.Y))
		under := dst.GetCell(cx, cy)
		dst.SetCell(cx, cy, core.Cell{Rune: '●', Fg: core.ColorCursor, Bg: under.Bg})
	}
}

// DrawHUD writes the session readout right of the field.
func DrawHUD(dst *core.Screen, l gaze.Layout, st core.ModuleState) {
	x := int(l.OriginX) + l.Cols*cellWidth + 3
	y := int(l.OriginY)

	lines := []struct {
		text  string
		color core.Color
	}{
		{"MEYENDTRIS", core.ColorText},
		{"", core.ColorDim},
		{fmt.Sprintf("signal  %.2f", st.Signal), core.ColorText},
		{fmt.Sprintf("step    %.2fs", st.MoveInterval), core.ColorText},
		{fmt.Sprintf("input   %s", st.Input), core.ColorDim},
		{"", core.ColorDim},
		{fmt.Sprintf("pieces  %d", st.Pieces), core.ColorText},
		{fmt.Sprintf("lines   %d", st.Lines), core.ColorText},
		{fmt.Sprintf("undos   %d", st.Undos), core.ColorText},
		{fmt.Sprintf("restart %d", st.Restarts), core.ColorText},
	}
	for i, ln := range lines {
		dst.DrawText(x, y+i, ln.text, ln.color)
	}
	if st.Phase == PhaseUndoHighlighted.String() {
		dst.DrawText(x, y+len(lines)+1, "UNDO", core.ColorUndo)
	}
}
