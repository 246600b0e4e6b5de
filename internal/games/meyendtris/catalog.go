package meyendtris

// Shape is a tetromino matrix of cell tags; 0 cells are transparent.
// Every row has the same length.
type Shape [][]int

// UndoTag marks field cells highlighted during the undo animation.
const UndoTag = 8

var catalog = []Shape{
	{
		{0, 1, 0},
		{1, 1, 1},
	},
	{
		{2, 0},
		{2, 0},
		{2, 2},
	},
	{
		{0, 3},
		{0, 3},
		{3, 3},
	},
	{
		{4, 4},
		{4, 4},
	},
	{
		{5, 5, 0},
		{0, 5, 5},
	},
	{
		{0, 6, 6},
		{6, 6, 0},
	},
	{
		{7},
		{7},
		{7},
		{7},
	},
}

// Catalog returns copies of the seven tetrominoes.
func Catalog() []Shape {
	out := make([]Shape, len(catalog))
	for i, s := range catalog {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for r, row := range s {
		out[r] = append([]int(nil), row...)
	}
	return out
}

// Height returns the number of rows.
func (s Shape) Height() int {
	return len(s)
}

// Width returns the number of columns.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Rotate returns the shape turned 90 degrees clockwise: rows reversed,
// then transposed. The result keeps the top-left anchor of the bounding
// box, so pieces shift visibly when their width and height differ.
func (s Shape) Rotate() Shape {
	h, w := s.Height(), s.Width()
	out := make(Shape, w)
	for c := 0; c < w; c++ {
		out[c] = make([]int, h)
		for r := 0; r < h; r++ {
			out[c][r] = s[h-1-r][c]
		}
	}
	return out
}

// Equal reports whether two shapes have the same cells.
func (s Shape) Equal(o Shape) bool {
	if s.Height() != o.Height() || s.Width() != o.Width() {
		return false
	}
	for r := range s {
		for c := range s[r] {
			if s[r][c] != o[r][c] {
				return false
			}
		}
	}
	return true
}

// Piece is the falling tetromino: a shape anchored at its top-left cell.
type Piece struct {
	Shape Shape
	Row   int
	Col   int
}
