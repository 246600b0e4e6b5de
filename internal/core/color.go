package core

// Color identifies a palette entry for a rendered cell. The platform maps
// palette entries to terminal colors; modules only deal in indices.
type Color uint8

// Palette entries. The block colors follow the cell tags of the play field
// (1..7 tetrominoes, 8 undo highlight), so a cell tag converts directly.
const (
	ColorDefault Color = iota
	ColorBlock1
	ColorBlock2
	ColorBlock3
	ColorBlock4
	ColorBlock5
	ColorBlock6
	ColorBlock7
	ColorUndo
	ColorEmpty
	ColorOverlay
	ColorRotationZone
	ColorRotationZoneActive
	ColorCursor
	ColorText
	ColorDim
)

// BlockColor returns the palette entry for a play field cell tag.
// Unknown tags render as empty cells.
func BlockColor(tag int) Color {
	if tag < 1 || tag > int(ColorUndo) {
		return ColorEmpty
	}
	return Color(tag)
}

// Hex returns the RGB hex code for a palette entry.
func (c Color) Hex() string {
	switch c {
	case ColorBlock1:
		return "#3573E2"
	case ColorBlock2:
		return "#E24107"
	case ColorBlock3:
		return "#68B108"
	case ColorBlock4:
		return "#CE352D"
	case ColorBlock5:
		return "#9A28E1"
	case ColorBlock6:
		return "#B4B4B4"
	case ColorBlock7:
		return "#E3761B"
	case ColorUndo:
		return "#800000"
	case ColorEmpty:
		return "#1A1A1A"
	case ColorOverlay:
		return "#404040"
	case ColorRotationZone:
		return "#262626"
	case ColorRotationZoneActive:
		return "#4D4D4D"
	case ColorCursor:
		return "#FFFFFF"
	case ColorDim:
		return "#808080"
	default:
		return ""
	}
}
