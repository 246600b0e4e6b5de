package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/meyendtris/internal/core"
)

type colorPair struct {
	fg, bg core.Color
}

// styleCache holds one lipgloss style per fg/bg combination. SSH sessions
// render concurrently.
var (
	styleMu    sync.Mutex
	styleCache = map[colorPair]lipgloss.Style{}
)

func styleFor(fg, bg core.Color) lipgloss.Style {
	styleMu.Lock()
	defer styleMu.Unlock()

	key := colorPair{fg, bg}
	if s, ok := styleCache[key]; ok {
		return s
	}

	s := lipgloss.NewStyle()
	if hex := fg.Hex(); hex != "" {
		s = s.Foreground(lipgloss.Color(hex))
	}
	if hex := bg.Hex(); hex != "" {
		s = s.Background(lipgloss.Color(hex))
	}
	styleCache[key] = s
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Fg != start.Fg || cell.Bg != start.Bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(styleFor(start.Fg, start.Bg).Render(run.String()))
		}
	}
	return sb.String()
}
