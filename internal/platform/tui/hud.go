package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/meyendtris/internal/core"
)

const hudBarWidth = 16

// HUD renders the dwell progress line under the play field.
type HUD struct {
	drop   progress.Model
	rotate progress.Model
	label  lipgloss.Style
}

// NewHUD creates the dwell bars.
func NewHUD() HUD {
	return HUD{
		drop: progress.New(
			progress.WithSolidFill(core.ColorBlock3.Hex()),
			progress.WithWidth(hudBarWidth),
			progress.WithoutPercentage(),
		),
		rotate: progress.New(
			progress.WithSolidFill(core.ColorBlock1.Hex()),
			progress.WithWidth(hudBarWidth),
			progress.WithoutPercentage(),
		),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color(core.ColorDim.Hex())),
	}
}

// View renders one status line for st.
func (h HUD) View(st core.ModuleState) string {
	if !st.Executing {
		return h.label.Render("idle")
	}
	return fmt.Sprintf("%s %s  %s %s  %s",
		h.label.Render("drop"), h.drop.ViewAs(st.DropDwell),
		h.label.Render("rotate"), h.rotate.ViewAs(st.RotateDwell),
		h.label.Render(fmt.Sprintf("bci %.2f  %s", st.Signal, st.Phase)),
	)
}
