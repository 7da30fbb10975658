package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// ContentWidth returns the inner width shared by the cards on a screen so
// they line up.
func ContentWidth(frameWidth int) int {
	// border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Frame wraps content in a rounded border, centered within the given size.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card wraps content in a bordered card at content width cw. A nil border
// uses the theme border color.
func Card(content string, cw int, border color.Color) string {
	if border == nil {
		border = theme.Border
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// Button renders a one-line action button.
func Button(label string, selected bool, width int) string {
	if selected {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Highlight).
			Padding(0, 1).
			Render("▸ " + label)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Padding(0, 1).
		Render(label)
}
