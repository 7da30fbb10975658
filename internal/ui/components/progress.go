package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// ProgressBar is a labelled horizontal bar. A Marker in (0,1) draws a tick
// at that fraction, such as a passing score, and the bar turns green once
// Percent reaches it.
type ProgressBar struct {
	Label       string
	Percent     float64
	Marker      float64
	ShowPercent bool
	Width       int
}

func (p ProgressBar) View() string {
	var label, suffix string
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %3d%%", int(clamp01(p.Percent)*100)))
	}

	width := max(p.Width-lipgloss.Width(label)-lipgloss.Width(suffix), 4)
	filled := int(float64(width) * clamp01(p.Percent))

	hasMarker := p.Marker > 0 && p.Marker < 1
	cells := []rune(strings.Repeat(" ", width))
	if hasMarker {
		cells[int(float64(width-1)*p.Marker)] = '│'
	}
	fill := theme.Secondary
	if hasMarker && p.Percent >= p.Marker {
		fill = theme.Success
	}

	return label +
		lipgloss.NewStyle().Background(fill).Render(string(cells[:filled])) +
		lipgloss.NewStyle().Background(theme.Border).Render(string(cells[filled:])) +
		suffix
}

// Bar is a plain text bar for places that cannot show backgrounds, such as
// cards rendered inside other styles.
func Bar(percent float64, width int) string {
	width = max(width, 1)
	n := int(clamp01(percent)*float64(width) + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func clamp01(f float64) float64 {
	return max(0, min(f, 1))
}
