// Package layout draws the frame shared by every screen: a header bar, the
// screen body and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	// Below this height screens drop decorative rows.
	CompactHeightThreshold = 30
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks for a bigger window, centered in the space that
// is available.
func RenderMinSizeMessage(width, height int) string {
	body := lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf(
		"This window is a little small.\n\nMake it at least %d × %d\n(it is %d × %d now)",
		MinWidth, MinHeight, width, height,
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader shows the app name on the left, title centered and the
// student's name on the right when set.
func RenderHeader(title, student string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Homeschool")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	var right string
	if student != "" {
		right = lipgloss.NewStyle().Foreground(theme.Highlight).Render("● " + student + " ")
	}
	return bar(width).Render(spread(width-4, left, center, right))
}

// spread lays out three segments across inner columns, keeping center as
// close to the middle as the sides allow.
func spread(inner int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((inner-cw)/2-lw, 1)
	gapR := max(inner-lw-gapL-cw-rw, 1)
	return left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

// RenderFooter lists key hints. Hints that do not fit are dropped from the
// end.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	const sep = "   "
	content := " "
	for _, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		next := content + sep + part
		if content == " " {
			next = content + " " + part
		}
		if lipgloss.Width(next) > width-4 {
			break
		}
		content = next
	}
	return bar(width).Render(content)
}

// RenderFrame stacks header, body and footer, sizing the body to fill the
// remaining height.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}
