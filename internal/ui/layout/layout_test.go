package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Home · math", "Ada", 100)
	assert.Contains(t, h, "Homeschool")
	assert.Contains(t, h, "Home · math")
	assert.Contains(t, h, "● Ada")
	assert.Equal(t, HeaderHeight, lipgloss.Height(h))

	assert.NotContains(t, RenderHeader("Home", "", 100), "●")
}

func TestRenderFooter_DropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Check answer"},
		{Key: "?", Description: "Hint"},
		{Key: "Esc", Description: "Leave lesson"},
	}
	wide := RenderFooter(hints, 120)
	for _, h := range hints {
		assert.Contains(t, wide, h.Description)
	}

	narrow := RenderFooter(hints, 30)
	assert.Contains(t, narrow, "Check answer")
	assert.NotContains(t, narrow, "Leave lesson")
	assert.Equal(t, FooterHeight, lipgloss.Height(narrow))
}

func TestRenderFrame_FillsHeight(t *testing.T) {
	header := RenderHeader("Progress", "Ada", 80)
	footer := RenderFooter([]KeyHint{{Key: "Esc", Description: "Back"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)
	assert.Equal(t, 24, lipgloss.Height(frame))
	assert.Equal(t, 1, strings.Count(frame, "body"))
}

func TestSizeChecks(t *testing.T) {
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(120, 23))
	assert.False(t, IsTooSmall(80, 24))
	assert.True(t, IsCompactHeight(29))
	assert.False(t, IsCompactHeight(30))
	assert.Contains(t, RenderMinSizeMessage(60, 20), "at least 80 × 24")
}
