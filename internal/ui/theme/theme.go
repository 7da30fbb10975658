package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette. Calm classroom colors with one warm highlight.
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Highlight = lipgloss.Color("#FACC15") // Chalk yellow
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// CategoryColor colors plan slots on the home screen.
func CategoryColor(category string) lipgloss.Style {
	switch category {
	case "review":
		return lipgloss.NewStyle().Foreground(Secondary)
	case "booster":
		return lipgloss.NewStyle().Foreground(Accent)
	default:
		return lipgloss.NewStyle().Foreground(Highlight)
	}
}
