// Package screen defines the contract between TUI pages and the router.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/kevinraymond/homeschool/internal/ui/layout"
)

// Screen is one page of the practice TUI. View draws only the body; the app
// adds the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer reloads data when the screen is uncovered, e.g. home after a
// lesson ends.
type Resumer interface {
	Resume() tea.Cmd
}
