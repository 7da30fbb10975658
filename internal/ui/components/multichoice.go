package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Keys 1-9 pick an option
// directly; arrows move the cursor and enter picks it. Once picked the
// component is locked until Reset.
type MultiChoice struct {
	Options  []string
	Selected int
	Chosen   int
	Correct  int
	locked   bool
}

// NewMultiChoice creates a selector over options with nothing chosen.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options, Chosen: -1, Correct: -1}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.locked {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.choose(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.Selected = i
				m.choose(i)
			}
		}
	}
	return m, nil
}

func (m *MultiChoice) choose(i int) {
	if i < 0 || i >= len(m.Options) {
		return
	}
	m.Chosen = i
	m.locked = true
}

// HasChosen reports whether an option was picked since the last Reset.
func (m MultiChoice) HasChosen() bool {
	return m.Chosen >= 0
}

// Value returns the chosen option text.
func (m MultiChoice) Value() string {
	if m.Chosen < 0 {
		return ""
	}
	return m.Options[m.Chosen]
}

// Reveal marks the option at index correct for the graded view.
func (m *MultiChoice) Reveal(correct int) {
	m.Correct = correct
}

// Reset unlocks the selector for another attempt, keeping the cursor.
func (m *MultiChoice) Reset() {
	m.Chosen = -1
	m.Correct = -1
	m.locked = false
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)

		var style lipgloss.Style
		switch {
		case m.locked && i == m.Correct:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.locked && i == m.Chosen && m.Correct >= 0:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.locked && i == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
		case m.locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
