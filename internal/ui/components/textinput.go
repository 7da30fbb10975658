package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

type answerMark int

const (
	unmarked answerMark = iota
	markedRight
	markedWrong
)

// TextInput is a focused bubbles textinput for typed answers. In numeric
// mode only digits and the characters of fractions, decimals and negative
// numbers are accepted.
type TextInput struct {
	Model       textinput.Model
	NumericOnly bool
	mark        answerMark
}

func NewTextInput(placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return TextInput{Model: ti, NumericOnly: numericOnly}
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && t.NumericOnly && !numericKey(key.String()) {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// numericKey reports whether a key may reach the input in numeric mode.
// Named keys such as "backspace" or "left" always pass.
func numericKey(k string) bool {
	if k == "space" {
		return true
	}
	if len(k) != 1 {
		return true
	}
	c := k[0]
	return c >= '0' && c <= '9' || strings.IndexByte("/-.", c) >= 0
}

func (t TextInput) View() string {
	switch t.mark {
	case markedRight:
		return t.Model.View() + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	case markedWrong:
		return t.Model.View() + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	default:
		return t.Model.View()
	}
}

// Value returns the trimmed input.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Submit shows a check or a cross after the input.
func (t *TextInput) Submit(correct bool) {
	t.mark = markedWrong
	if correct {
		t.mark = markedRight
	}
}

// Reset clears the input for another attempt.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.mark = unmarked
}
