package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// MenuItem is one selectable row. Tag is drawn after the label in
// TagStyle, e.g. a plan category.
type MenuItem struct {
	Label    string
	Tag      string
	TagStyle lipgloss.Style
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list navigated with the arrow keys, j/k, or the digit
// shown next to each enabled item. Movement wraps and skips disabled rows.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move selects the next enabled item in direction dir (+1 or -1).
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k", "shift+tab":
		m.move(-1)
	case "down", "j", "tab":
		m.move(1)
	case "enter", "space":
		return m, m.activate()
	default:
		if d, err := strconv.Atoi(s); err == nil && d >= 1 && d <= 9 {
			if i, ok := m.nthEnabled(d); ok {
				m.Selected = i
				return m, m.activate()
			}
		}
	}
	return m, nil
}

func (m Menu) activate() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	it := m.Items[m.Selected]
	if it.Disabled || it.Action == nil {
		return nil
	}
	return it.Action()
}

// nthEnabled returns the index of the n-th (1-based) enabled item.
func (m Menu) nthEnabled(n int) (int, bool) {
	for i, it := range m.Items {
		if it.Disabled {
			continue
		}
		if n--; n == 0 {
			return i, true
		}
	}
	return 0, false
}

func (m Menu) View() string {
	var (
		b        strings.Builder
		dim      = lipgloss.NewStyle().Foreground(theme.TextDim)
		normal   = lipgloss.NewStyle().Foreground(theme.Text)
		selected = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	)
	num := 0
	for i, it := range m.Items {
		var line string
		switch {
		case it.Disabled:
			line = dim.Render("     " + it.Label)
		default:
			num++
			prefix := "   "
			if num <= 9 {
				prefix = " " + strconv.Itoa(num) + " "
			}
			if i == m.Selected {
				line = selected.Render("▸" + prefix + it.Label)
			} else {
				line = normal.Render(" " + prefix + it.Label)
			}
		}
		if it.Tag != "" {
			line += "  " + it.TagStyle.Render(it.Tag)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
