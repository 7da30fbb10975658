package progress

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/ui/components"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// learningFloor separates concepts that are coming along from those that
// need more practice.
const learningFloor = 0.4

// State is how far along a concept is.
type State int

const (
	StateNeedsPractice State = iota
	StateLearning
	StateMastered
)

// StateOf classifies a progress node.
func StateOf(n store.ProgressNode) State {
	switch {
	case n.MasteryLevel >= session.DefaultMasteryThreshold:
		return StateMastered
	case n.MasteryLevel >= learningFloor || n.TotalAttempts == 0:
		return StateLearning
	default:
		return StateNeedsPractice
	}
}

// Icon returns the row marker for the state.
func (s State) Icon() string {
	switch s {
	case StateMastered:
		return "★"
	case StateLearning:
		return "◐"
	default:
		return "○"
	}
}

// Label returns a short description of the state.
func (s State) Label() string {
	switch s {
	case StateMastered:
		return "Mastered"
	case StateLearning:
		return "Learning"
	default:
		return "Practice"
	}
}

type rowKind int

const (
	rowSubjectHeader rowKind = iota
	rowConcept
)

type row struct {
	kind    rowKind
	subject string
	node    *store.ProgressNode
}

type progressLoadedMsg struct {
	Nodes []store.ProgressNode
	Err   error
}

// ProgressScreen shows concept mastery grouped by subject.
type ProgressScreen struct {
	repo         store.ProgressRepo
	studentID    string
	subject      string
	rows         []row
	cursor       int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)

// New creates a ProgressScreen. An empty subject lists every subject.
func New(repo store.ProgressRepo, studentID, subject string) *ProgressScreen {
	return &ProgressScreen{repo: repo, studentID: studentID, subject: subject}
}

func (s *ProgressScreen) Init() tea.Cmd {
	repo, id, subject := s.repo, s.studentID, s.subject
	return func() tea.Msg {
		nodes, err := repo.StudentProgress(context.Background(), id, subject)
		return progressLoadedMsg{Nodes: nodes, Err: err}
	}
}

// buildRows groups nodes by subject, keeping the repo's order within a
// subject.
func buildRows(nodes []store.ProgressNode) []row {
	bySubject := make(map[string][]int)
	var subjects []string
	for i, n := range nodes {
		if _, ok := bySubject[n.Subject]; !ok {
			subjects = append(subjects, n.Subject)
		}
		bySubject[n.Subject] = append(bySubject[n.Subject], i)
	}
	sort.Strings(subjects)

	var rows []row
	for _, subj := range subjects {
		rows = append(rows, row{kind: rowSubjectHeader, subject: subj})
		for _, i := range bySubject[subj] {
			rows = append(rows, row{kind: rowConcept, subject: subj, node: &nodes[i]})
		}
	}
	return rows
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.rows = buildRows(msg.Nodes)
		s.cursor = 0
		s.moveCursor(1)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextSubject()
		case "esc", "q":
			return s, router.Pop()
		}
	}
	return s, nil
}

func (s *ProgressScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return center.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\n  Loading progress...")
	case len(s.rows) == 0:
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nothing practiced yet. Finish a lesson to see progress here!")
	}

	// Keep two lines for the detail of the selected concept.
	listHeight := max(height-3, 1)
	s.adjustScroll(listHeight)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < listHeight; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowSubjectHeader:
			lines = append(lines, renderSubjectHeader(r.subject, width))
		case rowConcept:
			lines = append(lines, renderConceptRow(*r.node, i == s.cursor, width))
		}
	}

	lines = append(lines, "", s.renderDetail(width))
	return strings.Join(lines, "\n")
}

func (s *ProgressScreen) Title() string {
	return "Progress"
}

// KeyHints returns the key binding hints for the footer.
func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Subject"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping subject headers.
func (s *ProgressScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowConcept {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextSubject jumps to the first concept of the next subject, wrapping
// around to the first subject.
func (s *ProgressScreen) nextSubject() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].subject
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowConcept && s.rows[i].subject != current {
			s.cursor = i
			return
		}
	}
	s.cursor = 0
	s.moveCursor(1)
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *ProgressScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Also show the subject header above the cursor if possible
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowSubjectHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *ProgressScreen) renderDetail(width int) string {
	if s.cursor >= len(s.rows) || s.rows[s.cursor].node == nil {
		return ""
	}
	n := s.rows[s.cursor].node
	last := "never"
	if !n.LastPracticed.IsZero() {
		last = n.LastPracticed.Local().Format("Jan 02")
	}
	text := fmt.Sprintf("%d/%d correct   difficulty %.1f   last practiced %s",
		n.TotalCorrect, n.TotalAttempts, n.DifficultyLevel, last)
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(text)
}

// renderSubjectHeader renders a subject section header.
func renderSubjectHeader(subject string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		PaddingLeft(2).
		Render(strings.ToUpper(subject))
}

// renderConceptRow renders one concept with its mastery bar.
func renderConceptRow(n store.ProgressNode, selected bool, width int) string {
	state := StateOf(n)

	barWidth := 20
	labelWidth := 10
	nameWidth := width - 4 - 3 - barWidth - 6 - labelWidth - 4
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := n.Concept
	if len([]rune(name)) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	var nameStyle, labelStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case state == StateMastered:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Success)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Success)
	case state == StateLearning:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s %3.0f%%  %s",
		cursor,
		state.Icon(),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		components.Bar(n.MasteryLevel, barWidth),
		n.MasteryLevel*100,
		labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, state.Label())),
	)
}
