package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/store"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// historyLimit is how many sessions are listed.
const historyLimit = 50

type historyLoadedMsg struct {
	Sessions []store.LearningSession
	Err      error
}

// HistoryScreen lists a student's past learning sessions.
type HistoryScreen struct {
	repo      store.SessionRepo
	studentID string
	sessions  []store.LearningSession
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.SessionRepo, studentID string) *HistoryScreen {
	return &HistoryScreen{
		repo:      repo,
		studentID: studentID,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, id := s.repo, s.studentID
	return func() tea.Msg {
		sessions, err := repo.RecentSessions(context.Background(), id, historyLimit)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No lessons yet. Pick one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, ls := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		var line string
		if ls.CompletedAt == nil {
			line = fmt.Sprintf("%s%s  %-28s  in progress",
				prefix, ls.StartedAt.Local().Format("Jan 02, 2006"), clip(ls.Topic, 28))
		} else {
			line = fmt.Sprintf("%s%s  %-28s  %s  %d problems  %.0f%% accuracy",
				prefix, ls.StartedAt.Local().Format("Jan 02, 2006"), clip(ls.Topic, 28),
				formatDuration(ls.TimeSpentSeconds), ls.ProblemsAttempted, ls.Accuracy*100)
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == s.selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case ls.CompletedAt == nil:
			style = style.Foreground(theme.TextDim)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				renderDetails(ls)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderDetails shows the extra columns of an expanded row.
func renderDetails(ls store.LearningSession) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	lines := []string{
		fmt.Sprintf("    Lesson: %s (%s)", ls.LessonID, ls.Subject),
		fmt.Sprintf("    Correct: %d of %d   Hints: %d", ls.ProblemsCorrect, ls.ProblemsAttempted, ls.AIHintsUsed),
	}
	out := dim.Render(strings.Join(lines, "\n"))
	if ls.StruggleDetected {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render("    Needs more practice")
	}
	return out
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
