package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/diagnosis"
	"github.com/kevinraymond/homeschool/internal/router"
	"github.com/kevinraymond/homeschool/internal/screen"
	"github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/ui/components"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// SummaryScreen displays the result of a finished lesson.
type SummaryScreen struct {
	summary *session.Summary
	outcome *session.Outcome
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. outcome may be nil when nothing was
// recorded.
func New(summary *session.Summary, outcome *session.Outcome) *SummaryScreen {
	return &SummaryScreen{summary: summary, outcome: outcome}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Lesson Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.PopToRoot()
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	score := sum.Score
	if s.outcome != nil {
		score = s.outcome.Score
	}

	var b strings.Builder

	title, titleColor := "Lesson complete!", theme.Primary
	switch {
	case score.Total > 0 && score.Passed:
		title, titleColor = "You passed! 🎉", theme.Success
	case score.Total > 0:
		title, titleColor = "Almost there! Let's practice a bit more.", theme.Accent
	}
	b.WriteString(center(width).Foreground(titleColor).Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(center(width).Foreground(theme.Text).Render(sum.LessonTitle))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(width).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Time: %d:%02d", mins, secs)))
	b.WriteString("\n\n")

	r := sum.Result
	statsLine := fmt.Sprintf("Problems: %d        Correct: %d        Accuracy: %.0f%%        Hints: %d",
		r.ProblemsAttempted, r.ProblemsCorrect, r.Accuracy*100, r.AIHintsUsed)
	b.WriteString(center(width).Foreground(theme.Text).Render(statsLine))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))

	if score.Total > 0 {
		b.WriteString(sectionHeader(width, "Quiz", divider))
		bar := components.ProgressBar{
			Label:       fmt.Sprintf("%d/%d", score.Correct, score.Total),
			Percent:     float64(score.Percent) / 100,
			Marker:      score.Threshold,
			ShowPercent: true,
			Width:       barWidth,
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
		b.WriteString(center(width).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Passing score: %.0f%%", score.Threshold*100)))
		b.WriteString("\n\n")
	}

	if len(sum.Types) > 1 {
		b.WriteString(sectionHeader(width, "By problem type", divider))
		for _, tr := range sum.Types {
			if tr.Attempted == 0 {
				continue
			}
			line := fmt.Sprintf("%-16s %d/%d correct   %d hints", tr.Type, tr.Correct, tr.Attempted, tr.HintsUsed)
			b.WriteString(center(width).Foreground(theme.Text).Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.Mistakes) > 0 {
		b.WriteString(sectionHeader(width, "Watch out for", divider))
		for _, m := range sum.Mistakes {
			line := fmt.Sprintf("%s ×%d", mistakeLabel(m.Category), m.Count)
			b.WriteString(center(width).Foreground(theme.Highlight).Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if s.outcome != nil && len(s.outcome.Progress) > 0 {
		b.WriteString(sectionHeader(width, "Mastery", divider))
		for _, p := range s.outcome.Progress {
			bar := components.ProgressBar{
				Label:       fmt.Sprintf("%-20s", p.Concept),
				Percent:     p.MasteryLevel,
				Marker:      session.DefaultMasteryThreshold,
				ShowPercent: true,
				Width:       barWidth,
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if r.StruggleDetected {
		b.WriteString(center(width).
			Foreground(theme.Highlight).
			Render("This one was tricky. It will come back for review soon."))
		b.WriteString("\n")
	}

	return b.String()
}

func mistakeLabel(c diagnosis.Category) string {
	switch c {
	case diagnosis.CategorySpeedRush:
		return "Answered too fast"
	case diagnosis.CategoryCareless:
		return "Small slips"
	case diagnosis.CategoryStuck:
		return "Stuck on a problem"
	default:
		return string(c)
	}
}

func sectionHeader(width int, name, divider string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(name)) +
		"\n" +
		lipgloss.PlaceHorizontal(width, lipgloss.Center, divider) +
		"\n\n"
}

func center(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}
