package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/tutor"
	"github.com/kevinraymond/homeschool/internal/ui/layout"
	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// renderQuestionView renders the active problem with its hints and, once
// answered, the feedback.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	if s.item == nil {
		return renderLoading(width, "Wrapping up...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(centered(width).
		Foreground(theme.Text).
		Bold(true).
		Render(s.item.Problem.Question))
	b.WriteString("\n\n")

	if s.typed {
		b.WriteString(centered(width).Render("Answer: " + s.input.View()))
		b.WriteString("\n")
		if len(s.item.Problem.Options) > 0 && !s.answered {
			b.WriteString(centered(width).
				Foreground(theme.TextDim).
				Render("Tab to pick from the choices"))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.mc.View()))
		if !s.answered {
			b.WriteString(centered(width).
				Foreground(theme.TextDim).
				Render("Select (1-4) or use arrows + Enter"))
			b.WriteString("\n")
		}
	}

	if hints := s.renderHints(width); hints != "" {
		b.WriteString("\n")
		b.WriteString(hints)
	}

	if s.answered {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width))
	}

	// Short terminals drop the tips under the feedback.
	if !layout.IsCompactHeight(height) && !s.answered && s.item.HintsEnabled && len(s.hints) == 0 && !s.hintPending {
		b.WriteString("\n")
		b.WriteString(centered(width).
			Foreground(theme.TextDim).
			Italic(true).
			Render(fmt.Sprintf("Stuck? Press %s for a hint.", s.hintKey())))
	}

	return b.String()
}

func (s *SessionScreen) renderInfoLine(width int) string {
	phase := "Practice"
	if s.state.Phase() == sess.PhaseAssessment {
		phase = "Quiz"
	}
	pos, total := s.state.Position()

	mins := int(s.elapsed.Minutes())
	secs := int(s.elapsed.Seconds()) % 60

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + phase)

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Problem %d/%d  %s %d:%02d",
			pos, total,
			lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱"),
			mins, secs,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	return infoLine
}

func (s *SessionScreen) renderHints(width int) string {
	var b strings.Builder
	boxWidth := min(width-8, 70)
	for _, h := range s.hints {
		line := lipgloss.NewStyle().
			Width(boxWidth).
			Foreground(theme.Highlight).
			Render(fmt.Sprintf("%s: %s", tutor.HintLabel(h.Level), h.Text))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	switch {
	case s.hintPending:
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("Thinking of a hint..."))
		b.WriteString("\n")
	case s.hintNote != "":
		b.WriteString(centered(width).Foreground(theme.TextDim).Render(s.hintNote))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFeedback renders the result of the last answer.
func (s *SessionScreen) renderFeedback(width int) string {
	var b strings.Builder

	if s.lastCorrect {
		b.WriteString(centered(width).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	} else {
		b.WriteString(centered(width).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
		if !s.canRetry() {
			b.WriteString("\n")
			b.WriteString(centered(width).
				Foreground(theme.TextDim).
				Render("Correct answer: " + s.item.Problem.CorrectAnswer))
		}
	}
	b.WriteString("\n\n")

	switch {
	case s.feedbackPending:
		b.WriteString(centered(width).Foreground(theme.TextDim).Render("..."))
		b.WriteString("\n\n")
	case s.feedback != nil:
		text := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(s.feedback.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, text))
		b.WriteString("\n")
		if s.feedback.Encouragement != "" && s.feedback.Encouragement != s.feedback.Text {
			b.WriteString(centered(width).Foreground(theme.Accent).Render(s.feedback.Encouragement))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	prompt := "Press Enter to continue"
	if s.canRetry() {
		prompt = "Press R to try again or Enter to move on"
	}
	b.WriteString(centered(width).Foreground(theme.TextDim).Render(prompt))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(centered(width).
		Foreground(theme.Text).
		Bold(true).
		Render("End this lesson early?"))
	b.WriteString("\n")
	b.WriteString(centered(width).
		Foreground(theme.TextDim).
		Render("Your answers so far will be saved. Unanswered quiz problems count as missed."))
	b.WriteString("\n\n")

	b.WriteString(centered(width).
		Foreground(theme.Success).
		Render("[Y] Yes, end lesson"))
	b.WriteString("\n")
	b.WriteString(centered(width).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders a waiting message.
func renderLoading(width int, text string) string {
	return centered(width).
		Foreground(theme.TextDim).
		Render("\n\n\n  " + text)
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}
