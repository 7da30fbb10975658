package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/kevinraymond/homeschool/internal/ui/theme"
)

// renderGreeting returns the greeting line for the student.
func renderGreeting(name string, cw int) string {
	text := "Ready to learn?"
	if name != "" {
		text = fmt.Sprintf("Hi %s! Ready to learn?", name)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Highlight).
		Bold(true).
		Render(text)
}

// renderStatsBar renders grade, mastered concepts and the last session.
func renderStatsBar(grade, mastered int, last *lastSession, cw int, compact bool) string {
	gradeStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	gradeText := fmt.Sprintf("GRADE %d", grade)
	if grade == 0 {
		gradeText = "KINDERGARTEN"
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s  %s",
			gradeStyle.Render(gradeText),
			masteredStyle.Render(fmt.Sprintf("★%d", mastered)))
	} else {
		lastText := dimStyle.Render("NO LESSONS YET")
		if last != nil {
			lastText = dimStyle.Render(fmt.Sprintf("LAST: %.0f%%", last.Accuracy*100))
		}
		stats = fmt.Sprintf("%s  %s  %s",
			gradeStyle.Render(gradeText),
			masteredStyle.Render(fmt.Sprintf("★ %d MASTERED", mastered)),
			lastText)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderMascotBox renders the mascot centered at content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

func renderNote(text string, cw int, fg lipgloss.Style) string {
	return fg.
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}
