package tutor

import (
	"fmt"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/prompt"
)

// FallbackHint returns a canned hint for when no tutor is available or the
// tutor call failed. Level is clamped to 1..3; level 3 names the answer's
// neighbourhood.
func FallbackHint(problem curriculum.Problem, level int) *Hint {
	level = prompt.ClampHintLevel(level)
	var text string
	switch level {
	case 1:
		text = "Think about what the question is asking. Break it down step by step!"
	case 2:
		text = "Try using your fingers or drawing a picture to help you solve this."
	default:
		text = fmt.Sprintf("The answer is close to %s. Can you figure out the exact number?", problem.CorrectAnswer)
	}
	return &Hint{Text: text, Level: level}
}

// Encouragement is the short message shown after an answer is graded.
func Encouragement(correct bool, hintsUsed int) string {
	if !correct {
		return "💪 Not quite! Give it another try - you can do this!"
	}
	switch {
	case hintsUsed <= 0:
		return "🌟 Excellent! You got it on your own!"
	case hintsUsed == 1:
		return "👍 Great job! Nice problem solving!"
	default:
		return "✨ You did it! Keep practicing!"
	}
}

// HintLabel names the hint button for a level.
func HintLabel(level int) string {
	switch level {
	case 1:
		return "💡 Small Hint"
	case 2:
		return "🔍 Bigger Hint"
	case 3:
		return "🎯 Big Hint"
	default:
		return "💡 Hint"
	}
}
