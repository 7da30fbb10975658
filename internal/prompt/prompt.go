// Package prompt builds the text prompts sent to tutor backends.
// Every builder is pure and deterministic.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// Context is everything a tutor knows about the problem in front of a
// student.
type Context struct {
	Problem          curriculum.Problem
	PreviousAttempts []curriculum.Answer
	StudentAge       int
	StudentGrade     int
	Topic            string
}

// topic falls back to the problem type, then to "math".
func (c Context) topic() string {
	if t := strings.TrimSpace(c.Topic); t != "" {
		return t
	}
	if t := strings.TrimSpace(c.Problem.Type); t != "" {
		return t
	}
	return "math"
}

// ageLabel renders "8-year-old", or "young student" when the age is unknown.
func ageLabel(age int) string {
	if age <= 0 {
		return "young student"
	}
	return fmt.Sprintf("%d-year-old", age)
}

// ClampHintLevel forces a hint level into 1..3.
func ClampHintLevel(level int) int {
	return max(1, min(level, 3))
}

var hintGuidance = map[int]string{
	1: "Give a very gentle hint - ask a guiding question without revealing the solution.",
	2: "Give a more direct hint - point them toward the right approach.",
	3: "Give a strong hint - almost show them the answer, but let them take the final step.",
}

// SocraticHint builds the prompt for a hint at the given level (clamped to
// 1..3). Prior attempts are listed only when there are any.
func SocraticHint(ctx Context, level int) string {
	level = ClampHintLevel(level)
	age := ageLabel(ctx.StudentAge)

	var b strings.Builder
	fmt.Fprintf(&b, "You are a patient, encouraging tutor for a %s learning %s.\n\n", age, ctx.topic())
	fmt.Fprintf(&b, "Problem: %s\n", ctx.Problem.Question)

	if len(ctx.PreviousAttempts) > 0 {
		tried := make([]string, 0, len(ctx.PreviousAttempts))
		for _, a := range ctx.PreviousAttempts {
			tried = append(tried, a.StudentAnswer)
		}
		fmt.Fprintf(&b, "The student has tried: %s\n", strings.Join(tried, ", "))
	}

	b.WriteString("\n")
	b.WriteString(hintGuidance[level])
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Never give the direct answer\n")
	if ctx.StudentAge > 0 {
		fmt.Fprintf(&b, "- Use simple language for age %d\n", ctx.StudentAge)
	} else {
		b.WriteString("- Use simple language for their age\n")
	}
	b.WriteString("- Be encouraging and positive\n")
	b.WriteString("- Ask questions that help them think\n")
	b.WriteString("- Use real-world examples when helpful\n")
	b.WriteString("\nProvide a hint (1-2 sentences):")

	return b.String()
}

// Feedback builds the prompt that phrases feedback on a graded answer.
func Feedback(ctx Context, studentAnswer string, isCorrect bool) string {
	age := ageLabel(ctx.StudentAge)

	var b strings.Builder
	if isCorrect {
		fmt.Fprintf(&b, "You are a tutor for a %s.\n\n", age)
		fmt.Fprintf(&b, "Problem: %s\n", ctx.Problem.Question)
		fmt.Fprintf(&b, "Student's answer: %s\n", studentAnswer)
		b.WriteString("This is CORRECT!\n\n")
		b.WriteString(`Provide:
1. Brief enthusiastic praise (1 sentence)
2. Quick explanation of why it's right (1 sentence)
3. Encouraging next step (1 sentence)

Keep it short, positive, and age-appropriate:`)
		return b.String()
	}

	fmt.Fprintf(&b, "You are a patient tutor for a %s learning %s.\n\n", age, ctx.topic())
	fmt.Fprintf(&b, "Problem: %s\n", ctx.Problem.Question)
	fmt.Fprintf(&b, "Correct answer: %s\n", ctx.Problem.CorrectAnswer)
	fmt.Fprintf(&b, "Student's answer: %s\n", studentAnswer)
	b.WriteString("This is incorrect.\n\n")
	b.WriteString(`Provide gentle, constructive feedback:
1. Acknowledge their effort (encouraging)
2. Explain the error simply
3. Suggest trying again or give a hint

Keep it supportive and age-appropriate (2-3 sentences):`)
	return b.String()
}

// ProblemGeneration builds the prompt asking a model for a new problem.
// Difficulty in [0,1] is shown as a level out of 10.
func ProblemGeneration(topic string, grade int, difficulty float64) string {
	if strings.TrimSpace(topic) == "" {
		topic = "math"
	}
	level := int(math.Round(difficulty * 10))

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s practice problem for grade %d.\n\n", topic, grade)
	fmt.Fprintf(&b, "Difficulty level: %d/10\n\n", level)
	b.WriteString(`Format your response as JSON:
{
  "question": "The problem statement",
  "options": ["option1", "option2", "option3", "option4"],
  "correct_answer": "the correct option",
  "explanation": "why this is the answer"
}

Make it engaging and age-appropriate. Use real-world contexts when possible.`)
	return b.String()
}

// Explanation builds the prompt for a kid-friendly explanation of a problem.
func Explanation(problem curriculum.Problem, studentAge int) string {
	age := ageLabel(studentAge)

	var b strings.Builder
	fmt.Fprintf(&b, "You are explaining a math concept to a %s.\n\n", age)
	fmt.Fprintf(&b, "Problem: %s\n", problem.Question)
	fmt.Fprintf(&b, "Answer: %s\n\n", problem.CorrectAnswer)
	fmt.Fprintf(&b, "Explain this in a simple, visual way that a %s would understand.\n", age)
	b.WriteString("Use examples from their daily life (toys, snacks, games, etc.).\n\n")
	b.WriteString("Provide a clear explanation (2-3 sentences):")
	return b.String()
}
