package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

func testContext() Context {
	return Context{
		Problem: curriculum.Problem{
			ID:            "test-1",
			Type:          "addition",
			Question:      "What is 5 + 3?",
			Options:       []string{"6", "7", "8", "9"},
			CorrectAnswer: "8",
			Explanation:   "5 + 3 = 8",
			Difficulty:    0.5,
		},
		StudentAge:   8,
		StudentGrade: 3,
		Topic:        "addition",
	}
}

func assertClean(t *testing.T, s string) {
	t.Helper()
	for _, bad := range []string{"undefined", "${", "{{", "%!", "<nil>"} {
		assert.NotContains(t, s, bad)
	}
}

func TestSocraticHint(t *testing.T) {
	ctx := testContext()
	p := SocraticHint(ctx, 1)

	assert.True(t, strings.HasPrefix(p, "You are a patient, encouraging tutor for a 8-year-old learning addition.\n\nProblem: What is 5 + 3?\n"))
	assert.NotContains(t, p, "The student has tried")
	assert.Contains(t, p, "gentle hint")
	assert.Contains(t, p, "guiding question")
	assert.Contains(t, p, "Rules:\n- Never give the direct answer\n- Use simple language for age 8\n")
	assert.True(t, strings.HasSuffix(p, "Provide a hint (1-2 sentences):"))
	assertClean(t, p)
}

func TestSocraticHintLevels(t *testing.T) {
	ctx := testContext()
	h1, h2, h3 := SocraticHint(ctx, 1), SocraticHint(ctx, 2), SocraticHint(ctx, 3)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h2, h3)
	assert.Contains(t, h2, "more direct hint")
	assert.Contains(t, h2, "right approach")
	assert.Contains(t, h3, "almost show them the answer")

	assert.Equal(t, h1, SocraticHint(ctx, 0), "level below 1 clamps to 1")
	assert.Equal(t, h3, SocraticHint(ctx, 9), "level above 3 clamps to 3")
}

func TestSocraticHintPreviousAttempts(t *testing.T) {
	ctx := testContext()
	ctx.PreviousAttempts = []curriculum.Answer{
		{StudentAnswer: "7"},
		{StudentAnswer: "6"},
	}
	p := SocraticHint(ctx, 2)
	assert.Contains(t, p, "Problem: What is 5 + 3?\nThe student has tried: 7, 6\n\n")
	assertClean(t, p)
}

func TestSocraticHintMissingFields(t *testing.T) {
	p := SocraticHint(Context{Problem: curriculum.Problem{Question: "What is 1 + 1?"}}, 1)
	assert.Contains(t, p, "young student learning math")
	assert.Contains(t, p, "Use simple language for their age")
	assertClean(t, p)
}

func TestFeedbackCorrect(t *testing.T) {
	p := Feedback(testContext(), "8", true)

	assert.True(t, strings.HasPrefix(p, "You are a tutor for a 8-year-old.\n\n"))
	assert.Contains(t, p, "Student's answer: 8\nThis is CORRECT!")
	assert.Contains(t, p, "1. Brief enthusiastic praise (1 sentence)")
	assert.NotContains(t, p, "Correct answer:")
	assert.True(t, strings.HasSuffix(p, "Keep it short, positive, and age-appropriate:"))
	assertClean(t, p)
}

func TestFeedbackIncorrect(t *testing.T) {
	p := Feedback(testContext(), "7", false)

	assert.True(t, strings.HasPrefix(p, "You are a patient tutor for a 8-year-old learning addition.\n\n"))
	assert.Contains(t, p, "Correct answer: 8\nStudent's answer: 7\nThis is incorrect.")
	assert.Contains(t, p, "1. Acknowledge their effort (encouraging)")
	assert.Contains(t, p, "3. Suggest trying again or give a hint")
	assert.True(t, strings.HasSuffix(p, "Keep it supportive and age-appropriate (2-3 sentences):"))
	assertClean(t, p)
}

func TestProblemGeneration(t *testing.T) {
	p := ProblemGeneration("fractions", 4, 0.65)
	assert.True(t, strings.HasPrefix(p, "Generate a fractions practice problem for grade 4.\n\nDifficulty level: 7/10\n"))
	assert.Contains(t, p, `"correct_answer": "the correct option"`)
	assert.True(t, strings.HasSuffix(p, "Use real-world contexts when possible."))

	assert.Contains(t, ProblemGeneration("x", 1, 0), "Difficulty level: 0/10")
	assert.Contains(t, ProblemGeneration("x", 1, 1), "Difficulty level: 10/10")
	assert.Contains(t, ProblemGeneration("", 1, 0.5), "Generate a math practice problem")
	assertClean(t, p)
}

func TestExplanation(t *testing.T) {
	p := Explanation(testContext().Problem, 6)
	want := "You are explaining a math concept to a 6-year-old.\n\n" +
		"Problem: What is 5 + 3?\n" +
		"Answer: 8\n\n" +
		"Explain this in a simple, visual way that a 6-year-old would understand.\n" +
		"Use examples from their daily life (toys, snacks, games, etc.).\n\n" +
		"Provide a clear explanation (2-3 sentences):"
	assert.Equal(t, want, p)
}

func TestBuildersAreDeterministic(t *testing.T) {
	ctx := testContext()
	assert.Equal(t, SocraticHint(ctx, 2), SocraticHint(ctx, 2))
	assert.Equal(t, Feedback(ctx, "7", false), Feedback(ctx, "7", false))
	assert.Equal(t, ProblemGeneration("time", 2, 0.3), ProblemGeneration("time", 2, 0.3))
}
