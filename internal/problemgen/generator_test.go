package problemgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// scriptedSource replays fixed values, reduced modulo n. Once exhausted it
// returns 0.
type scriptedSource struct {
	values []int
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

func containsOption(p *curriculum.Problem, want string) bool {
	for _, o := range p.Options {
		if o == want {
			return true
		}
	}
	return false
}

func checkCommon(t *testing.T, p *curriculum.Problem, typ ProblemType) {
	t.Helper()
	if len(p.Options) != 4 {
		t.Fatalf("%s: expected 4 options, got %d (%v)", typ, len(p.Options), p.Options)
	}
	if !containsOption(p, p.CorrectAnswer) {
		t.Fatalf("%s: correct answer %q not in options %v", typ, p.CorrectAnswer, p.Options)
	}
	if !strings.HasPrefix(p.ID, idPrefix[typ]+"-") {
		t.Fatalf("%s: id %q lacks prefix %q", typ, p.ID, idPrefix[typ])
	}
	if p.Type != string(typ) {
		t.Fatalf("expected type %q, got %q", typ, p.Type)
	}
	if p.Question == "" || p.Explanation == "" {
		t.Fatalf("%s: empty question or explanation", typ)
	}
}

func operands(t *testing.T, question, op string) (int, int) {
	t.Helper()
	body := strings.TrimSuffix(strings.TrimPrefix(question, "What is "), "?")
	parts := strings.Split(body, " "+op+" ")
	if len(parts) != 2 {
		t.Fatalf("cannot parse %q with operator %q", question, op)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		t.Fatalf("bad operand in %q: %v", question, err)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		t.Fatalf("bad operand in %q: %v", question, err)
	}
	return a, b
}

func TestGenerateMathProblem_AllTypes(t *testing.T) {
	g := NewGenerator(nil)
	for _, typ := range Types() {
		for _, d := range []float64{0, 0.25, 0.5, 0.75, 1} {
			for i := 0; i < 50; i++ {
				p, err := g.GenerateMathProblem(typ, d, 3)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", typ, err)
				}
				checkCommon(t, p, typ)
				if p.Difficulty != d {
					t.Fatalf("difficulty not echoed: got %v want %v", p.Difficulty, d)
				}
			}
		}
	}
}

func TestGenerateMathProblem_Addition(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 100; i++ {
		p, _ := g.GenerateMathProblem(TypeAddition, 0, 1)
		a, b := operands(t, p.Question, "+")
		if a < 1 || a > 10 || b < 1 || b > 10 {
			t.Fatalf("operands out of range for difficulty 0: %q", p.Question)
		}
		if p.CorrectAnswer != strconv.Itoa(a+b) {
			t.Fatalf("wrong answer for %q: %s", p.Question, p.CorrectAnswer)
		}
	}
}

func TestGenerateMathProblem_AdditionExactText(t *testing.T) {
	g := NewGenerator(&scriptedSource{values: []int{2, 4}})
	p, err := g.GenerateMathProblem(TypeAddition, 0.1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Question != "What is 3 + 5?" {
		t.Errorf("unexpected question: %q", p.Question)
	}
	want := "3 + 5 = 8. You can count up from 3 by 5 to get 8."
	if p.Explanation != want {
		t.Errorf("explanation = %q, want %q", p.Explanation, want)
	}
}

func TestGenerateMathProblem_DivisionExactText(t *testing.T) {
	// Difficulty 0.5 gives max 12: answer = 2+4, b = 2+1.
	g := NewGenerator(&scriptedSource{values: []int{4, 1}})
	p, err := g.GenerateMathProblem(TypeDivision, 0.5, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Question != "What is 18 ÷ 3?" {
		t.Errorf("unexpected question: %q", p.Question)
	}
	if p.CorrectAnswer != "6" {
		t.Errorf("answer = %q, want 6", p.CorrectAnswer)
	}
	for _, want := range []string{"6", "7", "5", "3"} {
		if !containsOption(p, want) {
			t.Errorf("options %v missing %q", p.Options, want)
		}
	}
}

func TestGenerateMathProblem_DifficultyScalesOperands(t *testing.T) {
	mean := func(difficulty float64) float64 {
		g := NewGenerator(NewSeededSource(7, 11))
		const n = 500
		sum := 0
		for i := 0; i < n; i++ {
			p, err := g.GenerateMathProblem(TypeAddition, difficulty, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			a, b := operands(t, p.Question, "+")
			sum += a + b
		}
		return float64(sum) / (2 * n)
	}
	easy, hard := mean(0), mean(1)
	if hard <= 2*easy {
		t.Fatalf("mean operand at difficulty 1 (%.2f) should exceed twice difficulty 0 (%.2f)", hard, easy)
	}
}

func TestGenerateMathProblem_SubtractionNonNegative(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 200; i++ {
		p, _ := g.GenerateMathProblem(TypeSubtraction, 1, 4)
		n, err := strconv.Atoi(p.CorrectAnswer)
		if err != nil {
			t.Fatalf("answer not an integer: %q", p.CorrectAnswer)
		}
		if n < 0 {
			t.Fatalf("negative answer %d for %q", n, p.Question)
		}
		a, b := operands(t, p.Question, "-")
		if a-b != n {
			t.Fatalf("%q answered %d", p.Question, n)
		}
		if !strings.Contains(p.Explanation, "take away") {
			t.Fatalf("unexpected explanation %q", p.Explanation)
		}
	}
}

func TestGenerateMathProblem_MultiplicationAndDivision(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 100; i++ {
		p, _ := g.GenerateMathProblem(TypeMultiplication, 0.5, 3)
		a, b := operands(t, p.Question, "×")
		if a < 2 || a > 12 || b < 2 || b > 12 {
			t.Fatalf("operands out of range: %q", p.Question)
		}
		if p.CorrectAnswer != strconv.Itoa(a*b) {
			t.Fatalf("wrong product for %q", p.Question)
		}

		d, _ := g.GenerateMathProblem(TypeDivision, 0.5, 3)
		x, y := operands(t, d.Question, "÷")
		if x%y != 0 {
			t.Fatalf("division not exact: %q", d.Question)
		}
		if d.CorrectAnswer != strconv.Itoa(x/y) {
			t.Fatalf("wrong quotient for %q", d.Question)
		}
		if !strings.Contains(d.Explanation, fmt.Sprintf("%d ÷ %d = %d", x, y, x/y)) {
			t.Fatalf("explanation %q missing equation", d.Explanation)
		}
	}
}

func TestGenerateMathProblem_FractionsReduced(t *testing.T) {
	g := NewGenerator(nil)
	for i := 0; i < 200; i++ {
		p, _ := g.GenerateMathProblem(TypeFractions, 0.5, 4)
		if !strings.HasPrefix(p.Question, "Simplify the fraction ") {
			t.Fatalf("unexpected question %q", p.Question)
		}
		typ, val := parseAnswer(p.CorrectAnswer)
		if typ != AnswerTypeFraction {
			t.Fatalf("answer %q is not a fraction", p.CorrectAnswer)
		}
		if canonicalAnswer(typ, val) != p.CorrectAnswer {
			t.Fatalf("answer %q not in lowest terms", p.CorrectAnswer)
		}
		orig := strings.TrimPrefix(p.Question, "Simplify the fraction ")
		if !CheckAnswer(orig, p.CorrectAnswer) {
			t.Fatalf("%q is not equivalent to %q", p.CorrectAnswer, orig)
		}
	}
}

func TestGenerateMathProblem_UnknownType(t *testing.T) {
	g := NewGenerator(nil)
	p, err := g.GenerateMathProblem("geometry", 0.5, 3)
	if p != nil {
		t.Fatal("expected nil problem")
	}
	var ute *UnknownTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("expected UnknownTypeError, got %T: %v", err, err)
	}
	if ute.Type != "geometry" {
		t.Errorf("unexpected type %q", ute.Type)
	}
}

func TestGenerateMathProblem_OutOfRangeDifficulty(t *testing.T) {
	g := NewGenerator(nil)
	p, err := g.GenerateMathProblem(TypeAddition, 1.7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Difficulty != 1.7 {
		t.Errorf("difficulty should be echoed unchanged, got %v", p.Difficulty)
	}
	p, _ = g.GenerateMathProblem(TypeAddition, -0.5, 3)
	a, b := operands(t, p.Question, "+")
	if a > 10 || b > 10 {
		t.Errorf("negative difficulty should use the smallest table entry: %q", p.Question)
	}
}

func TestMaxValue(t *testing.T) {
	tests := []struct {
		difficulty float64
		typ        ProblemType
		want       int
	}{
		{0, TypeAddition, 10},
		{0.25, TypeAddition, 20},
		{0.5, TypeSubtraction, 50},
		{0.74, TypeAddition, 50},
		{0.75, TypeAddition, 100},
		{1, TypeAddition, 500},
		{2, TypeAddition, 500},
		{-1, TypeAddition, 10},
		{0, TypeMultiplication, 5},
		{0.5, TypeDivision, 12},
		{1, TypeDivision, 20},
	}
	for _, tc := range tests {
		if got := maxValue(tc.difficulty, tc.typ); got != tc.want {
			t.Errorf("maxValue(%v, %s) = %d, want %d", tc.difficulty, tc.typ, got, tc.want)
		}
	}
}

func TestGenerator_SeededIsDeterministic(t *testing.T) {
	g1 := NewGenerator(NewSeededSource(1, 2))
	g2 := NewGenerator(NewSeededSource(1, 2))
	for i := 0; i < 20; i++ {
		p1, _ := g1.GenerateMathProblem(TypeMultiplication, 0.5, 3)
		p2, _ := g2.GenerateMathProblem(TypeMultiplication, 0.5, 3)
		if p1.Question != p2.Question || strings.Join(p1.Options, ",") != strings.Join(p2.Options, ",") {
			t.Fatalf("seeded generators diverged: %q vs %q", p1.Question, p2.Question)
		}
		if p1.ID == p2.ID {
			t.Fatal("ids must be unique")
		}
	}
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := NewGenerator(NewSeededSource(7, 7))
	var wg sync.WaitGroup
	ids := make(chan string, 400)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p, err := g.GenerateMathProblem(Types()[i%len(Types())], 0.5, 3)
				if err != nil {
					t.Error(err)
					return
				}
				ids <- p.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateForSection(t *testing.T) {
	g := NewGenerator(nil)
	section := curriculum.PracticeSection{
		ProblemGenerator: curriculum.ProblemGeneratorSpec{Type: "division", Difficulty: 0.3, Count: 6},
	}
	problems, err := g.GenerateForSection(section, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(problems) != 6 {
		t.Fatalf("expected 6 problems, got %d", len(problems))
	}

	section.ProblemGenerator.Type = "calculus"
	if _, err := g.GenerateForSection(section, 3); err == nil {
		t.Fatal("expected error for unknown generator type")
	}
}
