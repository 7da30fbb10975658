package problemgen

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/metrics"
)

var (
	additiveMax       = [5]int{10, 20, 50, 100, 500}
	multiplicativeMax = [5]int{5, 10, 12, 15, 20}
)

// Generator builds procedural math problems. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	src Source
}

// NewGenerator returns a Generator drawing from src. A nil src uses
// math/rand/v2.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

// GenerateMathProblem produces one problem of the given type. Difficulty is
// clamped to [0,1] for the value table but echoed unchanged on the problem.
// Grade is accepted for future scaling and currently unused.
func (g *Generator) GenerateMathProblem(typ ProblemType, difficulty float64, _ int) (*curriculum.Problem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var p *curriculum.Problem
	switch typ {
	case TypeAddition:
		p = g.addition(difficulty)
	case TypeSubtraction:
		p = g.subtraction(difficulty)
	case TypeMultiplication:
		p = g.multiplication(difficulty)
	case TypeDivision:
		p = g.division(difficulty)
	case TypeFractions:
		p = g.fractions()
	default:
		return nil, &UnknownTypeError{Type: string(typ)}
	}

	p.ID = fmt.Sprintf("%s-%s", idPrefix[typ], uuid.NewString())
	p.Type = string(typ)
	p.Difficulty = difficulty
	metrics.ProblemsGenerated.WithLabelValues(string(typ), "procedural").Inc()
	return p, nil
}

// GenerateForSection produces the problems a practice section asks for.
func (g *Generator) GenerateForSection(section curriculum.PracticeSection, grade int) ([]curriculum.Problem, error) {
	gen := section.ProblemGenerator
	out := make([]curriculum.Problem, 0, gen.Count)
	for i := 0; i < gen.Count; i++ {
		p, err := g.GenerateMathProblem(ProblemType(gen.Type), gen.Difficulty, grade)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// maxValue picks the operand ceiling for a difficulty.
func maxValue(difficulty float64, typ ProblemType) int {
	table := additiveMax
	if typ == TypeMultiplication || typ == TypeDivision {
		table = multiplicativeMax
	}
	if math.IsNaN(difficulty) {
		difficulty = 0
	}
	idx := int(math.Floor(difficulty * 4))
	idx = max(0, min(idx, len(table)-1))
	return table[idx]
}

// randInt returns a uniform integer in [lo, hi].
func (g *Generator) randInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.src.IntN(hi-lo+1)
}

// shuffle performs a Fisher-Yates shuffle using the generator's source.
func (g *Generator) shuffle(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := g.src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func (g *Generator) additiveOptions(answer int) []string {
	opts := []string{
		strconv.Itoa(answer),
		strconv.Itoa(answer + g.randInt(1, 5)),
		strconv.Itoa(answer - g.randInt(1, 5)),
		strconv.Itoa(answer + g.randInt(6, 10)),
	}
	g.shuffle(opts)
	return opts
}

func (g *Generator) addition(difficulty float64) *curriculum.Problem {
	m := maxValue(difficulty, TypeAddition)
	a, b := g.randInt(1, m), g.randInt(1, m)
	sum := a + b
	return &curriculum.Problem{
		Question:      fmt.Sprintf("What is %d + %d?", a, b),
		Options:       g.additiveOptions(sum),
		CorrectAnswer: strconv.Itoa(sum),
		Explanation:   fmt.Sprintf("%d + %d = %d. You can count up from %d by %d to get %d.", a, b, sum, a, b, sum),
	}
}

func (g *Generator) subtraction(difficulty float64) *curriculum.Problem {
	m := maxValue(difficulty, TypeSubtraction)
	answer := g.randInt(0, m)
	a := answer + g.randInt(1, m)
	b := a - answer
	return &curriculum.Problem{
		Question:      fmt.Sprintf("What is %d - %d?", a, b),
		Options:       g.additiveOptions(answer),
		CorrectAnswer: strconv.Itoa(answer),
		Explanation:   fmt.Sprintf("%d - %d = %d. If you have %d and take away %d, you have %d left.", a, b, answer, a, b, answer),
	}
}

func (g *Generator) multiplication(difficulty float64) *curriculum.Problem {
	m := maxValue(difficulty, TypeMultiplication)
	a, b := g.randInt(2, m), g.randInt(2, m)
	product := a * b
	opts := []string{
		strconv.Itoa(product),
		strconv.Itoa(product + a),
		strconv.Itoa(product + b),
		strconv.Itoa(a + b),
	}
	g.shuffle(opts)
	return &curriculum.Problem{
		Question:      fmt.Sprintf("What is %d × %d?", a, b),
		Options:       opts,
		CorrectAnswer: strconv.Itoa(product),
		Explanation:   fmt.Sprintf("%d × %d = %d. This means %d groups of %d, or %d groups of %d.", a, b, product, a, b, b, a),
	}
}

func (g *Generator) division(difficulty float64) *curriculum.Problem {
	m := maxValue(difficulty, TypeDivision)
	answer, b := g.randInt(2, m), g.randInt(2, m)
	a := answer * b
	opts := []string{
		strconv.Itoa(answer),
		strconv.Itoa(answer + 1),
		strconv.Itoa(answer - 1),
		strconv.Itoa(b),
	}
	g.shuffle(opts)
	return &curriculum.Problem{
		Question:      fmt.Sprintf("What is %d ÷ %d?", a, b),
		Options:       opts,
		CorrectAnswer: strconv.Itoa(answer),
		Explanation:   fmt.Sprintf("%d ÷ %d = %d. If you split %d into %d equal groups, each group has %d.", a, b, answer, a, b, answer),
	}
}

func (g *Generator) fractions() *curriculum.Problem {
	n := g.randInt(1, 8)
	d := g.randInt(n+1, 12)
	div := int(gcd(int64(n), int64(d)))
	reduced := fmt.Sprintf("%d/%d", n/div, d/div)
	// Already-reduced fractions repeat as the unreduced distractor.
	opts := []string{
		reduced,
		fmt.Sprintf("%d/%d", n, d),
		fmt.Sprintf("%d/%d", n+1, d),
		fmt.Sprintf("%d/%d", n, d+1),
	}
	g.shuffle(opts)
	return &curriculum.Problem{
		Question:      fmt.Sprintf("Simplify the fraction %d/%d", n, d),
		Options:       opts,
		CorrectAnswer: reduced,
		Explanation:   fmt.Sprintf("%d/%d simplifies to %s by dividing both by their greatest common divisor.", n, d, reduced),
	}
}
