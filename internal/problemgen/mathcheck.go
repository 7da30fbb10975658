package problemgen

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// MathCheckValidator recomputes a single binary operation found in the
// question ("345 + 278", "1/2 + 1/4", "144 ÷ 12") and rejects the problem
// when the claimed answer disagrees. Word problems and chained expressions
// pass through unchecked.
type MathCheckValidator struct{}

func (v *MathCheckValidator) Name() string { return "math-check" }

func (v *MathCheckValidator) Validate(p *curriculum.Problem, _ GenerateInput) *ValidationError {
	claimed, ok := new(big.Rat).SetString(strings.TrimSpace(p.CorrectAnswer))
	if !ok {
		return nil
	}
	computed, ok := evalBinary(p.Question)
	if !ok {
		return nil
	}
	if computed.Cmp(claimed) != 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s but the model claimed %q", computed.RatString(), p.CorrectAnswer),
			Retryable: true,
		}
	}
	return nil
}

// An operand is an integer, decimal or a fraction written without spaces.
// A slash between spaces is division; "3/4" is a number.
const operand = `-?\d+(?:\.\d+)?(?:/\d+)?`

var (
	binaryExprRe = regexp.MustCompile(`(` + operand + `)\s*([+\-*×x÷]|\s/\s)\s*(` + operand + `)`)
	chainedOpRe  = regexp.MustCompile(`^\s*[+\-*×÷]\s*\d`)
)

// evalBinary evaluates the first "a op b" expression in text.
func evalBinary(text string) (*big.Rat, bool) {
	loc := binaryExprRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, false
	}
	if chainedOpRe.MatchString(text[loc[1]:]) {
		return nil, false
	}
	a, ok := new(big.Rat).SetString(text[loc[2]:loc[3]])
	if !ok {
		return nil, false
	}
	b, ok := new(big.Rat).SetString(text[loc[6]:loc[7]])
	if !ok {
		return nil, false
	}

	r := new(big.Rat)
	switch strings.TrimSpace(text[loc[4]:loc[5]]) {
	case "+":
		r.Add(a, b)
	case "-":
		r.Sub(a, b)
	case "*", "×", "x":
		r.Mul(a, b)
	case "/", "÷":
		if b.Sign() == 0 {
			return nil, false
		}
		r.Quo(a, b)
	default:
		return nil, false
	}
	return r, true
}
