package problemgen

import (
	"math/big"
	"regexp"
	"strings"
)

// AnswerType describes the numeric shape of an answer string.
type AnswerType string

const (
	AnswerTypeInteger  AnswerType = "integer"  // "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // "3.75"
	AnswerTypeFraction AnswerType = "fraction" // "3/4"
	AnswerTypeText     AnswerType = "text"
)

var (
	integerRe  = regexp.MustCompile(`^-?\d+$`)
	decimalRe  = regexp.MustCompile(`^-?\d*\.\d+$`)
	fractionRe = regexp.MustCompile(`^-?\d+\s*/\s*-?\d+$`)
)

// parseAnswer classifies s and, for numeric shapes, returns its exact value.
// A fraction with a zero denominator is text.
func parseAnswer(s string) (AnswerType, *big.Rat) {
	s = strings.TrimSpace(s)
	var typ AnswerType
	switch {
	case integerRe.MatchString(s):
		typ = AnswerTypeInteger
	case decimalRe.MatchString(s):
		typ = AnswerTypeDecimal
	case fractionRe.MatchString(s):
		typ = AnswerTypeFraction
		s = strings.ReplaceAll(s, " ", "")
	default:
		return AnswerTypeText, nil
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return AnswerTypeText, nil
	}
	return typ, r
}

// canonicalAnswer is how a well-formed answer of the given type is written:
// integers without leading zeros, decimals without trailing zeros, fractions
// in lowest terms with the sign on the numerator. A whole-valued fraction is
// written as an integer.
func canonicalAnswer(typ AnswerType, r *big.Rat) string {
	if typ == AnswerTypeDecimal {
		s := strings.TrimRight(r.FloatString(12), "0")
		return strings.TrimSuffix(s, ".")
	}
	return r.RatString()
}

// CheckAnswer reports whether a learner's typed answer matches correct.
// Numeric answers match by value, so "007" matches "7", "3.50" matches
// "3.5" and "2/4" matches "1/2". Text falls back to
// curriculum-style normalization.
func CheckAnswer(learner, correct string) bool {
	if strings.TrimSpace(learner) == "" {
		return false
	}
	ct, cv := parseAnswer(correct)
	if ct == AnswerTypeText {
		return normalizeText(learner) == normalizeText(correct)
	}
	_, lv := parseAnswer(learner)
	return lv != nil && lv.Cmp(cv) == 0
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
