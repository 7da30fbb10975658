package curriculum

import "strings"

// NormalizeAnswer trims, lowercases and collapses internal whitespace runs
// to a single space.
func NormalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// AnswerMatches compares two answers after normalization.
func AnswerMatches(correct, student string) bool {
	return NormalizeAnswer(correct) == NormalizeAnswer(student)
}
