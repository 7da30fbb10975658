package curriculum

import (
	"math"
	"sort"
)

// ConceptSet is the set of concept ids a student has mastered.
type ConceptSet map[string]bool

// MasteredSet builds a ConceptSet from concept ids.
func MasteredSet(concepts ...string) ConceptSet {
	s := make(ConceptSet, len(concepts))
	for _, c := range concepts {
		s[c] = true
	}
	return s
}

// Has reports whether concept is in the set.
func (s ConceptSet) Has(concept string) bool {
	return s[concept]
}

// Slice returns the concepts in sorted order.
func (s ConceptSet) Slice() []string {
	out := make([]string, 0, len(s))
	for c, ok := range s {
		if ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// PrerequisiteCheck is the result of ValidatePrerequisites.
type PrerequisiteCheck struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
}

// ValidatePrerequisites lists the lesson's prerequisites that are not
// mastered, in declaration order.
func ValidatePrerequisites(lesson Lesson, mastered ConceptSet) PrerequisiteCheck {
	missing := []string{}
	for _, p := range lesson.Prerequisites {
		if !mastered.Has(p) {
			missing = append(missing, p)
		}
	}
	return PrerequisiteCheck{Valid: len(missing) == 0, Missing: missing}
}

// CalculateLessonDifficulty scores a lesson in [0,1] from the size of its
// prerequisite and teaches lists.
func CalculateLessonDifficulty(lesson Lesson) float64 {
	prereq := math.Min(float64(len(lesson.Prerequisites))/5, 1)
	teaches := math.Min(float64(len(lesson.Teaches))/3, 1)
	return 0.6*prereq + 0.4*teaches
}

// RecommendedLessons returns the lessons of the given grade and subject that
// are ready to start and still teach something new. Lessons building on
// more of what the student already knows come first; ties keep input order.
func RecommendedLessons(all []Lesson, mastered ConceptSet, grade int, subject string) []Lesson {
	type candidate struct {
		lesson  Lesson
		overlap int
	}

	var candidates []candidate
	for _, l := range all {
		if l.Grade != grade || l.Subject != subject {
			continue
		}
		if allMastered(l.Teaches, mastered) {
			continue
		}
		if !allMastered(l.Prerequisites, mastered) {
			continue
		}
		overlap := 0
		for _, p := range l.Prerequisites {
			if mastered.Has(p) {
				overlap++
			}
		}
		candidates = append(candidates, candidate{lesson: l, overlap: overlap})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].overlap > candidates[j].overlap
	})

	out := make([]Lesson, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.lesson)
	}
	return out
}

// allMastered is vacuously true for an empty list.
func allMastered(concepts []string, mastered ConceptSet) bool {
	for _, c := range concepts {
		if !mastered.Has(c) {
			return false
		}
	}
	return true
}
