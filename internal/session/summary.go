package session

import (
	"math"
	"sort"
	"time"

	"github.com/kevinraymond/homeschool/internal/diagnosis"
	"github.com/kevinraymond/homeschool/internal/store"
)

// DefaultMasteryThreshold applies when the lesson has no assessment.
const DefaultMasteryThreshold = 0.8

// StruggleAccuracy is the accuracy below which a session is flagged.
const StruggleAccuracy = 0.6

// Score is the graded outcome of the assessment problems.
type Score struct {
	Correct   int
	Total     int
	Percent   int
	Threshold float64
	Passed    bool
}

// Score grades the assessment. Only the last answer to each problem counts
// and unanswered problems count as wrong. A lesson without assessment
// problems never passes.
func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := Score{Threshold: s.threshold}
	for _, it := range s.items {
		if !it.Assessment {
			continue
		}
		sc.Total++
		if last := it.Last(); last != nil && last.IsCorrect {
			sc.Correct++
		}
	}
	if sc.Total == 0 {
		return sc
	}
	sc.Percent = int(math.Round(float64(sc.Correct) / float64(sc.Total) * 100))
	sc.Passed = float64(sc.Percent) >= sc.Threshold*100
	return sc
}

// Result summarizes the session for persistence. A problem counts as
// attempted once answered and as correct when its last answer is.
func (s *Session) Result() store.SessionResult {
	s.mu.Lock()
	end := s.ended
	if end.IsZero() {
		end = s.now()
	}
	var attempted, correct, hints int
	for _, it := range s.items {
		hints += it.HintsUsed()
		last := it.Last()
		if last == nil {
			continue
		}
		attempted++
		if last.IsCorrect {
			correct++
		}
	}
	s.mu.Unlock()

	return NewResult(attempted, correct, hints, end.Sub(s.StartTime))
}

// NewResult derives accuracy and the struggle flag from raw counts. A
// session struggles when accuracy is below StruggleAccuracy or more hints
// were used than problems attempted.
func NewResult(attempted, correct, hints int, spent time.Duration) store.SessionResult {
	r := store.SessionResult{
		TimeSpentSeconds:  int(spent.Seconds()),
		ProblemsAttempted: attempted,
		ProblemsCorrect:   correct,
		AIHintsUsed:       hints,
	}
	if r.TimeSpentSeconds < 0 {
		r.TimeSpentSeconds = 0
	}
	if attempted > 0 {
		r.Accuracy = float64(correct) / float64(attempted)
	}
	r.StruggleDetected = (attempted > 0 && r.Accuracy < StruggleAccuracy) || hints > attempted
	return r
}

// TypeResult is per problem type performance.
type TypeResult struct {
	Type      string
	Attempted int
	Correct   int
	HintsUsed int
}

// Summary holds the data displayed at the end of a session.
type Summary struct {
	LessonID    string
	LessonTitle string
	Duration    time.Duration
	Result      store.SessionResult
	Score       Score
	Types       []TypeResult
	Mistakes    []MistakeCount
}

// MistakeCount is how many wrong answers got one diagnosis label.
type MistakeCount struct {
	Category diagnosis.Category
	Count    int
}

// BuildSummary creates a Summary from the session's current state.
func BuildSummary(s *Session) *Summary {
	sum := &Summary{
		LessonID:    s.Lesson.ID,
		LessonTitle: s.Lesson.Title,
		Duration:    s.Elapsed(),
		Result:      s.Result(),
		Score:       s.Score(),
	}

	sum.Types = s.typeResults()
	sum.Mistakes = s.mistakeCounts()
	return sum
}

// mistakeCounts tallies diagnosed wrong answers, most frequent first.
// Unclassified answers are left out.
func (s *Session) mistakeCounts() []MistakeCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[diagnosis.Category]int)
	for _, it := range s.items {
		for _, d := range it.Diagnoses {
			if d.Category != diagnosis.CategoryUnclassified {
				counts[d.Category]++
			}
		}
	}
	out := make([]MistakeCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, MistakeCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func (s *Session) typeResults() []TypeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	byType := make(map[string]*TypeResult)
	for _, it := range s.items {
		tr, ok := byType[it.Problem.Type]
		if !ok {
			tr = &TypeResult{Type: it.Problem.Type}
			byType[it.Problem.Type] = tr
		}
		tr.HintsUsed += it.HintsUsed()
		if last := it.Last(); last != nil {
			tr.Attempted++
			if last.IsCorrect {
				tr.Correct++
			}
		}
	}
	out := make([]TypeResult, 0, len(byType))
	for _, tr := range byType {
		out = append(out, *tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
