package session

import "github.com/kevinraymond/homeschool/internal/store"

// Difficulty adjustment applied to a concept after each session.
const (
	difficultyStep = 0.1
	minDifficulty  = 0.1
	maxDifficulty  = 1.0
)

// ProgressDelta is what one session contributes to a concept.
type ProgressDelta struct {
	Concept   string
	Subject   string
	Attempts  int
	Correct   int
	Passed    bool
	Threshold float64
}

// Accuracy is Correct/Attempts, or 0 with no attempts.
func (d ProgressDelta) Accuracy() float64 {
	if d.Attempts == 0 {
		return 0
	}
	return float64(d.Correct) / float64(d.Attempts)
}

// ProgressUpdates returns one delta per concept the lesson teaches. Every
// answered problem counts toward each concept. Lessons without answers
// produce no deltas.
func (s *Session) ProgressUpdates() []ProgressDelta {
	r := s.Result()
	if r.ProblemsAttempted == 0 {
		return nil
	}
	sc := s.Score()
	out := make([]ProgressDelta, 0, len(s.Lesson.Teaches))
	for _, c := range s.Lesson.Teaches {
		out = append(out, ProgressDelta{
			Concept:   c,
			Subject:   s.Lesson.Subject,
			Attempts:  r.ProblemsAttempted,
			Correct:   r.ProblemsCorrect,
			Passed:    sc.Passed,
			Threshold: sc.Threshold,
		})
	}
	return out
}

// Apply folds d into node. Mastery is lifetime accuracy, raised to the
// threshold when the assessment was passed. Difficulty moves one step up
// after a strong session and one step down after a weak one.
func (d ProgressDelta) Apply(node store.ProgressNode) store.ProgressUpdate {
	u := store.ProgressUpdate{
		TotalAttempts:   node.TotalAttempts + d.Attempts,
		TotalCorrect:    node.TotalCorrect + d.Correct,
		DifficultyLevel: node.DifficultyLevel,
	}
	if u.TotalAttempts > 0 {
		u.MasteryLevel = float64(u.TotalCorrect) / float64(u.TotalAttempts)
	}
	if d.Passed && u.MasteryLevel < d.Threshold {
		u.MasteryLevel = d.Threshold
	}
	u.MasteryLevel = clamp(u.MasteryLevel, 0, 1)

	switch acc := d.Accuracy(); {
	case d.Attempts == 0:
	case acc >= DefaultMasteryThreshold:
		u.DifficultyLevel += difficultyStep
	case acc < StruggleAccuracy:
		u.DifficultyLevel -= difficultyStep
	}
	u.DifficultyLevel = clamp(u.DifficultyLevel, minDifficulty, maxDifficulty)
	return u
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
