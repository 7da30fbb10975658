package session

import (
	"context"
	"time"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/diagnosis"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// maxPreviousAttempts bounds the attempt history sent to the tutor.
const maxPreviousAttempts = 5

// Submit grades answer for problemID and records it with the hints used so
// far. Resubmitting is allowed; scoring counts the last answer.
func (s *Session) Submit(problemID, answer string, elapsed time.Duration) (curriculum.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended.IsZero() {
		return curriculum.Answer{}, ErrEnded
	}
	it, err := s.item(problemID)
	if err != nil {
		return curriculum.Answer{}, err
	}
	a := curriculum.NewAnswer(it.Problem, answer, elapsed, it.HintsUsed())
	a.Timestamp = s.now().UTC()
	it.Answers = append(it.Answers, a)
	if !a.IsCorrect {
		d := diagnosis.Classify(&diagnosis.Input{
			Problem:      &it.Problem,
			Answer:       answer,
			ResponseTime: elapsed,
			Accuracy:     s.firstTryAccuracy(it),
			Attempt:      len(it.Answers),
			HintsUsed:    a.HintsUsed,
		})
		it.Diagnoses = append(it.Diagnoses, d)
	}
	s.log.Debug("answer submitted",
		"problem_id", problemID,
		"correct", a.IsCorrect,
		"hints_used", a.HintsUsed,
		"attempt", len(it.Answers))
	return a, nil
}

// firstTryAccuracy is the share of answered problems, other than skip, that
// were right on the first attempt. Must be called with s.mu held.
func (s *Session) firstTryAccuracy(skip *Item) float64 {
	var answered, right int
	for _, it := range s.items {
		if it == skip || len(it.Answers) == 0 {
			continue
		}
		answered++
		if it.Answers[0].IsCorrect {
			right++
		}
	}
	if answered == 0 {
		return 0
	}
	return float64(right) / float64(answered)
}

// RequestHint returns the next hint for problemID. The tutor is asked when
// one is configured; if it is absent or fails a canned hint is returned
// instead. Each problem gets at most Lesson.MaxHints hints.
func (s *Session) RequestHint(ctx context.Context, problemID string) (*tutor.Hint, error) {
	s.mu.Lock()
	it, err := s.item(problemID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !it.HintsEnabled {
		s.mu.Unlock()
		return nil, ErrHintsDisabled
	}
	if it.HintsUsed() >= s.Lesson.MaxHints() {
		s.mu.Unlock()
		return nil, ErrHintLimit
	}
	level := it.HintsUsed() + 1
	tc := s.tutorContext(it)
	t := s.tutor
	s.mu.Unlock()

	var h *tutor.Hint
	if t != nil {
		h, err = t.GenerateHint(llm.WithStudent(ctx, s.Student.ID), tc, level)
		if err != nil {
			s.log.Warn("tutor hint failed, using fallback", "problem_id", problemID, "error", err)
			h = nil
		}
	}
	if h == nil {
		h = tutor.FallbackHint(tc.Problem, level)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent request may have used the last slot while the tutor ran.
	if it.HintsUsed() >= s.Lesson.MaxHints() {
		return nil, ErrHintLimit
	}
	it.Hints = append(it.Hints, *h)
	return h, nil
}

// Feedback explains the latest answer to problemID. Correctness always comes
// from the recorded answer. Without a tutor, or when it fails, the feedback
// text is the canned encouragement.
func (s *Session) Feedback(ctx context.Context, problemID string) (*tutor.Feedback, error) {
	s.mu.Lock()
	it, err := s.item(problemID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	last := it.Last()
	if last == nil {
		s.mu.Unlock()
		return nil, &UnknownProblemError{ProblemID: problemID}
	}
	answer := *last
	nudge := ""
	if d := it.LastDiagnosis(); d != nil && !answer.IsCorrect {
		nudge = diagnosis.Nudge(d.Category)
	}
	tc := s.tutorContext(it)
	t := s.tutor
	s.mu.Unlock()

	if t != nil {
		fb, err := t.AssessAnswer(llm.WithStudent(ctx, s.Student.ID), tc, answer.StudentAnswer)
		if err == nil {
			return fb, nil
		}
		s.log.Warn("tutor feedback failed, using fallback", "problem_id", problemID, "error", err)
	}
	msg := tutor.Encouragement(answer.IsCorrect, answer.HintsUsed)
	fb := &tutor.Feedback{
		IsCorrect:     answer.IsCorrect,
		Text:          msg,
		Encouragement: msg,
		NextAction:    tutor.NextRetry,
	}
	if answer.IsCorrect {
		fb.NextAction = tutor.NextContinue
		if tc.Problem.Explanation != "" {
			fb.Text = tc.Problem.Explanation
		}
	} else if nudge != "" {
		fb.Text = nudge
	}
	return fb, nil
}

// tutorContext must be called with s.mu held.
func (s *Session) tutorContext(it *Item) tutor.Context {
	prev := it.Answers
	if len(prev) > maxPreviousAttempts {
		prev = prev[len(prev)-maxPreviousAttempts:]
	}
	return tutor.Context{
		Problem:          it.Problem,
		PreviousAttempts: append([]curriculum.Answer(nil), prev...),
		StudentAge:       s.Student.Age,
		StudentGrade:     s.Student.Grade,
		Topic:            s.Lesson.Title,
	}
}
