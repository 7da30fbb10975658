package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/problemgen"
	"github.com/kevinraymond/homeschool/internal/store"
)

// Recorder persists sessions: the learning session row, concept progress
// and the day's compliance log.
type Recorder struct {
	sessions   store.SessionRepo
	progress   store.ProgressRepo
	compliance store.ComplianceRepo
	log        *logger.Logger
}

// NewRecorder creates a Recorder. A nil log discards output.
func NewRecorder(sessions store.SessionRepo, progress store.ProgressRepo, compliance store.ComplianceRepo, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{sessions: sessions, progress: progress, compliance: compliance, log: log.With("component", "session")}
}

// Start creates the learning session row for student and builds the
// in-memory session under the same id.
func (r *Recorder) Start(ctx context.Context, student Student, lesson curriculum.Lesson, gen *problemgen.Generator, opts ...Option) (*Session, error) {
	row := &store.LearningSession{
		StudentID: student.ID,
		LessonID:  lesson.ID,
		Subject:   lesson.Subject,
		Topic:     lesson.Title,
	}
	if err := r.sessions.CreateSession(ctx, row); err != nil {
		return nil, err
	}
	opts = append(opts, WithID(row.ID), WithStudent(student))
	s, err := New(lesson, gen, opts...)
	if err != nil {
		return nil, err
	}
	s.StartTime = row.StartedAt
	r.log.Info("session started", "session_id", s.ID, "student_id", student.ID, "lesson_id", lesson.ID)
	return s, nil
}

// Outcome is what Finish wrote.
type Outcome struct {
	Session  *store.LearningSession
	Progress []store.ProgressNode
	Score    Score
}

// Finish ends s and records its result, concept progress and the minutes
// studied today.
func (r *Recorder) Finish(ctx context.Context, s *Session) (*Outcome, error) {
	s.End()
	res := s.Result()

	row, err := r.sessions.CompleteSession(ctx, s.ID, res)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Session: row, Score: s.Score()}

	for _, d := range s.ProgressUpdates() {
		node, err := r.progress.GetOrCreateProgressNode(ctx, s.Student.ID, d.Concept, d.Subject)
		if err != nil {
			return nil, fmt.Errorf("progress for %s: %w", d.Concept, err)
		}
		updated, err := r.progress.UpdateProgress(ctx, node.ID, d.Apply(*node))
		if err != nil {
			return nil, fmt.Errorf("progress for %s: %w", d.Concept, err)
		}
		out.Progress = append(out.Progress, *updated)
	}

	if err := r.logCompliance(ctx, s, res.TimeSpentSeconds); err != nil {
		return nil, err
	}

	r.log.Info("session completed",
		"session_id", s.ID,
		"accuracy", res.Accuracy,
		"attempted", res.ProblemsAttempted,
		"struggle", res.StruggleDetected,
		"score", out.Score.Percent)
	return out, nil
}

// logCompliance adds the session's minutes, rounded up, to the day's log.
func (r *Recorder) logCompliance(ctx context.Context, s *Session, seconds int) error {
	day := s.StartTime
	sum, err := r.compliance.ComplianceSummary(ctx, s.Student.ID, day, day)
	if err != nil {
		return err
	}
	l := &store.ComplianceLog{StudentID: s.Student.ID, LogDate: day}
	if len(sum.Logs) > 0 {
		l = &sum.Logs[0]
	}
	l.TotalMinutes += (seconds + 59) / 60
	if s.Lesson.Subject != "" && !slices.Contains(l.SubjectsStudied, s.Lesson.Subject) {
		l.SubjectsStudied = append(l.SubjectsStudied, s.Lesson.Subject)
	}
	return r.compliance.LogDailyCompliance(ctx, l)
}
