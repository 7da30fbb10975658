package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultRecentSessions = 10

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) CreateSession(ctx context.Context, s *LearningSession) error {
	if s.StudentID == "" || s.LessonID == "" {
		return fmt.Errorf("session requires student and lesson")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO learning_sessions
		(id, student_id, lesson_id, subject, topic, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.StudentID, s.LessonID, s.Subject, s.Topic, formatTime(s.StartedAt))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// CompleteSession stamps the completion time and stores the result.
func (r *sessionRepo) CompleteSession(ctx context.Context, id string, res SessionResult) (*LearningSession, error) {
	out, err := r.db.ExecContext(ctx, `UPDATE learning_sessions SET
		completed_at = ?, time_spent_seconds = ?, accuracy = ?, problems_attempted = ?,
		problems_correct = ?, struggle_detected = ?, ai_hints_used = ?
		WHERE id = ?`,
		formatTime(time.Now()), res.TimeSpentSeconds, res.Accuracy, res.ProblemsAttempted,
		res.ProblemsCorrect, boolInt(res.StruggleDetected), res.AIHintsUsed, id)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return r.GetSession(ctx, id)
}

const sessionColumns = `id, student_id, lesson_id, subject, topic, started_at, completed_at,
	time_spent_seconds, accuracy, problems_attempted, problems_correct, struggle_detected, ai_hints_used`

func (r *sessionRepo) GetSession(ctx context.Context, id string) (*LearningSession, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM learning_sessions WHERE id = ?", id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *sessionRepo) RecentSessions(ctx context.Context, studentID string, limit int) ([]LearningSession, error) {
	if limit <= 0 {
		limit = defaultRecentSessions
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+sessionColumns+
		" FROM learning_sessions WHERE student_id = ? ORDER BY started_at DESC LIMIT ?", studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	defer rows.Close()

	var out []LearningSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSession(sc rowScanner) (*LearningSession, error) {
	var (
		s         LearningSession
		started   string
		completed sql.NullString
		struggle  int
	)
	err := sc.Scan(&s.ID, &s.StudentID, &s.LessonID, &s.Subject, &s.Topic, &started, &completed,
		&s.TimeSpentSeconds, &s.Accuracy, &s.ProblemsAttempted, &s.ProblemsCorrect, &struggle, &s.AIHintsUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.StruggleDetected = struggle != 0
	if s.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		s.CompletedAt = &t
	}
	return &s, nil
}
