package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const defaultNodeDifficulty = 0.5

type progressRepo struct {
	db *sql.DB
}

// GetOrCreateProgressNode returns the student's node for concept, creating
// an unpracticed one when none exists.
func (r *progressRepo) GetOrCreateProgressNode(ctx context.Context, studentID, concept, subject string) (*ProgressNode, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO progress_nodes
		(id, student_id, concept, subject, mastery_level, last_practiced, difficulty_level)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT (student_id, concept) DO NOTHING`,
		uuid.NewString(), studentID, concept, subject, formatTime(time.Now()), defaultNodeDifficulty)
	if err != nil {
		return nil, fmt.Errorf("create progress node: %w", err)
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+progressColumns+
		" FROM progress_nodes WHERE student_id = ? AND concept = ?", studentID, concept)
	return scanProgress(row)
}

// UpdateProgress overwrites the node's counters and sets LastPracticed to now.
func (r *progressRepo) UpdateProgress(ctx context.Context, id string, u ProgressUpdate) (*ProgressNode, error) {
	if u.MasteryLevel < 0 || u.MasteryLevel > 1 {
		return nil, fmt.Errorf("mastery level %v out of range 0-1", u.MasteryLevel)
	}
	out, err := r.db.ExecContext(ctx, `UPDATE progress_nodes SET
		mastery_level = ?, total_attempts = ?, total_correct = ?, difficulty_level = ?, last_practiced = ?
		WHERE id = ?`,
		u.MasteryLevel, u.TotalAttempts, u.TotalCorrect, u.DifficultyLevel, formatTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("progress node %s: %w", id, ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+progressColumns+" FROM progress_nodes WHERE id = ?", id)
	return scanProgress(row)
}

func (r *progressRepo) StudentProgress(ctx context.Context, studentID, subject string) ([]ProgressNode, error) {
	q := "SELECT " + progressColumns + " FROM progress_nodes WHERE student_id = ?"
	args := []any{studentID}
	if subject != "" {
		q += " AND subject = ?"
		args = append(args, subject)
	}
	q += " ORDER BY mastery_level DESC, concept"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("student progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressNode
	for rows.Next() {
		n, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MasteredConcepts lists concepts with mastery at or above threshold, sorted.
func (r *progressRepo) MasteredConcepts(ctx context.Context, studentID string, threshold float64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT concept FROM progress_nodes WHERE student_id = ? AND mastery_level >= ?", studentID, threshold)
	if err != nil {
		return nil, fmt.Errorf("mastered concepts: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, rows.Err()
}

const progressColumns = `id, student_id, concept, subject, mastery_level, last_practiced,
	total_attempts, total_correct, difficulty_level`

func scanProgress(sc rowScanner) (*ProgressNode, error) {
	var (
		n    ProgressNode
		last string
	)
	err := sc.Scan(&n.ID, &n.StudentID, &n.Concept, &n.Subject, &n.MasteryLevel, &last,
		&n.TotalAttempts, &n.TotalCorrect, &n.DifficultyLevel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan progress node: %w", err)
	}
	if n.LastPracticed, err = parseTime(last); err != nil {
		return nil, err
	}
	return &n, nil
}

type complianceRepo struct {
	db *sql.DB
}

func (r *complianceRepo) LogDailyCompliance(ctx context.Context, l *ComplianceLog) error {
	if l.StudentID == "" {
		return fmt.Errorf("compliance log requires a student")
	}
	if l.TotalMinutes < 0 {
		return fmt.Errorf("total minutes must not be negative")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LogDate.IsZero() {
		l.LogDate = time.Now()
	}
	l.LogDate = dateOnly(l.LogDate)
	if l.SubjectsStudied == nil {
		l.SubjectsStudied = []string{}
	}
	subjects, err := json.Marshal(l.SubjectsStudied)
	if err != nil {
		return fmt.Errorf("marshal subjects: %w", err)
	}

	// The existing row keeps its id on conflict.
	err = r.db.QueryRowContext(ctx, `INSERT INTO compliance_logs
		(id, student_id, log_date, subjects_studied, total_minutes, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, log_date) DO UPDATE SET
			subjects_studied = excluded.subjects_studied,
			total_minutes = excluded.total_minutes,
			notes = excluded.notes
		RETURNING id`,
		l.ID, l.StudentID, l.LogDate.Format(dateLayout), string(subjects), l.TotalMinutes, l.Notes,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("log compliance: %w", err)
	}
	return nil
}

// ComplianceSummary totals logs with from <= date <= to (calendar days).
func (r *complianceRepo) ComplianceSummary(ctx context.Context, studentID string, from, to time.Time) (*ComplianceSummary, error) {
	from, to = dateOnly(from), dateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("summary range ends before it starts")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, log_date, subjects_studied, total_minutes, notes
		FROM compliance_logs WHERE student_id = ? AND log_date BETWEEN ? AND ? ORDER BY log_date`,
		studentID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("compliance summary: %w", err)
	}
	defer rows.Close()

	sum := &ComplianceSummary{StudentID: studentID, From: from, To: to, Subjects: []string{}}
	seen := map[string]bool{}
	for rows.Next() {
		var (
			l        ComplianceLog
			date     string
			subjects string
		)
		if err := rows.Scan(&l.ID, &date, &subjects, &l.TotalMinutes, &l.Notes); err != nil {
			return nil, fmt.Errorf("scan compliance log: %w", err)
		}
		l.StudentID = studentID
		if l.LogDate, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse log date %q: %w", date, err)
		}
		if err := json.Unmarshal([]byte(subjects), &l.SubjectsStudied); err != nil {
			return nil, fmt.Errorf("unmarshal subjects: %w", err)
		}
		for _, s := range l.SubjectsStudied {
			if !seen[s] {
				seen[s] = true
				sum.Subjects = append(sum.Subjects, s)
			}
		}
		sum.Days++
		sum.TotalMinutes += l.TotalMinutes
		sum.Logs = append(sum.Logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(sum.Subjects)
	if sum.Days > 0 {
		sum.MinutesPerDay = float64(sum.TotalMinutes) / float64(sum.Days)
	}
	return sum, nil
}
