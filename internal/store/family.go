package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type familyRepo struct {
	db *sql.DB
}

// CreateFamily inserts f, filling ID, defaults and CreatedAt when unset.
func (r *familyRepo) CreateFamily(ctx context.Context, f *Family) error {
	if strings.TrimSpace(f.ParentEmail) == "" {
		return fmt.Errorf("parent email is required")
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.SubscriptionTier == "" {
		f.SubscriptionTier = TierFree
	}
	if f.PrivacyMode == "" {
		f.PrivacyMode = PrivacyLocalOnly
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO families
		(id, parent_email, subscription_tier, state, privacy_mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.ParentEmail, f.SubscriptionTier, f.State, f.PrivacyMode, formatTime(f.CreatedAt))
	if err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	return nil
}

const familyColumns = `id, parent_email, subscription_tier, state, privacy_mode, created_at`

func (r *familyRepo) GetFamily(ctx context.Context, id string) (*Family, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+familyColumns+" FROM families WHERE id = ?", id)
	f, err := scanFamily(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("family %s: %w", id, ErrNotFound)
	}
	return f, err
}

func (r *familyRepo) ListFamilies(ctx context.Context) ([]Family, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+familyColumns+" FROM families ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var out []Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func scanFamily(s rowScanner) (*Family, error) {
	var (
		f       Family
		created string
	)
	if err := s.Scan(&f.ID, &f.ParentEmail, &f.SubscriptionTier, &f.State, &f.PrivacyMode, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan family: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = t
	return &f, nil
}

type studentRepo struct {
	db *sql.DB
}

func (r *studentRepo) CreateStudent(ctx context.Context, s *Student) error {
	if strings.TrimSpace(s.FirstName) == "" {
		return fmt.Errorf("student first name is required")
	}
	if s.GradeLevel < 0 || s.GradeLevel > 12 {
		return fmt.Errorf("grade level %d out of range 0-12", s.GradeLevel)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	prefs, err := json.Marshal(s.LearningPreferences)
	if err != nil {
		return fmt.Errorf("marshal learning preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO students
		(id, family_id, first_name, age, grade_level, learning_preferences, avatar_color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FamilyID, s.FirstName, s.Age, s.GradeLevel, string(prefs), s.AvatarColor, formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

const studentColumns = `id, family_id, first_name, age, grade_level, learning_preferences, avatar_color, created_at`

func (r *studentRepo) GetStudent(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *studentRepo) StudentsByFamily(ctx context.Context, familyID string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+studentColumns+" FROM students WHERE family_id = ? ORDER BY grade_level, first_name", familyID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanStudent(sc rowScanner) (*Student, error) {
	var (
		s       Student
		prefs   string
		created string
	)
	if err := sc.Scan(&s.ID, &s.FamilyID, &s.FirstName, &s.Age, &s.GradeLevel, &prefs, &s.AvatarColor, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan student: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &s.LearningPreferences); err != nil {
		return nil, fmt.Errorf("unmarshal learning preferences: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = t
	return &s, nil
}
