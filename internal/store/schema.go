package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS families (
		id                TEXT PRIMARY KEY,
		parent_email      TEXT NOT NULL UNIQUE,
		subscription_tier TEXT NOT NULL DEFAULT 'free'
			CHECK (subscription_tier IN ('free', 'family', 'coop')),
		state             TEXT NOT NULL DEFAULT '',
		privacy_mode      TEXT NOT NULL DEFAULT 'local_only'
			CHECK (privacy_mode IN ('local_only', 'cloud_sync')),
		created_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id                   TEXT PRIMARY KEY,
		family_id            TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		first_name           TEXT NOT NULL,
		age                  INTEGER NOT NULL,
		grade_level          INTEGER NOT NULL,
		learning_preferences TEXT NOT NULL DEFAULT '{}',
		avatar_color         TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_family ON students(family_id)`,
	`CREATE TABLE IF NOT EXISTS learning_sessions (
		id                 TEXT PRIMARY KEY,
		student_id         TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		lesson_id          TEXT NOT NULL,
		subject            TEXT NOT NULL,
		topic              TEXT NOT NULL DEFAULT '',
		started_at         TEXT NOT NULL,
		completed_at       TEXT,
		time_spent_seconds INTEGER NOT NULL DEFAULT 0,
		accuracy           REAL NOT NULL DEFAULT 0,
		problems_attempted INTEGER NOT NULL DEFAULT 0,
		problems_correct   INTEGER NOT NULL DEFAULT 0,
		struggle_detected  INTEGER NOT NULL DEFAULT 0,
		ai_hints_used      INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_student ON learning_sessions(student_id, started_at)`,
	`CREATE TABLE IF NOT EXISTS progress_nodes (
		id               TEXT PRIMARY KEY,
		student_id       TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		concept          TEXT NOT NULL,
		subject          TEXT NOT NULL,
		mastery_level    REAL NOT NULL DEFAULT 0 CHECK (mastery_level BETWEEN 0 AND 1),
		last_practiced   TEXT NOT NULL,
		total_attempts   INTEGER NOT NULL DEFAULT 0,
		total_correct    INTEGER NOT NULL DEFAULT 0,
		difficulty_level REAL NOT NULL DEFAULT 0.5,
		UNIQUE (student_id, concept)
	)`,
	`CREATE TABLE IF NOT EXISTS compliance_logs (
		id               TEXT PRIMARY KEY,
		student_id       TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		log_date         TEXT NOT NULL,
		subjects_studied TEXT NOT NULL DEFAULT '[]',
		total_minutes    INTEGER NOT NULL DEFAULT 0,
		notes            TEXT NOT NULL DEFAULT '',
		UNIQUE (student_id, log_date)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     TEXT NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL DEFAULT '',
		student_id    TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_student ON llm_request_events(student_id)`,
	`CREATE TABLE IF NOT EXISTS sequences (
		stream   TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL
	)`,
}

// migrate creates every table that does not exist yet.
func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return tx.Commit()
}
