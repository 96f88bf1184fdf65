package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// One row per (project, task, date) progress sample. Past-dated rows
	// are immutable; the UNIQUE key is what makes the daily upsert
	// idempotent.
	`CREATE TABLE IF NOT EXISTS progress_records (
		project_name    TEXT NOT NULL,
		task_name       TEXT NOT NULL,
		record_date     TEXT NOT NULL,
		actual_progress REAL NOT NULL CHECK(actual_progress >= 0.0 AND actual_progress <= 1.0),
		assignee        TEXT NOT NULL DEFAULT '',
		start_date      TEXT,
		end_date        TEXT,
		status          TEXT NOT NULL DEFAULT '',
		show_label      INTEGER NOT NULL DEFAULT 1,
		is_backfilled   INTEGER NOT NULL DEFAULT 0,
		recorded_at     TEXT NOT NULL,
		PRIMARY KEY (project_name, task_name, record_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_progress_project_date ON progress_records(project_name, record_date)`,

	`CREATE TABLE IF NOT EXISTS plan_points (
		project_name     TEXT NOT NULL,
		kind             TEXT NOT NULL CHECK(kind IN ('initial','current')),
		date             TEXT NOT NULL,
		planned_progress REAL NOT NULL CHECK(planned_progress >= 0.0 AND planned_progress <= 1.0),
		PRIMARY KEY (project_name, kind, date)
	)`,

	// Audit trail of rejected attempts to mutate past records. Rows are
	// only ever appended.
	`CREATE TABLE IF NOT EXISTS violation_log (
		id           TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		task_name    TEXT NOT NULL,
		record_date  TEXT NOT NULL,
		attempted    REAL NOT NULL,
		stored       REAL NOT NULL,
		reason       TEXT NOT NULL,
		logged_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_violation_project ON violation_log(project_name)`,
}
