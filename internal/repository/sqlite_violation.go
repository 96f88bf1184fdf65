package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/burnup/internal/db"
	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/google/uuid"
)

// SQLiteViolationRepo implements ViolationRepo over a db.DBTX.
type SQLiteViolationRepo struct {
	db db.DBTX
}

// NewSQLiteViolationRepo creates a new SQLiteViolationRepo.
func NewSQLiteViolationRepo(dbtx db.DBTX) *SQLiteViolationRepo {
	return &SQLiteViolationRepo{db: dbtx}
}

func (r *SQLiteViolationRepo) Append(ctx context.Context, v *Violation) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.LoggedAt.IsZero() {
		v.LoggedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO violation_log (id, project_name, task_name, record_date, attempted, stored, reason, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.ProjectName,
		v.TaskName,
		domain.Day(v.RecordDate).Format(domain.DateLayout),
		v.Attempted,
		v.Stored,
		v.Reason,
		v.LoggedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending violation: %w", err)
	}
	return nil
}

func (r *SQLiteViolationRepo) CountByProject(ctx context.Context, projectName string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM violation_log WHERE project_name = ?`, projectName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting violations: %w", err)
	}
	return count, nil
}

func (r *SQLiteViolationRepo) ListRecent(ctx context.Context, projectName string, limit int) ([]Violation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_name, task_name, record_date, attempted, stored, reason, logged_at
		 FROM violation_log
		 WHERE project_name = ?
		 ORDER BY logged_at DESC
		 LIMIT ?`, projectName, limit)
	if err != nil {
		return nil, fmt.Errorf("listing violations: %w", err)
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var v Violation
		var dateStr, loggedStr string
		if err := rows.Scan(&v.ID, &v.ProjectName, &v.TaskName, &dateStr, &v.Attempted, &v.Stored, &v.Reason, &loggedStr); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}
		v.RecordDate, err = time.Parse(domain.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing violation date: %w", err)
		}
		v.LoggedAt, err = time.Parse(time.RFC3339, loggedStr)
		if err != nil {
			return nil, fmt.Errorf("parsing violation timestamp: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating violations: %w", err)
	}
	return out, nil
}
