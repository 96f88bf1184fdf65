package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/burnup/internal/db"
	"github.com/alexanderramin/burnup/internal/domain"
)

// SQLitePlanRepo implements PlanRepo over a db.DBTX.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(dbtx db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: dbtx}
}

func (r *SQLitePlanRepo) WriteInitial(ctx context.Context, projectName string, points []domain.PlanPoint) error {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_points WHERE project_name = ? AND kind = ?`,
		projectName, string(domain.PlanInitial),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking initial plan: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("project %q: %w", projectName, ErrPlanAlreadySet)
	}
	return r.insertPoints(ctx, projectName, domain.PlanInitial, points)
}

func (r *SQLitePlanRepo) ReplaceCurrent(ctx context.Context, projectName string, points []domain.PlanPoint) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM plan_points WHERE project_name = ? AND kind = ?`,
		projectName, string(domain.PlanCurrent)); err != nil {
		return fmt.Errorf("clearing current plan: %w", err)
	}
	return r.insertPoints(ctx, projectName, domain.PlanCurrent, points)
}

func (r *SQLitePlanRepo) ReadPlan(ctx context.Context, projectName string, kind domain.PlanKind) ([]domain.PlanPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, planned_progress FROM plan_points
		 WHERE project_name = ? AND kind = ?
		 ORDER BY date`,
		projectName, string(kind))
	if err != nil {
		return nil, fmt.Errorf("reading %s plan: %w", kind, err)
	}
	defer rows.Close()

	var points []domain.PlanPoint
	for rows.Next() {
		p := domain.PlanPoint{ProjectName: projectName, Kind: kind}
		var dateStr string
		if err := rows.Scan(&dateStr, &p.PlannedProgress); err != nil {
			return nil, fmt.Errorf("scanning plan point: %w", err)
		}
		p.Date, err = time.Parse(domain.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing plan point date: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan points: %w", err)
	}
	return points, nil
}

func (r *SQLitePlanRepo) insertPoints(ctx context.Context, projectName string, kind domain.PlanKind, points []domain.PlanPoint) error {
	for _, p := range points {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO plan_points (project_name, kind, date, planned_progress)
			 VALUES (?, ?, ?, ?)`,
			projectName, string(kind),
			domain.Day(p.Date).Format(domain.DateLayout),
			p.PlannedProgress); err != nil {
			return fmt.Errorf("inserting %s plan point %s: %w",
				kind, p.Date.Format(domain.DateLayout), err)
		}
	}
	return nil
}
