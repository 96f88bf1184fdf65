package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/burnup/internal/db"
	"github.com/alexanderramin/burnup/internal/domain"
)

// progressEpsilon is the tolerance below which two stored progress
// values are considered identical (idempotent retry, not a mutation).
const progressEpsilon = 1e-9

// progressColumns is the canonical SELECT column list for progress_records.
const progressColumns = `project_name, task_name, record_date, actual_progress,
		assignee, start_date, end_date, status, show_label, is_backfilled, recorded_at`

// SQLiteProgressRepo implements ProgressRepo over a db.DBTX, so the
// same repository type works against the raw database or inside a
// transaction opened by the unit of work.
type SQLiteProgressRepo struct {
	db db.DBTX
}

// NewSQLiteProgressRepo creates a new SQLiteProgressRepo.
func NewSQLiteProgressRepo(dbtx db.DBTX) *SQLiteProgressRepo {
	return &SQLiteProgressRepo{db: dbtx}
}

func (r *SQLiteProgressRepo) Upsert(ctx context.Context, rec *domain.ProgressRecord, asOf time.Time) error {
	recDay := domain.Day(rec.RecordDate)
	asOfDay := domain.Day(asOf)

	// The read-check-write sequence runs inside the caller's
	// transaction when invoked through the unit of work, which is what
	// makes the check safe against a concurrent writer.
	var stored float64
	var storedBackfilled int
	err := r.db.QueryRowContext(ctx,
		`SELECT actual_progress, is_backfilled FROM progress_records
		 WHERE project_name = ? AND task_name = ? AND record_date = ?`,
		rec.ProjectName, rec.TaskName, recDay.Format(domain.DateLayout),
	).Scan(&stored, &storedBackfilled)

	switch {
	case err == sql.ErrNoRows:
		// No prior record for this key; fall through to the write.
	case err != nil:
		return fmt.Errorf("checking existing record: %w", err)
	case recDay.Before(asOfDay):
		if math.Abs(stored-rec.ActualProgress) <= progressEpsilon &&
			intToBool(storedBackfilled) == rec.IsBackfilled {
			return nil // identical re-write of history is a no-op
		}
		return fmt.Errorf("record %s: %w", rec.Key(), ErrImmutableHistory)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO progress_records (project_name, task_name, record_date, actual_progress,
			assignee, start_date, end_date, status, show_label, is_backfilled, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_name, task_name, record_date) DO UPDATE SET
			actual_progress = excluded.actual_progress,
			assignee        = excluded.assignee,
			start_date      = excluded.start_date,
			end_date        = excluded.end_date,
			status          = excluded.status,
			show_label      = excluded.show_label,
			is_backfilled   = excluded.is_backfilled,
			recorded_at     = excluded.recorded_at`,
		rec.ProjectName,
		rec.TaskName,
		recDay.Format(domain.DateLayout),
		rec.ActualProgress,
		rec.Assignee,
		nullableDateToString(rec.StartDate),
		nullableDateToString(rec.EndDate),
		rec.Status,
		boolToInt(rec.ShowLabel),
		boolToInt(rec.IsBackfilled),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting progress record %s: %w", rec.Key(), err)
	}
	return nil
}

func (r *SQLiteProgressRepo) QueryRange(ctx context.Context, projectName string, opts RangeOptions) ([]*domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress_records WHERE project_name = ?`
	args := []any{projectName}

	if opts.TaskName != "" {
		query += ` AND task_name = ?`
		args = append(args, opts.TaskName)
	}
	if !opts.From.IsZero() {
		query += ` AND record_date >= ?`
		args = append(args, domain.Day(opts.From).Format(domain.DateLayout))
	}
	if !opts.To.IsZero() {
		query += ` AND record_date <= ?`
		args = append(args, domain.Day(opts.To).Format(domain.DateLayout))
	}
	query += ` ORDER BY record_date, task_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying progress range: %w", err)
	}
	defer rows.Close()
	return r.scanRecords(rows)
}

func (r *SQLiteProgressRepo) ExistsAny(ctx context.Context, projectName string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM progress_records WHERE project_name = ?`, projectName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting progress records: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteProgressRepo) ProtectionStats(ctx context.Context, projectName string) (*ProtectionStats, error) {
	var stats ProtectionStats
	var earliest, latest sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_backfilled = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_backfilled = 0 THEN 1 ELSE 0 END), 0),
			MIN(record_date), MAX(record_date)
		 FROM progress_records WHERE project_name = ?`, projectName,
	).Scan(&stats.TotalRecords, &stats.BackfilledCount, &stats.DailyCount, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("reading protection stats: %w", err)
	}
	stats.EarliestDate = parseNullableDate(earliest)
	stats.LatestDate = parseNullableDate(latest)
	return &stats, nil
}

func (r *SQLiteProgressRepo) DayBreakdown(ctx context.Context, projectName string) ([]DayStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT record_date,
			COUNT(*),
			SUM(CASE WHEN is_backfilled = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN is_backfilled = 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN show_label = 1 THEN 1 ELSE 0 END)
		 FROM progress_records
		 WHERE project_name = ?
		 GROUP BY record_date
		 ORDER BY record_date`, projectName)
	if err != nil {
		return nil, fmt.Errorf("reading day breakdown: %w", err)
	}
	defer rows.Close()

	var out []DayStats
	for rows.Next() {
		var d DayStats
		var dateStr string
		if err := rows.Scan(&dateStr, &d.TaskCount, &d.BackfilledCount, &d.DailyCount, &d.LabeledCount); err != nil {
			return nil, fmt.Errorf("scanning day breakdown row: %w", err)
		}
		d.Date, err = time.Parse(domain.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing record_date: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating day breakdown: %w", err)
	}
	return out, nil
}

func (r *SQLiteProgressRepo) ActualSeries(ctx context.Context, projectName string, upTo time.Time) ([]SeriesPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT record_date, AVG(actual_progress)
		 FROM progress_records
		 WHERE project_name = ? AND record_date <= ?
		 GROUP BY record_date
		 ORDER BY record_date`,
		projectName, domain.Day(upTo).Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("reading actual series: %w", err)
	}
	defer rows.Close()

	var out []SeriesPoint
	for rows.Next() {
		var p SeriesPoint
		var dateStr string
		if err := rows.Scan(&dateStr, &p.Progress); err != nil {
			return nil, fmt.Errorf("scanning series point: %w", err)
		}
		p.Date, err = time.Parse(domain.DateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing record_date: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actual series: %w", err)
	}
	return out, nil
}

func (r *SQLiteProgressRepo) Anchors(ctx context.Context, projectName string, from, to time.Time) ([]domain.TaskAnchor, error) {
	// The anchor attaches to the task's end date as of its most recent
	// record, so a corrected schedule moves the label with it.
	query := `SELECT task_name, end_date, show_label FROM progress_records p
		 WHERE project_name = ? AND end_date IS NOT NULL
		   AND record_date = (
			SELECT MAX(record_date) FROM progress_records
			WHERE project_name = p.project_name AND task_name = p.task_name
		   )`
	args := []any{projectName}
	if !from.IsZero() {
		query += ` AND end_date >= ?`
		args = append(args, domain.Day(from).Format(domain.DateLayout))
	}
	if !to.IsZero() {
		query += ` AND end_date <= ?`
		args = append(args, domain.Day(to).Format(domain.DateLayout))
	}
	query += ` ORDER BY end_date, task_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading task anchors: %w", err)
	}
	defer rows.Close()

	var out []domain.TaskAnchor
	for rows.Next() {
		var taskName string
		var endDate sql.NullString
		var showLabel int
		if err := rows.Scan(&taskName, &endDate, &showLabel); err != nil {
			return nil, fmt.Errorf("scanning anchor row: %w", err)
		}
		out = append(out, domain.TaskAnchor{
			TaskName:    taskName,
			AnchorDate:  parseNullableDate(endDate),
			DisplayText: fmt.Sprintf("%s - %s", projectName, taskName),
			ShowLabel:   intToBool(showLabel),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating anchors: %w", err)
	}
	return out, nil
}

func (r *SQLiteProgressRepo) OverwriteTaskDates(ctx context.Context, projectName, taskName string, startDate, endDate time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE progress_records SET start_date = ?, end_date = ?
		 WHERE project_name = ? AND task_name = ?`,
		domain.Day(startDate).Format(domain.DateLayout),
		domain.Day(endDate).Format(domain.DateLayout),
		projectName, taskName)
	if err != nil {
		return 0, fmt.Errorf("overwriting task dates: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}

// scanRecords scans multiple progress records from *sql.Rows.
func (r *SQLiteProgressRepo) scanRecords(rows *sql.Rows) ([]*domain.ProgressRecord, error) {
	var records []*domain.ProgressRecord
	for rows.Next() {
		var rec domain.ProgressRecord
		var recordDateStr, recordedAtStr string
		var startDate, endDate sql.NullString
		var showLabel, isBackfilled int

		err := rows.Scan(
			&rec.ProjectName, &rec.TaskName, &recordDateStr, &rec.ActualProgress,
			&rec.Assignee, &startDate, &endDate, &rec.Status,
			&showLabel, &isBackfilled, &recordedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning progress record: %w", err)
		}

		rec.RecordDate, err = time.Parse(domain.DateLayout, recordDateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing record_date: %w", err)
		}
		rec.RecordedAt, err = time.Parse(time.RFC3339, recordedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		rec.StartDate = parseNullableDate(startDate)
		rec.EndDate = parseNullableDate(endDate)
		rec.ShowLabel = intToBool(showLabel)
		rec.IsBackfilled = intToBool(isBackfilled)

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress records: %w", err)
	}
	return records, nil
}
