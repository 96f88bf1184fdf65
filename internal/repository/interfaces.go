package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// RangeOptions narrows a QueryRange call. Zero values mean "no bound".
type RangeOptions struct {
	TaskName string
	From     time.Time
	To       time.Time
}

// ProtectionStats summarizes the append-only history of one project.
type ProtectionStats struct {
	TotalRecords    int
	BackfilledCount int
	DailyCount      int
	EarliestDate    time.Time
	LatestDate      time.Time
	ViolationCount  int
}

// DayStats is one row of the per-day protection breakdown.
type DayStats struct {
	Date            time.Time
	TaskCount       int
	BackfilledCount int
	DailyCount      int
	LabeledCount    int
}

// SeriesPoint is one (date, mean progress) sample of the actual curve.
type SeriesPoint struct {
	Date     time.Time
	Progress float64
}

// ProgressRepo is the append-only ProgressRecord store. The immutability
// invariant is enforced here, at the storage boundary, not by caller
// discipline.
type ProgressRepo interface {
	// Upsert writes one record. A record whose date is strictly before
	// asOf may not change once stored: a differing re-write fails with
	// ErrImmutableHistory, an identical re-write succeeds silently.
	// Records dated asOf itself may be overwritten (idempotent daily
	// re-run).
	Upsert(ctx context.Context, rec *domain.ProgressRecord, asOf time.Time) error
	// QueryRange re-reads current state on every call and returns
	// records ordered by record_date ascending, then task name.
	QueryRange(ctx context.Context, projectName string, opts RangeOptions) ([]*domain.ProgressRecord, error)
	ExistsAny(ctx context.Context, projectName string) (bool, error)
	ProtectionStats(ctx context.Context, projectName string) (*ProtectionStats, error)
	DayBreakdown(ctx context.Context, projectName string) ([]DayStats, error)
	// ActualSeries aggregates the mean progress across tasks per day,
	// up to and including upTo.
	ActualSeries(ctx context.Context, projectName string, upTo time.Time) ([]SeriesPoint, error)
	// Anchors derives one annotation anchor per labeled task, attached
	// to the task's end date as of its latest record.
	Anchors(ctx context.Context, projectName string, from, to time.Time) ([]domain.TaskAnchor, error)
	// OverwriteTaskDates rewrites the stored schedule for every record
	// of one task and returns the number of affected rows.
	OverwriteTaskDates(ctx context.Context, projectName, taskName string, startDate, endDate time.Time) (int64, error)
}

// PlanRepo stores the two plan baselines.
type PlanRepo interface {
	// WriteInitial writes the frozen baseline; fails with
	// ErrPlanAlreadySet if any initial point exists for the project.
	WriteInitial(ctx context.Context, projectName string, points []domain.PlanPoint) error
	// ReplaceCurrent deletes and rewrites all current-plan points for
	// the project. Callers run it inside a unit of work so a stale
	// forecast never lingers next to a fresh one.
	ReplaceCurrent(ctx context.Context, projectName string, points []domain.PlanPoint) error
	ReadPlan(ctx context.Context, projectName string, kind domain.PlanKind) ([]domain.PlanPoint, error)
}

// Violation is one logged attempt to mutate an immutable past record.
type Violation struct {
	ID          string
	ProjectName string
	TaskName    string
	RecordDate  time.Time
	Attempted   float64
	Stored      float64
	Reason      string
	LoggedAt    time.Time
}

// ViolationRepo is the append-only audit trail of rejected writes.
type ViolationRepo interface {
	Append(ctx context.Context, v *Violation) error
	CountByProject(ctx context.Context, projectName string) (int, error)
	ListRecent(ctx context.Context, projectName string, limit int) ([]Violation, error)
}
