// Package history coordinates every write to the progress store. It is
// the only path that mutates progress_records and plan_points, and it
// runs each batch inside a single unit of work so interrupted runs
// leave no partial day behind.
package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/burnup/internal/db"
	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/plancurve"
	"github.com/alexanderramin/burnup/internal/repository"
)

// progressDelta is the minimum change in actual progress that counts
// as an update; anything smaller is treated as unchanged.
const progressDelta = 0.001

// Coordinator enforces the append-only history rules on top of the
// repositories. Reads go through the ambient repos; writes always run
// inside the unit of work with tx-scoped repos.
type Coordinator struct {
	uow        db.UnitOfWork
	progress   repository.ProgressRepo
	plans      repository.PlanRepo
	violations repository.ViolationRepo
}

func NewCoordinator(
	uow db.UnitOfWork,
	progress repository.ProgressRepo,
	plans repository.PlanRepo,
	violations repository.ViolationRepo,
) *Coordinator {
	return &Coordinator{
		uow:        uow,
		progress:   progress,
		plans:      plans,
		violations: violations,
	}
}

// Initialize seeds a project's history from its current task snapshot.
// It backfills a smooth synthetic series from the earliest task start
// to asOf, freezes the initial plan baseline derived from the task
// schedules, and writes the current plan as a copy of it. The whole
// batch is atomic: an invalid row or a write failure leaves the store
// untouched.
func (c *Coordinator) Initialize(ctx context.Context, projectName string, snapshot []*domain.ProgressRecord, asOf time.Time) (*InitReport, error) {
	asOf = domain.Day(asOf)
	if len(snapshot) == 0 {
		return nil, &ValidationError{Problems: []RowProblem{{Index: 0, Reason: "empty task snapshot"}}}
	}
	for _, rec := range snapshot {
		if rec.RecordDate.IsZero() {
			rec.RecordDate = asOf
		}
	}
	if problems := validateRows(projectName, snapshot); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	exists, err := c.progress.ExistsAny(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("checking existing history: %w", err)
	}
	if exists {
		return nil, &AlreadyInitializedError{ProjectName: projectName}
	}

	records := SmoothBackfill(snapshot, asOf)
	tasks := tasksFromRecords(snapshot)
	planStart, planEnd, ok := plancurve.Span(tasks)
	if !ok {
		return nil, &ValidationError{Problems: []RowProblem{{Index: 0, Reason: "no task carries a usable schedule"}}}
	}
	plan := planPoints(projectName, domain.PlanInitial, plancurve.Series(tasks, planStart, planEnd))
	current := planPoints(projectName, domain.PlanCurrent, plancurve.Series(tasks, planStart, planEnd))

	err = c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProgress := repository.NewSQLiteProgressRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)

		if err := writeRecords(ctx, txProgress, records, domain.WriteInitial, asOf); err != nil {
			return err
		}
		if err := txPlans.WriteInitial(ctx, projectName, plan); err != nil {
			return err
		}
		return txPlans.ReplaceCurrent(ctx, projectName, current)
	})
	if err != nil {
		return nil, err
	}

	return &InitReport{
		ProjectName: projectName,
		AsOf:        asOf,
		TaskCount:   len(snapshot),
		RecordCount: len(records),
		PlanPoints:  len(plan),
		From:        planStart,
		To:          planEnd,
	}, nil
}

// DailyUpdate writes the rows dated asOf and refreshes the current
// plan from the latest schedules, all in one transaction. Rows dated
// in the past are never written: each one is logged to the violation
// trail and reported, without failing the batch. Future-dated rows are
// ignored and counted. Invalid rows are reported and skipped.
func (c *Coordinator) DailyUpdate(ctx context.Context, projectName string, rows []*domain.ProgressRecord, asOf time.Time) (*UpdateReport, error) {
	asOf = domain.Day(asOf)

	exists, err := c.progress.ExistsAny(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("checking existing history: %w", err)
	}
	if !exists {
		return nil, &NotInitializedError{ProjectName: projectName}
	}

	report := &UpdateReport{ProjectName: projectName, BatchID: uuid.NewString(), AsOf: asOf}

	var today, past []*domain.ProgressRecord
	for i, rec := range rows {
		if rec.RecordDate.IsZero() {
			rec.RecordDate = asOf
		}
		if probs := validateRows(projectName, rows[i:i+1]); len(probs) > 0 {
			probs[0].Index = i
			report.Skipped = append(report.Skipped, probs[0])
			continue
		}
		day := domain.Day(rec.RecordDate)
		switch {
		case day.Equal(asOf):
			today = append(today, rec)
		case day.Before(asOf):
			past = append(past, rec)
		default:
			report.IgnoredFuture++
		}
	}

	existing, err := c.progress.QueryRange(ctx, projectName, repository.RangeOptions{From: asOf, To: asOf})
	if err != nil {
		return nil, fmt.Errorf("reading today's records: %w", err)
	}
	current := make(map[string]*domain.ProgressRecord, len(existing))
	for _, rec := range existing {
		current[rec.TaskName] = rec
	}

	err = c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProgress := repository.NewSQLiteProgressRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)
		txViolations := repository.NewSQLiteViolationRepo(tx)

		for _, rec := range past {
			v, err := c.logViolation(ctx, txProgress, txViolations, rec, asOf)
			if err != nil {
				return err
			}
			report.Violations = append(report.Violations, *v)
		}

		for _, rec := range today {
			if prev, ok := current[rec.TaskName]; ok &&
				math.Abs(prev.ActualProgress-rec.ActualProgress) <= progressDelta {
				report.Unchanged++
				continue
			}
			if err := writeRecords(ctx, txProgress, []*domain.ProgressRecord{rec}, domain.WriteDaily, asOf); err != nil {
				return err
			}
			report.Updated++
		}

		if len(today) > 0 {
			// The current plan covers every task on record, not just
			// the ones this batch touched: a task whose row was
			// skipped or rejected keeps its stored schedule.
			stored, err := txProgress.QueryRange(ctx, projectName, repository.RangeOptions{})
			if err != nil {
				return fmt.Errorf("reading stored schedules: %w", err)
			}
			tasks := latestTasks(stored)
			start, end, ok := plancurve.Span(tasks)
			if !ok {
				return nil
			}
			points := planPoints(projectName, domain.PlanCurrent, plancurve.Series(tasks, start, end))
			if err := txPlans.ReplaceCurrent(ctx, projectName, points); err != nil {
				return err
			}
			report.PlanReplaced = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// writeRecords pushes a batch to the store under an explicit write
// mode. The initial load may write any date up to asOf; daily writes
// are always live observations, never backfill.
func writeRecords(ctx context.Context, repo repository.ProgressRepo, records []*domain.ProgressRecord, mode domain.WriteMode, asOf time.Time) error {
	for _, rec := range records {
		switch mode {
		case domain.WriteInitial:
			if domain.Day(rec.RecordDate).After(asOf) {
				return fmt.Errorf("backfill row %s is dated after %s",
					rec.Key(), asOf.Format(domain.DateLayout))
			}
		case domain.WriteDaily:
			rec.IsBackfilled = false
		}
		if err := repo.Upsert(ctx, rec, asOf); err != nil {
			return fmt.Errorf("writing %s: %w", rec.Key(), err)
		}
	}
	return nil
}

// logViolation records one rejected past-dated write in the audit
// trail, capturing the stored value it tried to replace.
func (c *Coordinator) logViolation(ctx context.Context, progress repository.ProgressRepo, violations repository.ViolationRepo, rec *domain.ProgressRecord, asOf time.Time) (*repository.Violation, error) {
	stored := 0.0
	existing, err := progress.QueryRange(ctx, rec.ProjectName, repository.RangeOptions{
		TaskName: rec.TaskName,
		From:     rec.RecordDate,
		To:       rec.RecordDate,
	})
	if err != nil {
		return nil, fmt.Errorf("reading stored record for %s: %w", rec.Key(), err)
	}
	if len(existing) > 0 {
		stored = existing[0].ActualProgress
	}

	v := &repository.Violation{
		ProjectName: rec.ProjectName,
		TaskName:    rec.TaskName,
		RecordDate:  domain.Day(rec.RecordDate),
		Attempted:   rec.ActualProgress,
		Stored:      stored,
		Reason: fmt.Sprintf("record date %s is before %s",
			rec.RecordDate.Format(domain.DateLayout), asOf.Format(domain.DateLayout)),
	}
	if err := violations.Append(ctx, v); err != nil {
		return nil, fmt.Errorf("logging violation for %s: %w", rec.Key(), err)
	}
	return v, nil
}

// ProtectionStatus assembles the protection overview for one project.
func (c *Coordinator) ProtectionStatus(ctx context.Context, projectName string) (*Status, error) {
	stats, err := c.progress.ProtectionStats(ctx, projectName)
	if err != nil {
		return nil, err
	}
	days, err := c.progress.DayBreakdown(ctx, projectName)
	if err != nil {
		return nil, err
	}
	count, err := c.violations.CountByProject(ctx, projectName)
	if err != nil {
		return nil, err
	}
	recent, err := c.violations.ListRecent(ctx, projectName, 10)
	if err != nil {
		return nil, err
	}
	stats.ViolationCount = count

	return &Status{
		ProjectName: projectName,
		Stats:       *stats,
		Days:        days,
		Violations:  recent,
	}, nil
}

// FixTaskDates rewrites the stored schedule of one task across its
// whole history. This is the only sanctioned mutation of stored rows:
// it touches schedule columns, never progress values.
func (c *Coordinator) FixTaskDates(ctx context.Context, projectName, taskName string, start, end time.Time) (int64, error) {
	start, end = domain.Day(start), domain.Day(end)
	if end.Before(start) {
		return 0, &InvalidRangeError{Start: start, End: end}
	}

	var affected int64
	err := c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProgress := repository.NewSQLiteProgressRepo(tx)
		n, err := txProgress.OverwriteTaskDates(ctx, projectName, taskName, start, end)
		if err != nil {
			return err
		}
		if n == 0 {
			return &TaskNotFoundError{ProjectName: projectName, TaskName: taskName}
		}
		affected = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// latestTasks reduces a record slice in query order to one schedule
// per task, each task's most recent record winning.
func latestTasks(records []*domain.ProgressRecord) []plancurve.Task {
	idx := make(map[string]int, len(records))
	var tasks []plancurve.Task
	for _, rec := range records {
		task := plancurve.Task{
			Name:  rec.TaskName,
			Start: rec.StartDate,
			End:   rec.EndDate,
		}
		if i, ok := idx[rec.TaskName]; ok {
			tasks[i] = task
			continue
		}
		idx[rec.TaskName] = len(tasks)
		tasks = append(tasks, task)
	}
	return tasks
}

// tasksFromRecords projects the schedule slice out of a record batch,
// one task per distinct task name.
func tasksFromRecords(records []*domain.ProgressRecord) []plancurve.Task {
	seen := make(map[string]bool, len(records))
	var tasks []plancurve.Task
	for _, rec := range records {
		if seen[rec.TaskName] {
			continue
		}
		seen[rec.TaskName] = true
		tasks = append(tasks, plancurve.Task{
			Name:  rec.TaskName,
			Start: rec.StartDate,
			End:   rec.EndDate,
		})
	}
	return tasks
}

// planPoints stamps project and kind onto a raw plancurve series.
func planPoints(projectName string, kind domain.PlanKind, series []domain.PlanPoint) []domain.PlanPoint {
	for i := range series {
		series[i].ProjectName = projectName
		series[i].Kind = kind
	}
	return series
}
