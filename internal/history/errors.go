package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// AlreadyInitializedError is returned when Initialize runs against a
// project that already has progress history.
type AlreadyInitializedError struct {
	ProjectName string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("project %q already has progress history; use a daily update instead", e.ProjectName)
}

// NotInitializedError is returned when a daily update runs against a
// project with no history yet.
type NotInitializedError struct {
	ProjectName string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("project %q has no progress history; initialize it first", e.ProjectName)
}

// RowProblem describes why one input row failed validation.
type RowProblem struct {
	Index    int
	TaskName string
	Reason   string
}

func (p RowProblem) String() string {
	return fmt.Sprintf("row %d (%s): %s", p.Index, p.TaskName, p.Reason)
}

// ValidationError aggregates every invalid row in one batch. Initialize
// rejects the whole batch with it; daily updates report the problems
// and continue with the valid rows.
type ValidationError struct {
	Problems []RowProblem
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Problems)+1)
	lines = append(lines, fmt.Sprintf("batch validation failed (%d rows):", len(e.Problems)))
	for _, p := range e.Problems {
		lines = append(lines, "  - "+p.String())
	}
	return strings.Join(lines, "\n")
}

// InvalidRangeError is returned when a schedule fix requests an end
// date before its start date.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s is before start %s",
		e.End.Format(domain.DateLayout), e.Start.Format(domain.DateLayout))
}

// TaskNotFoundError is returned when a schedule fix names a task with
// no stored records.
type TaskNotFoundError struct {
	ProjectName string
	TaskName    string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not found in project %q", e.TaskName, e.ProjectName)
}

// validateRows checks a batch and returns the problems found. The rows
// themselves are not modified.
func validateRows(projectName string, rows []*domain.ProgressRecord) []RowProblem {
	var problems []RowProblem
	for i, rec := range rows {
		if rec.ProjectName != projectName {
			problems = append(problems, RowProblem{
				Index:    i,
				TaskName: rec.TaskName,
				Reason:   fmt.Sprintf("belongs to project %q", rec.ProjectName),
			})
			continue
		}
		if err := rec.Validate(); err != nil {
			problems = append(problems, RowProblem{
				Index:    i,
				TaskName: rec.TaskName,
				Reason:   err.Error(),
			})
			continue
		}
		// The coordinator derives plan curves and backfill windows
		// from the schedule, so rows without one are not writable.
		if rec.StartDate.IsZero() {
			problems = append(problems, RowProblem{
				Index:    i,
				TaskName: rec.TaskName,
				Reason:   "start date is required",
			})
			continue
		}
		if rec.EndDate.IsZero() {
			problems = append(problems, RowProblem{
				Index:    i,
				TaskName: rec.TaskName,
				Reason:   "end date is required",
			})
		}
	}
	return problems
}
