package history

import (
	"time"

	"github.com/alexanderramin/burnup/internal/repository"
)

// InitReport summarizes a successful Initialize run.
type InitReport struct {
	ProjectName string
	AsOf        time.Time
	TaskCount   int
	RecordCount int
	PlanPoints  int
	From        time.Time
	To          time.Time
}

// UpdateReport summarizes one daily update. A report with violations
// still represents a committed update: the valid rows landed, the
// offending ones were logged and skipped. BatchID identifies the run
// in command output so a reported violation can be traced back to the
// update that triggered it.
type UpdateReport struct {
	ProjectName   string
	BatchID       string
	AsOf          time.Time
	Updated       int
	Unchanged     int
	IgnoredFuture int
	Skipped       []RowProblem
	Violations    []repository.Violation
	PlanReplaced  bool
}

// Clean reports whether the update went through without any skipped
// rows or history violations.
func (r *UpdateReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Violations) == 0
}

// Status is the protection overview for one project.
type Status struct {
	ProjectName string
	Stats       repository.ProtectionStats
	Days        []repository.DayStats
	Violations  []repository.Violation
}
