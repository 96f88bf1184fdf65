package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date storage format. Record dates carry no
// time component; Day normalizes to midnight UTC before comparison.
const DateLayout = "2006-01-02"

// Day truncates t to a calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date (UTC).
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ProgressRecord is one (project, task, date, actual-progress) sample.
// At most one record exists per (ProjectName, TaskName, RecordDate) key;
// once RecordDate is strictly earlier than the current date the sample
// is immutable.
type ProgressRecord struct {
	ProjectName    string
	TaskName       string
	RecordDate     time.Time
	ActualProgress float64
	Assignee       string
	StartDate      time.Time
	EndDate        time.Time
	Status         TaskStatus
	ShowLabel      bool
	IsBackfilled   bool
	RecordedAt     time.Time
}

// Key returns the natural key string, used in error reports.
func (r *ProgressRecord) Key() string {
	return fmt.Sprintf("%s/%s@%s", r.ProjectName, r.TaskName, r.RecordDate.Format(DateLayout))
}

// Validate checks the record invariants that hold regardless of write
// mode. It returns the first violation found.
func (r *ProgressRecord) Validate() error {
	if r.ProjectName == "" {
		return fmt.Errorf("project name is required")
	}
	if r.TaskName == "" {
		return fmt.Errorf("task name is required")
	}
	if r.RecordDate.IsZero() {
		return fmt.Errorf("record date is required")
	}
	if r.ActualProgress < 0 || r.ActualProgress > 1 {
		return fmt.Errorf("actual progress %.3f outside [0, 1]", r.ActualProgress)
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("end date %s before start date %s",
			r.EndDate.Format(DateLayout), r.StartDate.Format(DateLayout))
	}
	return nil
}
