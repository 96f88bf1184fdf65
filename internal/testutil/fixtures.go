package testutil

import (
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// Date builds a midnight-UTC calendar date, keeping test tables short.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Record options
type RecordOption func(*domain.ProgressRecord)

func WithProgress(p float64) RecordOption {
	return func(r *domain.ProgressRecord) {
		r.ActualProgress = p
	}
}

func WithBackfilled(b bool) RecordOption {
	return func(r *domain.ProgressRecord) {
		r.IsBackfilled = b
	}
}

func WithSchedule(start, end time.Time) RecordOption {
	return func(r *domain.ProgressRecord) {
		r.StartDate = start
		r.EndDate = end
	}
}

func WithShowLabel(show bool) RecordOption {
	return func(r *domain.ProgressRecord) {
		r.ShowLabel = show
	}
}

func WithAssignee(name string) RecordOption {
	return func(r *domain.ProgressRecord) {
		r.Assignee = name
	}
}

// NewTestRecord builds a valid ProgressRecord with sensible defaults.
func NewTestRecord(project, task string, recordDate time.Time, opts ...RecordOption) *domain.ProgressRecord {
	r := &domain.ProgressRecord{
		ProjectName:    project,
		TaskName:       task,
		RecordDate:     recordDate,
		ActualProgress: 0.5,
		Assignee:       "alice",
		StartDate:      recordDate.AddDate(0, 0, -7),
		EndDate:        recordDate.AddDate(0, 0, 7),
		Status:         "In Progress",
		ShowLabel:      true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Anchor options
type AnchorOption func(*domain.TaskAnchor)

func WithAnchorText(text string) AnchorOption {
	return func(a *domain.TaskAnchor) {
		a.DisplayText = text
	}
}

func WithAnchorHidden() AnchorOption {
	return func(a *domain.TaskAnchor) {
		a.ShowLabel = false
	}
}

// NewTestAnchor builds a visible TaskAnchor.
func NewTestAnchor(task string, anchorDate time.Time, opts ...AnchorOption) domain.TaskAnchor {
	a := domain.TaskAnchor{
		TaskName:    task,
		AnchorDate:  anchorDate,
		DisplayText: "Proj - " + task,
		ShowLabel:   true,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}
