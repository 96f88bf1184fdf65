// Package chart assembles everything a renderer needs to draw one
// project's burn-up chart: both plan curves, the actual progress
// series, the display window, and the laid-out task annotations.
package chart

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/layout"
	"github.com/alexanderramin/burnup/internal/plancurve"
	"github.com/alexanderramin/burnup/internal/repository"
)

// Options tunes the display window and annotation layout. Zero values
// fall back to the defaults.
type Options struct {
	BufferDays      int
	MinRangeDays    int
	GroupWindowDays int
}

const (
	DefaultBufferDays   = 5
	DefaultMinRangeDays = 30
)

// Data is one fully assembled chart.
type Data struct {
	ProjectName string
	AsOf        time.Time
	From        time.Time
	To          time.Time
	InitialPlan []domain.PlanPoint
	CurrentPlan []domain.PlanPoint
	Actual      []repository.SeriesPoint
	Annotations []domain.PlacedAnnotation
	Degraded    bool
}

// Builder reads stores and produces chart data. It never writes.
type Builder struct {
	progress repository.ProgressRepo
	plans    repository.PlanRepo
}

func NewBuilder(progress repository.ProgressRepo, plans repository.PlanRepo) *Builder {
	return &Builder{progress: progress, plans: plans}
}

// Build assembles the chart for one project as of the given day.
func (b *Builder) Build(ctx context.Context, projectName string, asOf time.Time, opts Options) (*Data, error) {
	asOf = domain.Day(asOf)
	if opts.BufferDays <= 0 {
		opts.BufferDays = DefaultBufferDays
	}
	if opts.MinRangeDays <= 0 {
		opts.MinRangeDays = DefaultMinRangeDays
	}

	tasks, err := b.latestSchedules(ctx, projectName)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("project %q has no progress history", projectName)
	}

	from, to := plancurve.ChartRange(tasks, asOf, opts.BufferDays, opts.MinRangeDays)

	initial, err := b.plans.ReadPlan(ctx, projectName, domain.PlanInitial)
	if err != nil {
		return nil, fmt.Errorf("reading initial plan: %w", err)
	}
	current, err := b.plans.ReadPlan(ctx, projectName, domain.PlanCurrent)
	if err != nil {
		return nil, fmt.Errorf("reading current plan: %w", err)
	}
	actual, err := b.progress.ActualSeries(ctx, projectName, asOf)
	if err != nil {
		return nil, fmt.Errorf("reading actual series: %w", err)
	}

	anchors, err := b.progress.Anchors(ctx, projectName, from, to)
	if err != nil {
		return nil, fmt.Errorf("reading annotation anchors: %w", err)
	}
	placed := layout.Place(anchors, layout.Options{GroupWindowDays: opts.GroupWindowDays})

	return &Data{
		ProjectName: projectName,
		AsOf:        asOf,
		From:        from,
		To:          to,
		InitialPlan: initial,
		CurrentPlan: current,
		Actual:      actual,
		Annotations: placed.Annotations,
		Degraded:    placed.Degraded,
	}, nil
}

// latestSchedules reduces the project history to one schedule per
// task, taken from each task's most recent record.
func (b *Builder) latestSchedules(ctx context.Context, projectName string) ([]plancurve.Task, error) {
	records, err := b.progress.QueryRange(ctx, projectName, repository.RangeOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading progress history: %w", err)
	}

	latest := make(map[string]*domain.ProgressRecord, len(records))
	var order []string
	for _, rec := range records {
		prev, ok := latest[rec.TaskName]
		if !ok {
			order = append(order, rec.TaskName)
		}
		// QueryRange is date-ascending, so a later row wins.
		if !ok || !rec.RecordDate.Before(prev.RecordDate) {
			latest[rec.TaskName] = rec
		}
	}

	tasks := make([]plancurve.Task, 0, len(order))
	for _, name := range order {
		rec := latest[name]
		tasks = append(tasks, plancurve.Task{Name: name, Start: rec.StartDate, End: rec.EndDate})
	}
	return tasks, nil
}
