// Package plancurve derives planned-progress time series from task
// schedules. A task's plan is a linear ramp from 0 at its start date to
// 1 at its end date; a project's plan for a day is the mean over its
// tasks. The package is pure: callers feed it schedules, it returns
// points.
package plancurve

import (
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// Task is the schedule slice of one task.
type Task struct {
	Name  string
	Start time.Time
	End   time.Time
}

// TaskPercent returns the planned completion of a single task on the
// given day: 0 before the start, 1 from the end date on, linear in
// between. A zero-length task counts as complete on its start date.
func TaskPercent(start, end, day time.Time) float64 {
	start, end, day = domain.Day(start), domain.Day(end), domain.Day(day)
	if end.Before(start) {
		start, end = end, start
	}
	if day.Before(start) {
		return 0
	}
	if !day.Before(end) {
		return 1
	}
	totalDays := end.Sub(start).Hours() / 24
	elapsedDays := day.Sub(start).Hours() / 24
	if totalDays == 0 {
		return 1
	}
	pct := elapsedDays / totalDays
	if pct > 1 {
		pct = 1
	}
	return pct
}

// ProjectPercent returns the mean planned completion across tasks for
// one day. Tasks with a missing schedule are skipped; with no usable
// tasks the result is 0.
func ProjectPercent(tasks []Task, day time.Time) float64 {
	total := 0.0
	counted := 0
	for _, t := range tasks {
		if t.Start.IsZero() || t.End.IsZero() {
			continue
		}
		total += TaskPercent(t.Start, t.End, day)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// Series produces one plan point per day over [from, to] inclusive.
func Series(tasks []Task, from, to time.Time) []domain.PlanPoint {
	from, to = domain.Day(from), domain.Day(to)
	if to.Before(from) {
		return nil
	}
	var points []domain.PlanPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		points = append(points, domain.PlanPoint{
			Date:            day,
			PlannedProgress: ProjectPercent(tasks, day),
		})
	}
	return points
}

// Span returns the earliest start and latest end across tasks. ok is
// false when no task carries a usable schedule.
func Span(tasks []Task) (start, end time.Time, ok bool) {
	for _, t := range tasks {
		if t.Start.IsZero() || t.End.IsZero() {
			continue
		}
		s, e := domain.Day(t.Start), domain.Day(t.End)
		if e.Before(s) {
			s, e = e, s
		}
		if !ok || s.Before(start) {
			start = s
		}
		if !ok || e.After(end) {
			end = e
		}
		ok = true
	}
	return start, end, ok
}

// ChartRange computes the chart display window: the task span padded by
// bufferDays on both sides, widened symmetrically to at least
// minRangeDays. With no scheduled tasks it centers a 60-day window on
// the fallback date.
func ChartRange(tasks []Task, fallback time.Time, bufferDays, minRangeDays int) (time.Time, time.Time) {
	start, end, ok := Span(tasks)
	if !ok {
		day := domain.Day(fallback)
		return day.AddDate(0, 0, -30), day.AddDate(0, 0, 30)
	}

	chartStart := start.AddDate(0, 0, -bufferDays)
	chartEnd := end.AddDate(0, 0, bufferDays)

	currentRange := int(chartEnd.Sub(chartStart).Hours() / 24)
	if currentRange < minRangeDays {
		extra := (minRangeDays - currentRange) / 2
		chartStart = chartStart.AddDate(0, 0, -extra)
		chartEnd = chartEnd.AddDate(0, 0, extra)
	}
	return chartStart, chartEnd
}
