package history

import (
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// SmoothBackfill synthesizes a daily history for a project that is
// being tracked for the first time. The project's mean progress rises
// linearly from the earliest task start date to asOf, and each task
// gets a proportional share of that rise, capped at the task's actual
// progress today. Every generated row is marked backfilled, the asOf
// row included: initialization is historical by definition, and the
// audit trail should say so.
func SmoothBackfill(snapshot []*domain.ProgressRecord, asOf time.Time) []*domain.ProgressRecord {
	if len(snapshot) == 0 {
		return nil
	}
	asOf = domain.Day(asOf)

	// Tasks without a start date cannot anchor the window; if no task
	// carries one the series collapses to the asOf day.
	projectStart := asOf
	meanActual := 0.0
	for _, rec := range snapshot {
		if d := domain.Day(rec.StartDate); !rec.StartDate.IsZero() && d.Before(projectStart) {
			projectStart = d
		}
		meanActual += rec.ActualProgress
	}
	meanActual /= float64(len(snapshot))

	totalDays := int(asOf.Sub(projectStart).Hours()/24) + 1

	var out []*domain.ProgressRecord
	for i := 0; i < totalDays; i++ {
		day := projectStart.AddDate(0, 0, i)
		overall := meanActual * float64(i+1) / float64(totalDays)
		if overall > meanActual {
			overall = meanActual
		}
		for _, rec := range snapshot {
			weight := 1.0
			if meanActual > 0 {
				weight = rec.ActualProgress / meanActual
			}
			progress := overall * weight
			if progress > rec.ActualProgress {
				progress = rec.ActualProgress
			}
			hist := *rec
			hist.RecordDate = day
			hist.ActualProgress = progress
			hist.IsBackfilled = true
			out = append(out, &hist)
		}
	}
	return out
}
