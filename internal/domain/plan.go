package domain

import (
	"fmt"
	"time"
)

// PlanPoint is one dated planned-progress value on a plan baseline.
type PlanPoint struct {
	ProjectName     string
	Kind            PlanKind
	Date            time.Time
	PlannedProgress float64
}

// Validate checks a single plan point.
func (p *PlanPoint) Validate() error {
	if p.ProjectName == "" {
		return fmt.Errorf("project name is required")
	}
	if p.Kind != PlanInitial && p.Kind != PlanCurrent {
		return fmt.Errorf("invalid plan kind %q", p.Kind)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("plan point date is required")
	}
	if p.PlannedProgress < 0 || p.PlannedProgress > 1 {
		return fmt.Errorf("planned progress %.3f outside [0, 1]", p.PlannedProgress)
	}
	return nil
}
