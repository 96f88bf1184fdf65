package domain

import "time"

// TaskAnchor is the single timeline point a task's chart label refers
// to, typically the task's end date. Derived from stored records; never
// persisted.
type TaskAnchor struct {
	TaskName    string
	AnchorDate  time.Time
	DisplayText string
	ShowLabel   bool
}

// PlacedAnnotation is a laid-out label position produced by the layout
// engine. Y is a signed vertical slot index relative to the group
// baseline (0 on the baseline, positive above, negative below);
// HorizontalOffset is measured in fractional days relative to
// ConnectorDate. ConnectorDate keeps the original anchor point the
// label's connector line points back to.
type PlacedAnnotation struct {
	TaskName         string
	DisplayText      string
	Y                int
	HorizontalOffset float64
	ConnectorDate    time.Time
	Group            int
}
