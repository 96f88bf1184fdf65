package domain

// PlanKind identifies which plan baseline a PlanPoint belongs to.
type PlanKind string

const (
	// PlanInitial is the frozen baseline written once at project
	// initialization and never mutated thereafter.
	PlanInitial PlanKind = "initial"
	// PlanCurrent is the latest forecast, replaced wholesale on each
	// daily update.
	PlanCurrent PlanKind = "current"
)

// WriteMode states explicitly whether a progress write is part of the
// one-time historical load or an incremental daily update. The store's
// immutability check branches on this instead of inferring it from the
// call path.
type WriteMode string

const (
	WriteInitial WriteMode = "initial"
	WriteDaily   WriteMode = "daily"
)

// TaskStatus is the free-form status carried through from the plan file.
// The core never branches on it; it is stored for display only.
type TaskStatus = string
