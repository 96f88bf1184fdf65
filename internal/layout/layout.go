// Package layout places task labels on a shared timeline axis so that
// no two label boxes overlap. It is a pure function of its input:
// identical anchor sets, in any order, produce identical placements.
package layout

import (
	"sort"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// Options tunes the layout pass. Zero values fall back to defaults.
type Options struct {
	// GroupWindowDays is the proximity window for chain-clustering:
	// an anchor joins the previous anchor's group when they are at
	// most this many days apart.
	GroupWindowDays int
	// SlotStep is unused by callers today but kept symmetric with the
	// renderer's vertical spacing; slot indexes are abstract units.
}

// DefaultGroupWindowDays is the clustering window used when Options
// leaves it unset.
const DefaultGroupWindowDays = 5

// Result is the layout outcome. Degraded is set when the collision
// pass hits its iteration cap and returns a best-effort placement.
type Result struct {
	Annotations []domain.PlacedAnnotation
	Degraded    bool
	Iterations  int
}

// Place computes non-overlapping label positions for the visible
// anchors. The algorithm runs in four steps: filter hidden anchors,
// chain-cluster by date proximity, fan each cluster around its
// baseline, then resolve residual collisions globally with a bounded
// number of single-slot bumps.
func Place(anchors []domain.TaskAnchor, opts Options) Result {
	window := opts.GroupWindowDays
	if window <= 0 {
		window = DefaultGroupWindowDays
	}

	visible := make([]domain.TaskAnchor, 0, len(anchors))
	for _, a := range anchors {
		if a.ShowLabel {
			visible = append(visible, a)
		}
	}
	if len(visible) == 0 {
		return Result{}
	}

	canonicalSort(visible)
	groups := chainCluster(visible, window)
	placed := fanGroups(groups)
	degraded, iterations := resolveCollisions(placed, 3*len(placed))

	return Result{Annotations: placed, Degraded: degraded, Iterations: iterations}
}

// canonicalSort orders anchors by date, tie-broken by task name, so
// slot assignment is independent of input order.
func canonicalSort(anchors []domain.TaskAnchor) {
	sort.SliceStable(anchors, func(i, j int) bool {
		a, b := anchors[i], anchors[j]
		da, db := domain.Day(a.AnchorDate), domain.Day(b.AnchorDate)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return a.TaskName < b.TaskName
	})
}

// daysBetween returns the whole-day distance from a to b.
func daysBetween(a, b time.Time) int {
	return int(domain.Day(b).Sub(domain.Day(a)).Hours() / 24)
}

// chainCluster partitions sorted anchors into groups by the transitive
// closure of the ±window relation along the sequence: a new group
// starts whenever the gap to the previous anchor exceeds the window.
func chainCluster(sorted []domain.TaskAnchor, window int) [][]domain.TaskAnchor {
	var groups [][]domain.TaskAnchor
	for i, a := range sorted {
		if i == 0 || daysBetween(sorted[i-1].AnchorDate, a.AnchorDate) > window {
			groups = append(groups, []domain.TaskAnchor{a})
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], a)
	}
	return groups
}
