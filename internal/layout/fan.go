package layout

import (
	"github.com/alexanderramin/burnup/internal/domain"
)

// slotSequence is the order in which vertical slots are handed out
// within a group: baseline first, then alternating above and below
// with growing distance.
var slotSequence = []int{0, 1, -1, 2, -2, 3, -3, 4, -4}

// horizontalOffsets returns the per-member horizontal shifts, in
// days, for a group of the given size. Small groups use fixed tables
// tuned for readability; larger groups spread evenly over a six-day
// span centered on the group.
func horizontalOffsets(size int) []float64 {
	switch size {
	case 1:
		return []float64{0}
	case 2:
		return []float64{-1, 1}
	case 3:
		return []float64{-2, 0, 2}
	case 4:
		return []float64{-2, -0.7, 0.7, 2}
	}
	offsets := make([]float64, size)
	span := 6.0
	step := span / float64(size-1)
	for i := range offsets {
		offsets[i] = -span/2 + step*float64(i)
	}
	return offsets
}

// slotFor returns the vertical slot for the i-th member of a group.
// Past the fixed table it keeps alternating with growing magnitude.
func slotFor(i int) int {
	if i < len(slotSequence) {
		return slotSequence[i]
	}
	magnitude := (i + 1) / 2
	if i%2 == 1 {
		return magnitude
	}
	return -magnitude
}

// fanGroups assigns each group member a slot and a horizontal offset.
// Members keep their canonical order, so the assignment is stable.
func fanGroups(groups [][]domain.TaskAnchor) []domain.PlacedAnnotation {
	var placed []domain.PlacedAnnotation
	for g, group := range groups {
		offsets := horizontalOffsets(len(group))
		for i, a := range group {
			placed = append(placed, domain.PlacedAnnotation{
				TaskName:         a.TaskName,
				DisplayText:      a.DisplayText,
				Y:                slotFor(i),
				HorizontalOffset: offsets[i],
				ConnectorDate:    domain.Day(a.AnchorDate),
				Group:            g,
			})
		}
	}
	return placed
}
