package layout

import (
	"math"

	"github.com/alexanderramin/burnup/internal/domain"
)

// charWidthDays approximates the horizontal footprint of one label
// character, in chart days.
const charWidthDays = 0.5

// collisionFloorDays is the minimum box width, in days, so even
// single-character labels keep clear of each other.
const collisionFloorDays = 3.0

// labelX is the horizontal center of a label in fractional days since
// the Unix epoch.
func labelX(p domain.PlacedAnnotation) float64 {
	return float64(p.ConnectorDate.Unix())/86400.0 + p.HorizontalOffset
}

// halfWidth is half the approximate box width of a label, derived
// from its display text length.
func halfWidth(p domain.PlacedAnnotation) float64 {
	w := float64(len(p.DisplayText)) * charWidthDays
	if w < collisionFloorDays {
		w = collisionFloorDays
	}
	return w / 2
}

// collides reports whether two placed labels overlap. Labels are one
// slot tall, so only same-slot pairs can collide; horizontally their
// boxes scale with the text they carry.
func collides(a, b domain.PlacedAnnotation) bool {
	if a.Y != b.Y {
		return false
	}
	return math.Abs(labelX(a)-labelX(b)) < halfWidth(a)+halfWidth(b)
}

// bumpSlot moves a slot one step further from the baseline, keeping
// its side. The baseline itself moves up.
func bumpSlot(y int) int {
	switch {
	case y >= 0:
		return y + 1
	default:
		return y - 1
	}
}

// resolveCollisions scans placed labels in canonical order and bumps
// the later label of each colliding pair one slot outward. The scan
// repeats until a pass finds no collision or the iteration cap is
// reached; hitting the cap leaves the remaining overlaps in place and
// reports the layout as degraded.
func resolveCollisions(placed []domain.PlacedAnnotation, maxIterations int) (degraded bool, iterations int) {
	if len(placed) < 2 {
		return false, 0
	}
	for iterations < maxIterations {
		bumped := false
		for i := 0; i < len(placed) && !bumped; i++ {
			for j := i + 1; j < len(placed); j++ {
				if collides(placed[i], placed[j]) {
					placed[j].Y = bumpSlot(placed[j].Y)
					bumped = true
					break
				}
			}
		}
		if !bumped {
			return false, iterations
		}
		iterations++
	}
	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			if collides(placed[i], placed[j]) {
				return true, iterations
			}
		}
	}
	return false, iterations
}
