package formatter

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/burnup/internal/chart"
	"github.com/alexanderramin/burnup/internal/domain"
)

const (
	chartHeight   = 12
	maxChartWidth = 72

	markActual  = '█'
	markCurrent = '+'
	markInitial = '·'
)

type chartCell struct {
	ch    rune
	style lipgloss.Style
}

// FormatChart renders one project's burn-up chart as terminal text:
// both plan curves, the actual curve, task labels fanned above and
// below the timeline, and a legend.
func FormatChart(data *chart.Data) string {
	days := daysBetween(data.From, data.To) + 1
	if days < 2 {
		days = 2
	}
	width := days
	if width > maxChartWidth {
		width = maxChartWidth
	}

	col := func(t time.Time) int {
		d := daysBetween(data.From, t)
		c := int(math.Round(float64(d) * float64(width-1) / float64(days-1)))
		if c < 0 {
			c = 0
		}
		if c >= width {
			c = width - 1
		}
		return c
	}

	grid := make([][]chartCell, chartHeight)
	for r := range grid {
		grid[r] = make([]chartCell, width)
		for c := range grid[r] {
			grid[r][c] = chartCell{ch: ' '}
		}
	}

	// Painted back to front so the actual curve wins contested cells.
	plotPlan(grid, data.InitialPlan, data.From, col, markInitial, StyleDim)
	plotPlan(grid, data.CurrentPlan, data.From, col, markCurrent, StyleBlue)
	for _, p := range data.Actual {
		plot(grid, col(p.Date), p.Progress, markActual, StyleGreen)
	}

	var b strings.Builder
	b.WriteString(Header(data.ProjectName + " burn-up"))
	b.WriteString("\n")

	above, below := annotationLines(data.Annotations, data.From, width, col)
	for _, line := range above {
		b.WriteString(strings.Repeat(" ", 5) + StylePurple.Render(line) + "\n")
	}

	for r := 0; r < chartHeight; r++ {
		b.WriteString(yLabel(r))
		for c := 0; c < width; c++ {
			cell := grid[r][c]
			if cell.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(cell.style.Render(string(cell.ch)))
		}
		b.WriteString("\n")
	}

	b.WriteString("  0% ")
	b.WriteString(StyleDim.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	for _, line := range below {
		b.WriteString(strings.Repeat(" ", 5) + StylePurple.Render(line) + "\n")
	}

	from := data.From.Format(domain.DateLayout)
	to := data.To.Format(domain.DateLayout)
	gap := width - len(from) - len(to)
	if gap < 1 {
		gap = 1
	}
	b.WriteString("     " + Dim(from) + strings.Repeat(" ", gap) + Dim(to) + "\n\n")

	b.WriteString(fmt.Sprintf("     %s actual   %s current plan   %s initial plan\n",
		StyleGreen.Render(string(markActual)),
		StyleBlue.Render(string(markCurrent)),
		StyleDim.Render(string(markInitial))))
	if data.Degraded {
		b.WriteString("     " + StyleYellow.Render("labels truncated: too many overlapping annotations") + "\n")
	}
	return b.String()
}

func yLabel(row int) string {
	switch row {
	case 0:
		return "100% "
	case chartHeight / 2:
		return " 50% "
	default:
		return "     "
	}
}

func plot(grid [][]chartCell, c int, value float64, ch rune, style lipgloss.Style) {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	r := chartHeight - 1 - int(math.Round(value*float64(chartHeight-1)))
	grid[r][c] = chartCell{ch: ch, style: style}
}

func plotPlan(grid [][]chartCell, points []domain.PlanPoint, from time.Time, col func(time.Time) int, ch rune, style lipgloss.Style) {
	for _, p := range points {
		if p.Date.Before(from) {
			continue
		}
		c := col(p.Date)
		if c >= len(grid[0]) {
			continue
		}
		plot(grid, c, p.PlannedProgress, ch, style)
	}
}

// annotationLines turns placed annotations into text lines, one line
// per vertical slot, ordered outermost first above the chart and
// innermost first below it.
func annotationLines(placed []domain.PlacedAnnotation, from time.Time, width int, col func(time.Time) int) (above, below []string) {
	bySlot := map[int][]domain.PlacedAnnotation{}
	for _, a := range placed {
		bySlot[a.Y] = append(bySlot[a.Y], a)
	}

	var slots []int
	for y := range bySlot {
		slots = append(slots, y)
	}
	sort.Ints(slots)

	render := func(anns []domain.PlacedAnnotation) string {
		line := make([]rune, width)
		for i := range line {
			line[i] = ' '
		}
		for _, a := range anns {
			start := col(a.ConnectorDate.AddDate(0, 0, int(math.Round(a.HorizontalOffset))))
			text := []rune(a.DisplayText)
			// Shift left rather than clip at the right edge.
			if start+len(text) > width {
				start = width - len(text)
			}
			if start < 0 {
				start = 0
			}
			for i, ch := range text {
				if start+i >= width {
					break
				}
				line[start+i] = ch
			}
		}
		return strings.TrimRight(string(line), " ")
	}

	// slots ascending: negatives first. Above lines print top-down,
	// so the highest slot comes first.
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i] >= 0 {
			above = append(above, render(bySlot[slots[i]]))
		}
	}
	for _, y := range slots {
		if y < 0 {
			below = append(below, render(bySlot[y]))
		}
	}
	// below lines print nearest slot first.
	for i, j := 0, len(below)-1; i < j; i, j = i+1, j-1 {
		below[i], below[j] = below[j], below[i]
	}
	return above, below
}

func daysBetween(a, b time.Time) int {
	return int(domain.Day(b).Sub(domain.Day(a)).Hours() / 24)
}
