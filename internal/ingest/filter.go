package ingest

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterWithinYear keeps tasks that touch the target year: starting in
// it, ending in it, or spanning across it.
func FilterWithinYear(rows []Row, year int) []Row {
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	var out []Row
	for _, row := range rows {
		startsIn := !row.StartDate.Before(yearStart) && !row.StartDate.After(yearEnd)
		endsIn := !row.EndDate.Before(yearStart) && !row.EndDate.After(yearEnd)
		spans := row.StartDate.Before(yearStart) && row.EndDate.After(yearEnd)
		if startsIn || endsIn || spans {
			out = append(out, row)
		}
	}
	return out
}

// FilterByDateRange keeps tasks overlapping [from, to]. A zero bound
// is open.
func FilterByDateRange(rows []Row, from, to time.Time) []Row {
	var out []Row
	for _, row := range rows {
		if !from.IsZero() && row.EndDate.Before(from) {
			continue
		}
		if !to.IsZero() && row.StartDate.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ValidateYearFilter reports whether filtering by the target year
// would keep any tasks, with a human-readable reason.
func ValidateYearFilter(rows []Row, year int) (bool, string) {
	if len(rows) == 0 {
		return false, "no data available to filter"
	}

	years := map[int]bool{}
	for _, row := range rows {
		for y := row.StartDate.Year(); y <= row.EndDate.Year(); y++ {
			years[y] = true
		}
	}
	if !years[year] {
		var available []string
		for y := range years {
			available = append(available, fmt.Sprintf("%d", y))
		}
		sort.Strings(available)
		return false, fmt.Sprintf("year %d not found in data, available years: %s",
			year, strings.Join(available, ", "))
	}

	kept := FilterWithinYear(rows, year)
	if len(kept) == 0 {
		return false, fmt.Sprintf("no tasks found for year %d", year)
	}
	return true, fmt.Sprintf("found %d tasks for year %d", len(kept), year)
}

// Summary describes the date coverage of a row set.
type Summary struct {
	TaskCount     int
	EarliestStart time.Time
	LatestEnd     time.Time
	YearsCovered  []int
}

// Summarize computes the date coverage of a row set.
func Summarize(rows []Row) Summary {
	s := Summary{TaskCount: len(rows)}
	years := map[int]bool{}
	for i, row := range rows {
		if i == 0 || row.StartDate.Before(s.EarliestStart) {
			s.EarliestStart = row.StartDate
		}
		if i == 0 || row.EndDate.After(s.LatestEnd) {
			s.LatestEnd = row.EndDate
		}
		for y := row.StartDate.Year(); y <= row.EndDate.Year(); y++ {
			years[y] = true
		}
	}
	for y := range years {
		s.YearsCovered = append(s.YearsCovered, y)
	}
	sort.Ints(s.YearsCovered)
	return s
}
