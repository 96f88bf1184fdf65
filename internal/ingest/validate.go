package ingest

import "fmt"

// ValidateRows checks every row and returns all problems found, one
// error per offending row.
func ValidateRows(rows []Row) []error {
	var errs []error
	rowErr := func(i int, format string, args ...any) {
		errs = append(errs, fmt.Errorf("row %d: %s", i, fmt.Sprintf(format, args...)))
	}

	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		if row.ProjectName == "" {
			rowErr(i, "project name is required")
		}
		if row.TaskName == "" {
			rowErr(i, "task name is required")
		}
		if row.StartDate.IsZero() {
			rowErr(i, "start date is required")
		}
		if row.EndDate.IsZero() {
			rowErr(i, "end date is required")
		}
		if !row.StartDate.IsZero() && !row.EndDate.IsZero() && row.EndDate.Before(row.StartDate) {
			rowErr(i, "end date %s is before start date %s",
				row.EndDate.Format("2006-01-02"), row.StartDate.Format("2006-01-02"))
		}
		if row.Actual < 0 || row.Actual > 1 {
			rowErr(i, "actual progress %.2f is outside [0, 1]", row.Actual)
		}

		key := row.ProjectName + "/" + row.TaskName
		if prev, ok := seen[key]; ok {
			rowErr(i, "duplicate task %q (first seen at row %d)", key, prev)
		} else {
			seen[key] = i
		}
	}
	return errs
}
