package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// LoadRows reads a task snapshot from a CSV or JSON file, picked by
// extension. When the named file is missing but a sibling with the
// other supported extension exists, the sibling is used instead.
func LoadRows(path string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, err := os.Stat(path); err != nil {
		fallback := fallbackPath(path, ext)
		if fallback == "" {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		if _, ferr := os.Stat(fallback); ferr != nil {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		path = fallback
		ext = strings.ToLower(filepath.Ext(path))
	}

	switch ext {
	case ".csv":
		return loadCSV(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q, use .csv or .json", ext)
	}
}

func fallbackPath(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	switch ext {
	case ".csv":
		return base + ".json"
	case ".json":
		return base + ".csv"
	}
	return ""
}

func loadJSON(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw []jsonRow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	rows := make([]Row, 0, len(raw))
	for i, jr := range raw {
		start, err := parseDate(jr.StartDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: start_date: %w", i, err)
		}
		end, err := parseDate(jr.EndDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: end_date: %w", i, err)
		}
		show := true
		if jr.ShowLabel != nil {
			show = *jr.ShowLabel
		}
		rows = append(rows, Row{
			ProjectName: jr.ProjectName,
			TaskName:    jr.TaskName,
			Assignee:    jr.Assignee,
			StartDate:   start,
			EndDate:     end,
			Actual:      jr.Actual,
			Status:      jr.Status,
			ShowLabel:   show,
		})
	}
	return rows, nil
}

func loadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	showCol, hasShow := index[csvShowLabelColumn]

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		field := func(col string) string {
			return strings.TrimSpace(rec[index[col]])
		}
		start, err := parseDate(field("Start Date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: Start Date: %w", n, err)
		}
		end, err := parseDate(field("End Date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: End Date: %w", n, err)
		}
		actual, err := strconv.ParseFloat(field("Actual"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: Actual: %w", n, err)
		}
		show := true
		if hasShow {
			show = parseShowLabel(strings.TrimSpace(rec[showCol]))
		}
		rows = append(rows, Row{
			ProjectName: field("Project Name"),
			TaskName:    field("Task Name"),
			Assignee:    field("Assign"),
			StartDate:   start,
			EndDate:     end,
			Actual:      actual,
			Status:      field("Status"),
			ShowLabel:   show,
		})
	}
	return rows, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return domain.Day(t), nil
}

// parseShowLabel accepts the legacy "v" checkmark alongside the usual
// boolean spellings. An empty cell means shown.
func parseShowLabel(s string) bool {
	switch strings.ToLower(s) {
	case "", "v", "true", "1", "yes":
		return true
	}
	return false
}
