// Package ingest loads task snapshots from CSV and JSON files and
// turns them into progress records. Loading and validation are
// separate steps so callers can report every problem in a file at
// once instead of failing on the first.
package ingest

import (
	"time"

	"github.com/alexanderramin/burnup/internal/domain"
)

// Row is one task line of an input file, dates already parsed.
type Row struct {
	ProjectName string
	TaskName    string
	Assignee    string
	StartDate   time.Time
	EndDate     time.Time
	Actual      float64
	Status      string
	ShowLabel   bool
}

// jsonRow is the wire form of a Row in JSON input files. Dates are
// ISO strings; show_label defaults to true when omitted.
type jsonRow struct {
	ProjectName string   `json:"project_name"`
	TaskName    string   `json:"task_name"`
	Assignee    string   `json:"assignee"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Actual      float64  `json:"actual"`
	Status      string   `json:"status"`
	ShowLabel   *bool    `json:"show_label,omitempty"`
}

// csvColumns is the required header set for CSV input.
var csvColumns = []string{
	"Project Name",
	"Task Name",
	"Assign",
	"Start Date",
	"End Date",
	"Actual",
	"Status",
}

// csvShowLabelColumn is optional; a missing column means every label
// is shown.
const csvShowLabelColumn = "Show Label"

// ToRecords converts rows into progress records dated asOf.
func ToRecords(rows []Row, asOf time.Time) []*domain.ProgressRecord {
	out := make([]*domain.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.ProgressRecord{
			ProjectName:    row.ProjectName,
			TaskName:       row.TaskName,
			RecordDate:     domain.Day(asOf),
			ActualProgress: row.Actual,
			Assignee:       row.Assignee,
			StartDate:      row.StartDate,
			EndDate:        row.EndDate,
			Status:         row.Status,
			ShowLabel:      row.ShowLabel,
		})
	}
	return out
}
