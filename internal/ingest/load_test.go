package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/burnup/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `Project Name,Task Name,Assign,Start Date,End Date,Actual,Status,Show Label
atlas,design,alice,2024-03-01,2024-03-10,0.6,In Progress,v
atlas,build,bob,2024-03-05,2024-03-20,0.2,In Progress,x
`

func TestLoadRows_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.csv", sampleCSV)

	rows, err := LoadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "atlas", rows[0].ProjectName)
	assert.Equal(t, "design", rows[0].TaskName)
	assert.Equal(t, "alice", rows[0].Assignee)
	assert.Equal(t, testutil.Date(2024, time.March, 1), rows[0].StartDate)
	assert.Equal(t, testutil.Date(2024, time.March, 10), rows[0].EndDate)
	assert.InDelta(t, 0.6, rows[0].Actual, 1e-9)
	assert.True(t, rows[0].ShowLabel)
	assert.False(t, rows[1].ShowLabel)
}

func TestLoadRows_CSVWithoutShowLabelColumn(t *testing.T) {
	csv := `Project Name,Task Name,Assign,Start Date,End Date,Actual,Status
atlas,design,alice,2024-03-01,2024-03-10,0.6,Done
`
	path := writeFile(t, t.TempDir(), "tasks.csv", csv)

	rows, err := LoadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].ShowLabel, "missing column defaults to shown")
}

func TestLoadRows_CSVMissingColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.csv", "Project Name,Task Name\natlas,design\n")

	_, err := LoadRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "Start Date")
}

func TestLoadRows_JSON(t *testing.T) {
	content := `[
		{"project_name": "atlas", "task_name": "design", "assignee": "alice",
		 "start_date": "2024-03-01", "end_date": "2024-03-10",
		 "actual": 0.6, "status": "In Progress"},
		{"project_name": "atlas", "task_name": "build", "assignee": "bob",
		 "start_date": "2024-03-05", "end_date": "2024-03-20",
		 "actual": 0.2, "status": "In Progress", "show_label": false}
	]`
	path := writeFile(t, t.TempDir(), "tasks.json", content)

	rows, err := LoadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].ShowLabel, "omitted show_label defaults to shown")
	assert.False(t, rows[1].ShowLabel)
}

func TestLoadRows_FallsBackToSiblingExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tasks.csv", sampleCSV)

	rows, err := LoadRows(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestLoadRows_MissingFile(t *testing.T) {
	_, err := LoadRows(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRows_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.xlsx", "binary")

	_, err := LoadRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestLoadRows_BadDate(t *testing.T) {
	csv := `Project Name,Task Name,Assign,Start Date,End Date,Actual,Status
atlas,design,alice,03/01/2024,2024-03-10,0.6,Done
`
	path := writeFile(t, t.TempDir(), "tasks.csv", csv)

	_, err := LoadRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want YYYY-MM-DD")
}

func TestToRecords(t *testing.T) {
	asOf := testutil.Date(2024, time.March, 10)
	rows := []Row{{
		ProjectName: "atlas",
		TaskName:    "design",
		Assignee:    "alice",
		StartDate:   testutil.Date(2024, time.March, 1),
		EndDate:     testutil.Date(2024, time.March, 20),
		Actual:      0.6,
		Status:      "In Progress",
		ShowLabel:   true,
	}}

	recs := ToRecords(rows, asOf)
	require.Len(t, recs, 1)
	assert.Equal(t, asOf, recs[0].RecordDate)
	assert.NoError(t, recs[0].Validate())
}
