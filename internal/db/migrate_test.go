package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Running migrations a second time must succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	// Third time for good measure.
	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"progress_records", "plan_points", "violation_log"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_progress_project_date",
		"idx_violation_project",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ProgressKeyUnique(t *testing.T) {
	db := openTestDB(t)

	insert := `INSERT INTO progress_records
		(project_name, task_name, record_date, actual_progress, recorded_at)
		VALUES ('ProjA', 'T1', '2024-01-02', 0.2, '2024-01-02T09:00:00Z')`
	_, err := db.Exec(insert)
	require.NoError(t, err)

	_, err = db.Exec(insert)
	assert.Error(t, err, "duplicate (project, task, date) key must be rejected")
}

func TestMigrate_ProgressRangeCheck(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO progress_records
		(project_name, task_name, record_date, actual_progress, recorded_at)
		VALUES ('ProjA', 'T1', '2024-01-02', 1.5, '2024-01-02T09:00:00Z')`)
	assert.Error(t, err, "progress outside [0,1] must be rejected by the schema")
}
