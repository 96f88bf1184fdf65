package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/repository"
	"github.com/alexanderramin/burnup/internal/testutil"
)

func setupCoordinator(t *testing.T) (*Coordinator, repository.ProgressRepo, repository.PlanRepo, repository.ViolationRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	progress := repository.NewSQLiteProgressRepo(database)
	plans := repository.NewSQLitePlanRepo(database)
	violations := repository.NewSQLiteViolationRepo(database)
	coord := NewCoordinator(testutil.NewTestUoW(database), progress, plans, violations)
	return coord, progress, plans, violations
}

func snapshotRow(task string, asOf time.Time, opts ...testutil.RecordOption) *domain.ProgressRecord {
	return testutil.NewTestRecord("atlas", task, asOf, opts...)
}

func TestInitialize_BackfillsHistoryAndFreezesPlan(t *testing.T) {
	coord, progress, plans, _ := setupCoordinator(t)
	ctx := context.Background()

	start := testutil.Date(2024, time.March, 1)
	asOf := testutil.Date(2024, time.March, 10)
	end := testutil.Date(2024, time.March, 20)

	report, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", asOf, testutil.WithProgress(0.6), testutil.WithSchedule(start, end)),
		snapshotRow("build", asOf, testutil.WithProgress(0.2), testutil.WithSchedule(start, end)),
	}, asOf)
	require.NoError(t, err)

	// 10 days inclusive for each of the two tasks.
	assert.Equal(t, 2, report.TaskCount)
	assert.Equal(t, 20, report.RecordCount)
	assert.Equal(t, start, report.From)
	assert.Equal(t, end, report.To)

	all, err := progress.QueryRange(ctx, "atlas", repository.RangeOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 20)

	// The entire initialization batch is audit-marked as backfill.
	for _, rec := range all {
		assert.True(t, rec.IsBackfilled, rec.Key())
	}

	// Both baselines exist and agree at initialization time.
	initial, err := plans.ReadPlan(ctx, "atlas", domain.PlanInitial)
	require.NoError(t, err)
	current, err := plans.ReadPlan(ctx, "atlas", domain.PlanCurrent)
	require.NoError(t, err)
	require.Len(t, initial, 20)
	require.Len(t, current, 20)
	for i := range initial {
		assert.Equal(t, initial[i].Date, current[i].Date)
		assert.InDelta(t, initial[i].PlannedProgress, current[i].PlannedProgress, 1e-9)
	}
}

func TestInitialize_RejectsSecondRun(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	ctx := context.Background()
	asOf := testutil.Date(2024, time.March, 10)

	row := snapshotRow("design", asOf)
	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{row}, asOf)
	require.NoError(t, err)

	_, err = coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{snapshotRow("design", asOf)}, asOf)
	var already *AlreadyInitializedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "atlas", already.ProjectName)
}

func TestInitialize_InvalidRowRejectsWholeBatch(t *testing.T) {
	coord, progress, _, _ := setupCoordinator(t)
	ctx := context.Background()
	asOf := testutil.Date(2024, time.March, 10)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("good", asOf),
		snapshotRow("bad", asOf, testutil.WithProgress(1.5)),
	}, asOf)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, 1, verr.Problems[0].Index)
	assert.Equal(t, "bad", verr.Problems[0].TaskName)

	exists, err := progress.ExistsAny(ctx, "atlas")
	require.NoError(t, err)
	assert.False(t, exists, "a rejected batch must write nothing")
}

func TestInitialize_RowWithoutScheduleIsRejected(t *testing.T) {
	coord, progress, _, _ := setupCoordinator(t)
	ctx := context.Background()
	asOf := testutil.Date(2024, time.June, 1)

	// A schedule-less row would otherwise anchor the backfill window
	// at the zero time and generate decades of synthetic records.
	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", asOf, testutil.WithSchedule(time.Time{}, time.Time{})),
	}, asOf)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Contains(t, verr.Problems[0].Reason, "start date is required")

	exists, err := progress.ExistsAny(ctx, "atlas")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInitialize_WriteFailureLeavesStoreUntouched(t *testing.T) {
	database := testutil.NewTestDB(t)
	progress := repository.NewSQLiteProgressRepo(database)
	plans := repository.NewSQLitePlanRepo(database)
	violations := repository.NewSQLiteViolationRepo(database)

	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: boom}
	coord := NewCoordinator(uow, progress, plans, violations)

	ctx := context.Background()
	asOf := testutil.Date(2024, time.March, 10)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", asOf, testutil.WithSchedule(testutil.Date(2024, time.March, 5), asOf)),
	}, asOf)
	require.ErrorIs(t, err, boom)

	exists, err := progress.ExistsAny(ctx, "atlas")
	require.NoError(t, err)
	assert.False(t, exists, "rolled back run must leave no rows")
}

func TestDailyUpdate_RequiresInitialization(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	asOf := testutil.Date(2024, time.March, 10)

	_, err := coord.DailyUpdate(context.Background(), "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", asOf)}, asOf)

	var notInit *NotInitializedError
	require.ErrorAs(t, err, &notInit)
}

func TestDailyUpdate_WritesTodayAndReplacesCurrentPlan(t *testing.T) {
	coord, progress, plans, _ := setupCoordinator(t)
	ctx := context.Background()

	start := testutil.Date(2024, time.March, 1)
	end := testutil.Date(2024, time.March, 20)
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.4), testutil.WithSchedule(start, end)),
	}, day1)
	require.NoError(t, err)

	// The schedule slipped: the daily row carries a new end date.
	slipped := testutil.Date(2024, time.March, 25)
	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day2, testutil.WithProgress(0.5), testutil.WithSchedule(start, slipped)),
	}, day2)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Unchanged)
	assert.True(t, report.PlanReplaced)
	assert.True(t, report.Clean())
	assert.NotEmpty(t, report.BatchID)

	rows, err := progress.QueryRange(ctx, "atlas", repository.RangeOptions{From: day2, To: day2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.5, rows[0].ActualProgress, 1e-9)
	assert.False(t, rows[0].IsBackfilled)

	// The current plan now ends at the slipped date; the initial
	// baseline still ends at the original one.
	current, err := plans.ReadPlan(ctx, "atlas", domain.PlanCurrent)
	require.NoError(t, err)
	assert.Equal(t, slipped, current[len(current)-1].Date)

	initial, err := plans.ReadPlan(ctx, "atlas", domain.PlanInitial)
	require.NoError(t, err)
	assert.Equal(t, end, initial[len(initial)-1].Date)
}

func TestDailyUpdate_PlanKeepsTasksOutsideTheBatch(t *testing.T) {
	coord, _, plans, _ := setupCoordinator(t)
	ctx := context.Background()

	start := testutil.Date(2024, time.March, 1)
	designEnd := testutil.Date(2024, time.March, 20)
	buildEnd := testutil.Date(2024, time.March, 30)
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.4), testutil.WithSchedule(start, designEnd)),
		snapshotRow("build", day1, testutil.WithProgress(0.2), testutil.WithSchedule(start, buildEnd)),
	}, day1)
	require.NoError(t, err)

	// Only design lands today; build's row is a past-dated violation.
	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day2, testutil.WithProgress(0.5), testutil.WithSchedule(start, designEnd)),
		snapshotRow("build", day1, testutil.WithProgress(0.9), testutil.WithSchedule(start, buildEnd)),
	}, day2)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.True(t, report.PlanReplaced)

	// The rebuilt current plan still spans build's stored schedule.
	current, err := plans.ReadPlan(ctx, "atlas", domain.PlanCurrent)
	require.NoError(t, err)
	require.NotEmpty(t, current)
	assert.Equal(t, buildEnd, current[len(current)-1].Date)
}

func TestDailyUpdate_RerunIsIdempotent(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	ctx := context.Background()
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", day1, testutil.WithProgress(0.4))}, day1)
	require.NoError(t, err)

	rows := func() []*domain.ProgressRecord {
		return []*domain.ProgressRecord{snapshotRow("design", day2, testutil.WithProgress(0.5))}
	}

	first, err := coord.DailyUpdate(ctx, "atlas", rows(), day2)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	second, err := coord.DailyUpdate(ctx, "atlas", rows(), day2)
	require.NoError(t, err)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 1, second.Unchanged)
}

func TestDailyUpdate_PastRowBecomesViolationNotWrite(t *testing.T) {
	coord, progress, _, violations := setupCoordinator(t)
	ctx := context.Background()

	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", day1, testutil.WithProgress(0.4))}, day1)
	require.NoError(t, err)

	before, err := progress.QueryRange(ctx, "atlas",
		repository.RangeOptions{TaskName: "design", From: day1, To: day1})
	require.NoError(t, err)
	require.Len(t, before, 1)

	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.9)),
		snapshotRow("design", day2, testutil.WithProgress(0.5)),
	}, day2)
	require.NoError(t, err, "a past-dated row must not fail its siblings")

	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "design", report.Violations[0].TaskName)
	assert.InDelta(t, 0.9, report.Violations[0].Attempted, 1e-9)
	assert.InDelta(t, before[0].ActualProgress, report.Violations[0].Stored, 1e-9)
	assert.False(t, report.Clean())

	// The stored past value is untouched and the attempt is audited.
	after, err := progress.QueryRange(ctx, "atlas",
		repository.RangeOptions{TaskName: "design", From: day1, To: day1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.InDelta(t, before[0].ActualProgress, after[0].ActualProgress, 1e-9)

	count, err := violations.CountByProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDailyUpdate_SameDayOverwriteThenNextDayViolation(t *testing.T) {
	coord, progress, _, violations := setupCoordinator(t)
	ctx := context.Background()

	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", day1, testutil.WithProgress(0.4))}, day1)
	require.NoError(t, err)

	// A correction later the same day overwrites the stored value.
	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.55)),
	}, day1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.True(t, report.Clean())

	rows, err := progress.QueryRange(ctx, "atlas",
		repository.RangeOptions{TaskName: "design", From: day1, To: day1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0.55, rows[0].ActualProgress, 1e-9)
	assert.False(t, rows[0].IsBackfilled)

	// The morning after, the same correction is a history violation.
	report, err = coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.6)),
	}, day2)
	require.NoError(t, err)
	assert.Zero(t, report.Updated)
	require.Len(t, report.Violations, 1)
	assert.InDelta(t, 0.55, report.Violations[0].Stored, 1e-9)

	count, err := violations.CountByProject(ctx, "atlas")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDailyUpdate_FutureRowsIgnored(t *testing.T) {
	coord, progress, _, _ := setupCoordinator(t)
	ctx := context.Background()
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", day1)}, day1)
	require.NoError(t, err)

	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", testutil.Date(2024, time.March, 15)),
	}, day2)
	require.NoError(t, err)

	assert.Equal(t, 1, report.IgnoredFuture)
	assert.Zero(t, report.Updated)

	rows, err := progress.QueryRange(ctx, "atlas",
		repository.RangeOptions{From: day2, To: testutil.Date(2024, time.March, 15)})
	require.NoError(t, err)
	assert.Empty(t, rows, "future rows must not be written")
}

func TestDailyUpdate_InvalidRowReportedAndSkipped(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	ctx := context.Background()
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", day1)}, day1)
	require.NoError(t, err)

	report, err := coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("bad", day2, testutil.WithProgress(2)),
		snapshotRow("design", day2, testutil.WithProgress(0.7)),
	}, day2)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 0, report.Skipped[0].Index)
	assert.Equal(t, "bad", report.Skipped[0].TaskName)
}

func TestProtectionStatus_CombinesStatsAndViolations(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	ctx := context.Background()
	day1 := testutil.Date(2024, time.March, 10)
	day2 := testutil.Date(2024, time.March, 11)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithSchedule(testutil.Date(2024, time.March, 8), day2)),
	}, day1)
	require.NoError(t, err)

	_, err = coord.DailyUpdate(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", day1, testutil.WithProgress(0.9)),
	}, day2)
	require.NoError(t, err)

	status, err := coord.ProtectionStatus(ctx, "atlas")
	require.NoError(t, err)

	assert.Equal(t, "atlas", status.ProjectName)
	assert.Equal(t, 3, status.Stats.TotalRecords)
	assert.Equal(t, 3, status.Stats.BackfilledCount)
	assert.Equal(t, 1, status.Stats.ViolationCount)
	assert.Len(t, status.Days, 3)
	require.Len(t, status.Violations, 1)
	assert.Equal(t, "design", status.Violations[0].TaskName)
}

func TestFixTaskDates_RewritesEveryRecord(t *testing.T) {
	coord, progress, _, _ := setupCoordinator(t)
	ctx := context.Background()
	asOf := testutil.Date(2024, time.March, 10)

	_, err := coord.Initialize(ctx, "atlas", []*domain.ProgressRecord{
		snapshotRow("design", asOf, testutil.WithSchedule(testutil.Date(2024, time.March, 5), asOf)),
	}, asOf)
	require.NoError(t, err)

	newStart := testutil.Date(2024, time.March, 3)
	newEnd := testutil.Date(2024, time.March, 30)
	affected, err := coord.FixTaskDates(ctx, "atlas", "design", newStart, newEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), affected)

	rows, err := progress.QueryRange(ctx, "atlas", repository.RangeOptions{TaskName: "design"})
	require.NoError(t, err)
	for _, rec := range rows {
		assert.Equal(t, newStart, rec.StartDate)
		assert.Equal(t, newEnd, rec.EndDate)
	}
}

func TestFixTaskDates_InvalidRange(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)

	_, err := coord.FixTaskDates(context.Background(), "atlas", "design",
		testutil.Date(2024, time.March, 10), testutil.Date(2024, time.March, 1))

	var invalid *InvalidRangeError
	require.ErrorAs(t, err, &invalid)
}

func TestFixTaskDates_UnknownTask(t *testing.T) {
	coord, _, _, _ := setupCoordinator(t)
	ctx := context.Background()
	asOf := testutil.Date(2024, time.March, 10)

	_, err := coord.Initialize(ctx, "atlas",
		[]*domain.ProgressRecord{snapshotRow("design", asOf)}, asOf)
	require.NoError(t, err)

	_, err = coord.FixTaskDates(ctx, "atlas", "missing",
		testutil.Date(2024, time.March, 1), testutil.Date(2024, time.March, 10))

	var notFound *TaskNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.TaskName)
}
