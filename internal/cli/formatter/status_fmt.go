package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/history"
)

// FormatStatus renders the history protection overview for a project.
func FormatStatus(status *history.Status) string {
	var b strings.Builder

	stats := status.Stats
	summary := []string{
		fmt.Sprintf("%s records across %s tasks-days",
			Bold(fmt.Sprintf("%d", stats.TotalRecords)),
			Bold(fmt.Sprintf("%d", len(status.Days)))),
		fmt.Sprintf("%d backfilled, %d daily", stats.BackfilledCount, stats.DailyCount),
	}
	if !stats.EarliestDate.IsZero() {
		summary = append(summary, fmt.Sprintf("history %s to %s",
			stats.EarliestDate.Format(domain.DateLayout),
			stats.LatestDate.Format(domain.DateLayout)))
	}
	if stats.ViolationCount > 0 {
		summary = append(summary, StyleRed.Render(
			fmt.Sprintf("%d rejected write attempts", stats.ViolationCount)))
	} else {
		summary = append(summary, StyleGreen.Render("no protection violations"))
	}
	b.WriteString(RenderBox(status.ProjectName+" history", strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	if len(status.Days) > 0 {
		rows := make([][]string, 0, len(status.Days))
		for _, d := range status.Days {
			rows = append(rows, []string{
				d.Date.Format(domain.DateLayout),
				fmt.Sprintf("%d", d.TaskCount),
				fmt.Sprintf("%d", d.BackfilledCount),
				fmt.Sprintf("%d", d.DailyCount),
				fmt.Sprintf("%d", d.LabeledCount),
			})
		}
		b.WriteString(Header("per-day breakdown"))
		b.WriteString("\n")
		b.WriteString(RenderTable(
			[]string{"Date", "Tasks", "Backfilled", "Daily", "Labeled"}, rows))
	}

	if len(status.Violations) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("recent violations"))
		b.WriteString("\n")
		rows := make([][]string, 0, len(status.Violations))
		for _, v := range status.Violations {
			rows = append(rows, []string{
				v.LoggedAt.Format("2006-01-02 15:04"),
				v.TaskName,
				v.RecordDate.Format(domain.DateLayout),
				Percent(v.Stored),
				StyleRed.Render(Percent(v.Attempted)),
			})
		}
		b.WriteString(RenderTable(
			[]string{"Logged", "Task", "Date", "Stored", "Attempted"}, rows))
	}

	return b.String()
}
