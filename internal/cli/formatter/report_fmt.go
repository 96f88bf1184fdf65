package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/history"
)

// FormatInitReport renders the outcome of a project initialization.
func FormatInitReport(report *history.InitReport) string {
	lines := []string{
		fmt.Sprintf("%s initialized as of %s",
			Bold(report.ProjectName), report.AsOf.Format(domain.DateLayout)),
		fmt.Sprintf("%d tasks, %d history records backfilled", report.TaskCount, report.RecordCount),
		fmt.Sprintf("plan baseline frozen: %d points, %s to %s",
			report.PlanPoints,
			report.From.Format(domain.DateLayout),
			report.To.Format(domain.DateLayout)),
	}
	return RenderBox("initialized", strings.Join(lines, "\n")) + "\n"
}

// FormatUpdateReport renders the outcome of a daily update.
func FormatUpdateReport(report *history.UpdateReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s daily update\n",
		Bold(report.ProjectName), Dim(report.AsOf.Format(domain.DateLayout))))
	b.WriteString(fmt.Sprintf("  %s updated, %d unchanged",
		StyleGreen.Render(fmt.Sprintf("%d", report.Updated)), report.Unchanged))
	if report.IgnoredFuture > 0 {
		b.WriteString(fmt.Sprintf(", %d future rows ignored", report.IgnoredFuture))
	}
	b.WriteString("\n")
	if report.PlanReplaced {
		b.WriteString(Dim("  current plan refreshed from today's schedules") + "\n")
	}

	for _, p := range report.Skipped {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  skipped %s", p)) + "\n")
	}
	for _, v := range report.Violations {
		b.WriteString(StyleRed.Render(fmt.Sprintf(
			"  rejected %s @ %s: history is immutable (stored %s, attempted %s)",
			v.TaskName, v.RecordDate.Format(domain.DateLayout),
			Percent(v.Stored), Percent(v.Attempted))) + "\n")
	}
	if report.Clean() {
		b.WriteString(StyleGreen.Render("  history protection: clean") + "\n")
	}
	if report.BatchID != "" {
		b.WriteString(Dim(fmt.Sprintf("  batch %s", report.BatchID)) + "\n")
	}
	return b.String()
}
