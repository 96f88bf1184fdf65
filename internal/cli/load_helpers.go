package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/ingest"
)

// dateFlag parses a calendar-day flag value at flag-parse time.
type dateFlag struct {
	t time.Time
}

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateFlag) Set(s string) error {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	d.t = domain.Day(t)
	return nil
}

func (d *dateFlag) Type() string { return "date" }

// or returns the parsed date, or fallback when the flag was not set.
func (d *dateFlag) or(fallback time.Time) time.Time {
	if d.t.IsZero() {
		return domain.Day(fallback)
	}
	return d.t
}

// snapshotFlags are the input flags shared by init and update.
type snapshotFlags struct {
	asOf dateFlag
	year int
	from dateFlag
	to   dateFlag
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&f.asOf, "as-of", "Effective date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&f.year, "year", 0, "Keep only tasks touching this year")
	cmd.Flags().Var(&f.from, "from", "Keep only tasks overlapping from this date")
	cmd.Flags().Var(&f.to, "to", "Keep only tasks overlapping up to this date")
}

func (f *snapshotFlags) asOfDate() time.Time {
	return f.asOf.or(time.Now().UTC())
}

// loadRows loads the snapshot file and applies the requested filters.
func (f *snapshotFlags) loadRows(path string) ([]ingest.Row, error) {
	rows, err := ingest.LoadRows(path)
	if err != nil {
		return nil, err
	}
	if errs := ingest.ValidateRows(rows); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, "  - "+e.Error())
		}
		return nil, fmt.Errorf("input validation failed (%d errors):\n%s",
			len(errs), strings.Join(msgs, "\n"))
	}

	switch {
	case f.year != 0:
		ok, msg := ingest.ValidateYearFilter(rows, f.year)
		if !ok {
			return nil, fmt.Errorf("year filter: %s", msg)
		}
		rows = ingest.FilterWithinYear(rows, f.year)
	case !f.from.t.IsZero() || !f.to.t.IsZero():
		if !f.from.t.IsZero() && !f.to.t.IsZero() && f.to.t.Before(f.from.t) {
			return nil, fmt.Errorf("--to %s is before --from %s", f.to.String(), f.from.String())
		}
		rows = ingest.FilterByDateRange(rows, f.from.t, f.to.t)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no tasks left after filtering")
	}
	return rows, nil
}

// byProject splits rows per project, keeping first-seen order.
func byProject(rows []ingest.Row) (names []string, grouped map[string][]ingest.Row) {
	grouped = make(map[string][]ingest.Row)
	for _, row := range rows {
		if _, ok := grouped[row.ProjectName]; !ok {
			names = append(names, row.ProjectName)
		}
		grouped[row.ProjectName] = append(grouped[row.ProjectName], row)
	}
	return names, grouped
}
