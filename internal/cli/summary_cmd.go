package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/cli/formatter"
	"github.com/alexanderramin/burnup/internal/domain"
	"github.com/alexanderramin/burnup/internal/ingest"
)

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <snapshot-file>",
		Short: "Summarize a snapshot file without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := ingest.LoadRows(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := ingest.Summarize(rows)
			years := make([]string, 0, len(s.YearsCovered))
			for _, y := range s.YearsCovered {
				years = append(years, strconv.Itoa(y))
			}
			lines := []string{
				fmt.Sprintf("%d tasks", s.TaskCount),
				fmt.Sprintf("schedules %s to %s",
					s.EarliestStart.Format(domain.DateLayout),
					s.LatestEnd.Format(domain.DateLayout)),
				"years covered: " + strings.Join(years, ", "),
			}
			fmt.Fprintln(out, formatter.RenderBox("snapshot", strings.Join(lines, "\n")))

			if errs := ingest.ValidateRows(rows); len(errs) > 0 {
				fmt.Fprintln(out, formatter.Header("problems"))
				for _, e := range errs {
					fmt.Fprintln(out, "  - "+e.Error())
				}
				return fmt.Errorf("%d invalid rows", len(errs))
			}
			return nil
		},
	}
}
