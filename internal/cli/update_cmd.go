package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/cli/formatter"
	"github.com/alexanderramin/burnup/internal/ingest"
)

func newUpdateCmd(app *App) *cobra.Command {
	var flags snapshotFlags

	cmd := &cobra.Command{
		Use:   "update <snapshot-file>",
		Short: "Record today's progress without touching history",
		Long: `Writes the snapshot's progress values for the effective date and
refreshes the current plan from the latest schedules. Rows dated in
the past are rejected, logged, and reported; stored history is never
modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := flags.asOfDate()
			rows, err := flags.loadRows(args[0])
			if err != nil {
				return err
			}

			names, grouped := byProject(rows)
			for _, name := range names {
				report, err := app.Coord.DailyUpdate(cmd.Context(), name,
					ingest.ToRecords(grouped[name], asOf), asOf)
				if err != nil {
					return fmt.Errorf("updating %s: %w", name, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUpdateReport(report))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
