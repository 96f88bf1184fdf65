package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/cli/formatter"
	"github.com/alexanderramin/burnup/internal/ingest"
)

func newInitCmd(app *App) *cobra.Command {
	var flags snapshotFlags

	cmd := &cobra.Command{
		Use:   "init <snapshot-file>",
		Short: "Initialize project history with a smooth backfill",
		Long: `Seeds the progress history from a task snapshot file (CSV or JSON).
A synthetic daily series is backfilled from the earliest task start
date, and the plan baseline is frozen. Each project may only be
initialized once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := flags.asOfDate()
			rows, err := flags.loadRows(args[0])
			if err != nil {
				return err
			}

			names, grouped := byProject(rows)
			for _, name := range names {
				report, err := app.Coord.Initialize(cmd.Context(), name,
					ingest.ToRecords(grouped[name], asOf), asOf)
				if err != nil {
					return fmt.Errorf("initializing %s: %w", name, err)
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatInitReport(report))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
