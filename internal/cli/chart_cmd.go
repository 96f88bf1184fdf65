package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/chart"
	"github.com/alexanderramin/burnup/internal/cli/formatter"
)

func newChartCmd(app *App) *cobra.Command {
	var asOfFlag dateFlag

	cmd := &cobra.Command{
		Use:   "chart <project>",
		Short: "Render the project's burn-up chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := asOfFlag.or(time.Now().UTC())

			data, err := app.Charts.Build(cmd.Context(), args[0], asOf, chart.Options{
				BufferDays:      app.Cfg.Chart.BufferDays,
				MinRangeDays:    app.Cfg.Chart.MinRangeDays,
				GroupWindowDays: app.Cfg.Annotations.GroupWindowDays,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChart(data))
			return nil
		},
	}

	cmd.Flags().Var(&asOfFlag, "as-of", "Effective date (YYYY-MM-DD, default today)")
	return cmd
}
