package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project>",
		Short: "Show history protection status for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := app.Coord.ProtectionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStatus(status))
			return nil
		},
	}
}
