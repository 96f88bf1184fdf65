package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/chart"
	"github.com/alexanderramin/burnup/internal/config"
	"github.com/alexanderramin/burnup/internal/history"
)

// App holds the wired services used by CLI commands.
type App struct {
	Coord  *history.Coordinator
	Charts *chart.Builder
	Cfg    *config.Config
}

// NewRootCmd creates the top-level "burnup" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "burnup",
		Short:         "Burn-up chart tracker with protected progress history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newInitCmd(app),
		newUpdateCmd(app),
		newStatusCmd(app),
		newChartCmd(app),
		newSummaryCmd(app),
		newFixDatesCmd(app),
	)

	return root
}
