package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/burnup/internal/cli/formatter"
	"github.com/alexanderramin/burnup/internal/domain"
)

func newFixDatesCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "fix-dates <project> <task> <start> <end>",
		Short: "Correct a task's stored schedule across its whole history",
		Long: `Rewrites the start and end dates stored on every history record of
one task. Progress values are never touched. This is meant for fixing
schedules that were entered wrong, not for routine updates; routine
schedule changes flow in through daily updates.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, task := args[0], args[1]
			start, err := time.Parse(domain.DateLayout, args[2])
			if err != nil {
				return fmt.Errorf("invalid start date %q, want YYYY-MM-DD", args[2])
			}
			end, err := time.Parse(domain.DateLayout, args[3])
			if err != nil {
				return fmt.Errorf("invalid end date %q, want YYYY-MM-DD", args[3])
			}

			if !yes && isatty.IsTerminal(os.Stdin.Fd()) {
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Rewrite schedule of %q to %s .. %s on every record?",
							task, args[2], args[3])).
						Affirmative("Yes").
						Negative("No").
						Value(&confirmed),
				)).WithShowHelp(false)
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			affected, err := app.Coord.FixTaskDates(cmd.Context(), project, task, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				formatter.Bold(fmt.Sprintf("%d records updated", affected)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
