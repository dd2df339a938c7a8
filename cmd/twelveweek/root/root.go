package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/twelve-week-sync/internal/ui"
)

const Version = "0.1.0"

var configPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "twelveweek",
		Short:         "Plan and score a 12 week year from the terminal",
		Long:          "twelveweek manages cycles, goals, weekly tactics, daily actions, habits and scorecards on the configured backend.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults + environment when empty)")

	cmd.AddCommand(
		newStatusCmd(),
		newCycleCmd(),
		newGoalCmd(),
		newTaskCmd(),
		newActionCmd(),
		newHabitCmd(),
		newScoreCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
