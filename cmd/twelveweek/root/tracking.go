package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/ui"
)

func newHabitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Track habits of the current cycle",
	}
	cmd.AddCommand(newHabitAddCmd(), newHabitToggleCmd(), newHabitRmCmd())
	return cmd
}

func newHabitAddCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: args[0], TargetDaysPerWeek: days})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Habit %s added (%d days/week) %s\n",
				ui.IconPlus, ui.Key.Render(habit.Name), habit.TargetDaysPerWeek, ui.Muted.Render(ui.ShortID(habit.ID)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", domain.DefaultTargetDaysPerWeek, "Target days per week (1-7)")
	return cmd
}

func newHabitToggleCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark or unmark a habit for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := currentCycle(store)
			if err != nil {
				return err
			}
			id, err := resolveID("habit", habitIDs(c), args[0])
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().Format(domain.DateLayout)
			}
			if err := store.ToggleHabitCompletion(ctx, id, date); err != nil {
				return err
			}

			c, _ = store.CurrentCycle()
			for _, h := range c.Habits {
				if h.ID == id {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s\n", ui.Check(h.IsCompletedOn(date)), h.Name, date)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Day YYYY-MM-DD (default today)")
	return cmd
}

func newHabitRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a habit and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := currentCycle(store)
			if err != nil {
				return err
			}
			id, err := resolveID("habit", habitIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteHabit(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Habit %s deleted\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Weekly scorecards and lead indicators",
	}
	cmd.AddCommand(newScoreRecordCmd(), newScoreIndicatorCmd())
	return cmd
}

// weekArg reads an explicit week, or falls back to the cycle's current week.
func weekArg(args []string, c *domain.Cycle) (int, error) {
	if len(args) == 0 {
		return c.CurrentWeek, nil
	}
	week, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidWeek, args[0])
	}
	return week, nil
}

func newScoreRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record [week]",
		Short: "Score a week from the current task list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := currentCycle(store)
			if err != nil {
				return err
			}
			week, err := weekArg(args, c)
			if err != nil {
				return err
			}

			score, err := store.RecordWeeklyScore(ctx, week)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Week %d: %d/%d tasks, %s\n",
				ui.IconScore, score.WeekNumber, score.CompletedTasks, score.PlannedTasks, ui.Rate(score.ExecutionRate))
			for _, ind := range score.LeadIndicators {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s %g/%g %s (%.0f%%)\n", ind.Name, ind.Actual, ind.Target, ind.Unit, domain.IndicatorAttainment(ind))
			}
			return nil
		},
	}
}

func newScoreIndicatorCmd() *cobra.Command {
	var target float64
	var actual float64
	var unit string

	cmd := &cobra.Command{
		Use:   "indicator <week> <name>",
		Short: "Attach a lead indicator to a recorded week",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidWeek, args[0])
			}

			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ind, err := store.AddLeadIndicator(ctx, week, services.AddLeadIndicatorInput{
				Name:   args[1],
				Target: target,
				Actual: actual,
				Unit:   unit,
			})
			if err != nil {
				if errors.Is(err, domain.ErrScoreNotFound) {
					return fmt.Errorf("%w (run `twelveweek score record %d` first)", err, week)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %.0f%% of target\n", ui.IconPlus, ui.Key.Render(ind.Name), domain.IndicatorAttainment(*ind))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target value")
	cmd.Flags().Float64VarP(&actual, "actual", "a", 0, "Actual value")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Unit label")
	return cmd
}
