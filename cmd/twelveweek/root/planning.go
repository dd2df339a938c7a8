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

func requireTitle(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("title is required")
	}
	return nil
}

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage the goals of the current cycle",
	}
	cmd.AddCommand(newGoalAddCmd(), newGoalProgressCmd(), newGoalRmCmd())
	return cmd
}

func newGoalAddCmd() *cobra.Command {
	var description string
	var target string
	var progress int

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			goal, err := store.AddGoal(ctx, services.AddGoalInput{
				Title:       args[0],
				Description: description,
				TargetDate:  optional(target),
				Progress:    progress,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Goal %s added %s\n", ui.IconPlus, ui.Key.Render(goal.Title), ui.Muted.Render(ui.ShortID(goal.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target date YYYY-MM-DD")
	cmd.Flags().IntVarP(&progress, "progress", "p", 0, "Initial progress (0-100)")
	return cmd
}

func newGoalProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <percent>",
		Short: "Set the progress of a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidProgress, args[1])
			}

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
			id, err := resolveID("goal", goalIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.UpdateGoal(ctx, id, domain.GoalPatch{Progress: &progress}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Goals", fmt.Sprintf("%d%% overall", store.AggregateGoalProgress())))
			return nil
		},
	}
}

func newGoalRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal (its tasks are kept)",
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
			id, err := resolveID("goal", goalIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteGoal(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Goal %s deleted\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage weekly tactics",
	}
	cmd.AddCommand(newTaskAddCmd(), newTaskToggleCmd(), newTaskRmCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var goal string
	var due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a weekly task",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			input := services.AddWeeklyTaskInput{Title: args[0], DueDate: optional(due)}
			if goal != "" {
				c, err := currentCycle(store)
				if err != nil {
					return err
				}
				id, err := resolveID("goal", goalIDs(c), goal)
				if err != nil {
					return err
				}
				input.GoalID = &id
			}

			task, err := store.AddWeeklyTask(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Task %s added %s\n", ui.IconPlus, ui.Key.Render(task.Title), ui.Muted.Render(ui.ShortID(task.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Goal id (or prefix) the task serves")
	cmd.Flags().StringVar(&due, "due", "", "Due date YYYY-MM-DD")
	return cmd
}

func newTaskToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a weekly task between done and open",
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
			id, err := resolveID("task", taskIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.ToggleWeeklyTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Execution", ui.Rate(store.WeeklyExecutionRate())))
			return nil
		},
	}
}

func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a weekly task",
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
			id, err := resolveID("task", taskIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteWeeklyTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Task %s deleted\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}

func newActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage daily actions",
	}
	cmd.AddCommand(newActionAddCmd(), newActionToggleCmd(), newActionRmCmd())
	return cmd
}

func newActionAddCmd() *cobra.Command {
	var date string
	var priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Plan a daily action",
		Args:  requireTitle,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if date == "" {
				date = time.Now().Format(domain.DateLayout)
			}
			action, err := store.AddDailyAction(ctx, services.AddDailyActionInput{Title: args[0], Date: date, Priority: priority})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Action %s on %s (%s) %s\n",
				ui.IconPlus, ui.Key.Render(action.Title), action.Date, ui.Priority(action.Priority), ui.Muted.Render(ui.ShortID(action.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Day YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high|medium|low (default medium)")
	return cmd
}

func newActionToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a daily action between done and open",
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
			id, err := resolveID("action", actionIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.ToggleDailyAction(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Action %s toggled\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}

func newActionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a daily action",
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
			id, err := resolveID("action", actionIDs(c), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteDailyAction(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Action %s deleted\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}
