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

func newCycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Create, list and switch 12-week cycles",
	}
	cmd.AddCommand(
		newCycleNewCmd(),
		newCycleListCmd(),
		newCycleSelectCmd(),
		newCycleEditCmd(),
		newCycleArchiveCmd(),
		newCycleDeleteCmd(),
		newCycleWeekCmd(),
	)
	return cmd
}

func newCycleNewCmd() *cobra.Command {
	var start string
	var vision string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Start a new cycle and select it",
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

			if start == "" {
				start = time.Now().Format(domain.DateLayout)
			}
			id, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: args[0], Vision: vision, StartDate: start})
			if err != nil {
				return err
			}

			c, _ := store.CurrentCycle()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cycle %s created (%s → %s) %s\n",
				ui.IconPlus, ui.Key.Render(c.Name), c.StartDate, c.EndDate, ui.Muted.Render(ui.ShortID(id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&start, "start", "s", "", "Start date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&vision, "vision", "v", "", "Vision statement")
	return cmd
}

func newCycleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every cycle, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cycles := store.Cycles()
			if len(cycles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No cycles yet."))
				return nil
			}
			current := store.CurrentCycleID()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconCycle, "Cycles"))
			for _, c := range cycles {
				marker := " "
				if c.ID == current {
					marker = ui.Good.Render("*")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %s\n",
					marker, ui.Muted.Render(ui.ShortID(c.ID)), c.Name,
					ui.Muted.Render(c.StartDate+" → "+c.EndDate), ui.CycleStatus(c.Status))
			}
			return nil
		},
	}
}

func newCycleSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a cycle the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveID("cycle", cycleIDs(store.Cycles()), args[0])
			if err != nil {
				return err
			}
			store.SelectCycle(id)

			c, _ := store.CurrentCycle()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Now working on %s\n", ui.IconDone, ui.Key.Render(c.Name))
			return nil
		},
	}
}

func newCycleEditCmd() *cobra.Command {
	var name string
	var vision string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Rename the current cycle or change its vision",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var patch domain.CyclePatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("vision") {
				patch.Vision = &vision
			}
			if err := store.UpdateCycle(ctx, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cycle updated\n", ui.IconDone)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&vision, "vision", "", "New vision")
	return cmd
}

func newCycleArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveID("cycle", cycleIDs(store.Cycles()), args[0])
			if err != nil {
				return err
			}
			if err := store.ArchiveCycle(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cycle %s archived\n", ui.IconDone, ui.ShortID(id))
			return nil
		},
	}
}

func newCycleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a cycle and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveID("cycle", cycleIDs(store.Cycles()), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteCycle(ctx, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Cycle %s deleted\n", ui.IconDone, ui.ShortID(id))
			if c, err := store.CurrentCycle(); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Current", c.Name))
			}
			return nil
		},
	}
}

func newCycleWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week <n>",
		Short: "Set the current week (values outside 1..13 are clamped)",
		Args:  cobra.ExactArgs(1),
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

			if err := store.SetCurrentWeek(ctx, week); err != nil {
				return err
			}
			c, _ := store.CurrentCycle()
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Week", c.CurrentWeek))
			return nil
		},
	}
}
