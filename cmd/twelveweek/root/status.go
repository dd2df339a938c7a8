package root

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard of the selected cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			today := time.Now()
			if day != "" {
				if today, err = domain.ParseDate(day); err != nil {
					return err
				}
			}
			renderDashboard(cmd.OutOrStdout(), store.Dashboard(today))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "date", "", "Render the dashboard as of this day (YYYY-MM-DD)")
	return cmd
}

func renderDashboard(out io.Writer, d services.Dashboard) {
	if d.Cycle == nil {
		fmt.Fprintln(out, ui.Heading(ui.IconCycle, "No cycle selected"))
		fmt.Fprintln(out, ui.Muted.Render("Start one with `twelveweek cycle new <name> --start YYYY-MM-DD`."))
		return
	}
	c := d.Cycle

	fmt.Fprintln(out, ui.Heading(ui.IconCycle, c.Name))
	if c.Vision != "" {
		fmt.Fprintln(out, ui.Muted.Render(c.Vision))
	}
	week := fmt.Sprintf("%d of %d", c.CurrentWeek, domain.CycleWeeks)
	if c.CurrentWeek == domain.BufferWeek {
		week = "buffer week"
	}
	fmt.Fprintln(out, ui.LabelValue("Dates", c.StartDate+" → "+c.EndDate))
	fmt.Fprintln(out, ui.LabelValue("Status", ui.CycleStatus(c.Status)))
	fmt.Fprintln(out, ui.LabelValue("Week", fmt.Sprintf("%s (%d remaining)", week, d.WeeksRemaining)))

	target := ui.Bad.Render("below target")
	if d.TargetMet {
		target = ui.Good.Render("on target")
	}
	fmt.Fprintln(out, ui.LabelValue("Execution", ui.Rate(d.ExecutionRate)+" "+target))
	fmt.Fprintln(out, ui.LabelValue("Goals", fmt.Sprintf("%s %d%%", ui.Bar(d.GoalProgress, 20), d.GoalProgress)))
	fmt.Fprintln(out, "")

	if len(c.Goals) > 0 {
		fmt.Fprintln(out, ui.H2.Render(ui.IconGoal+" Goals"))
		for _, g := range c.Goals {
			fmt.Fprintf(out, "- %s %s %s %d%%\n", ui.Muted.Render(ui.ShortID(g.ID)), g.Title, ui.Bar(g.Progress, 10), g.Progress)
		}
		fmt.Fprintln(out, "")
	}

	if len(c.WeeklyTasks) > 0 {
		fmt.Fprintln(out, ui.H2.Render(ui.IconTask+" Weekly tactics"))
		for _, t := range c.WeeklyTasks {
			fmt.Fprintf(out, "- %s %s %s\n", ui.Check(t.Completed), ui.Muted.Render(ui.ShortID(t.ID)), t.Title)
		}
		fmt.Fprintln(out, "")
	}

	fmt.Fprintln(out, ui.H2.Render(ui.IconAction+" Today"))
	if len(d.TodayActions) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("- nothing planned"))
	}
	for _, a := range d.TodayActions {
		fmt.Fprintf(out, "- %s %s %s %s\n", ui.Check(a.Completed), ui.Muted.Render(ui.ShortID(a.ID)), a.Title, ui.Priority(a.Priority))
	}
	fmt.Fprintln(out, "")

	if len(d.Habits) > 0 {
		fmt.Fprintln(out, ui.H2.Render(ui.IconHabit+" Habits"))
		for _, h := range d.Habits {
			fmt.Fprintf(out, "- %s %s %s %s\n",
				ui.Check(h.CompletedToday),
				ui.Muted.Render(ui.ShortID(h.ID)),
				h.Name,
				ui.Muted.Render(fmt.Sprintf("%d/%d this week, streak %d (best %d)", h.CompletedThisWeek, h.TargetDaysPerWeek, h.CurrentStreak, h.LongestStreak)))
		}
		fmt.Fprintln(out, "")
	}

	fmt.Fprintln(out, ui.H2.Render(ui.IconScore+" Trend"))
	fmt.Fprintln(out, renderTrend(d.Trend))

	if d.LastError != "" {
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, ui.Bad.Render(ui.IconWarn+" "+d.LastError))
	}
}

func renderTrend(trend []domain.WeekRate) string {
	parts := make([]string, 0, len(trend))
	for _, p := range trend {
		parts = append(parts, fmt.Sprintf("W%d %s", p.Week, ui.Rate(p.Rate)))
	}
	return strings.Join(parts, "  ")
}
