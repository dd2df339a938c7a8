package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleStore_Habits(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Toggle Twice Restores State", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Meditate", TargetDaysPerWeek: 5})
		require.NoError(t, err)

		require.NoError(t, store.ToggleHabitCompletion(ctx, habit.ID, "2026-01-14"))
		current, _ := store.CurrentCycle()
		assert.Equal(t, []string{"2026-01-14"}, current.Habits[0].CompletedDates)

		require.NoError(t, store.ToggleHabitCompletion(ctx, habit.ID, "2026-01-14"))
		current, _ = store.CurrentCycle()
		assert.Empty(t, current.Habits[0].CompletedDates)
		assert.Empty(t, gw.Snapshot()[0].Habits[0].CompletedDates)
	})

	t.Run("Success: Update And Delete", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Meditate", TargetDaysPerWeek: 5})
		require.NoError(t, err)

		require.NoError(t, store.UpdateHabit(ctx, habit.ID, domain.HabitPatch{TargetDaysPerWeek: ptr(7)}))
		current, _ := store.CurrentCycle()
		assert.Equal(t, 7, current.Habits[0].TargetDaysPerWeek)

		require.NoError(t, store.DeleteHabit(ctx, habit.ID))
		current, _ = store.CurrentCycle()
		assert.Empty(t, current.Habits)
	})

	t.Run("Fail: Invalid Input", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

		_, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Run", TargetDaysPerWeek: 8})
		assert.ErrorIs(t, err, domain.ErrInvalidTargetDays)

		habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Run", TargetDaysPerWeek: 3})
		require.NoError(t, err)
		assert.ErrorIs(t, store.ToggleHabitCompletion(ctx, habit.ID, "14/01/2026"), domain.ErrInvalidDate)
		assert.Empty(t, store.LastError())
	})

	t.Run("Fail: Conflict Reconciles With The Remote State", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Meditate", TargetDaysPerWeek: 5})
		require.NoError(t, err)

		_, err = gw.AddHabitCompletion(ctx, habit.CycleID, habit.ID, "2026-01-14")
		require.NoError(t, err)

		err = store.ToggleHabitCompletion(ctx, habit.ID, "2026-01-14")
		assert.ErrorIs(t, err, domain.ErrToggleConflict)

		current, _ := store.CurrentCycle()
		assert.True(t, current.Habits[0].IsCompletedOn("2026-01-14"))
	})

	t.Run("Fail: Remote Error Leaves Dates Unchanged", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		habit, err := store.AddHabit(ctx, services.AddHabitInput{Name: "Meditate", TargetDaysPerWeek: 5})
		require.NoError(t, err)
		before := store.Cycles()

		gw.SetError(errRemote)
		assert.ErrorIs(t, store.ToggleHabitCompletion(ctx, habit.ID, "2026-01-14"), errRemote)
		assert.Equal(t, before, store.Cycles())
	})
}

func TestCycleStore_WeeklyScores(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Counts Come From The Loaded Tasks", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		for _, title := range []string{"a", "b", "c"} {
			task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: title})
			require.NoError(t, err)
			if title != "c" {
				require.NoError(t, store.ToggleWeeklyTask(ctx, task.ID))
			}
		}

		score, err := store.RecordWeeklyScore(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, score.PlannedTasks)
		assert.Equal(t, 2, score.CompletedTasks)
		assert.Equal(t, 67, score.ExecutionRate)
	})

	t.Run("Success: Recording Twice Keeps One Row And Its Indicators", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "a"})
		require.NoError(t, err)

		first, err := store.RecordWeeklyScore(ctx, 2)
		require.NoError(t, err)
		_, err = store.AddLeadIndicator(ctx, 2, services.AddLeadIndicatorInput{Name: "Sales calls", Target: 10, Actual: 4, Unit: "calls"})
		require.NoError(t, err)

		require.NoError(t, store.ToggleWeeklyTask(ctx, task.ID))
		second, err := store.RecordWeeklyScore(ctx, 2)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		current, _ := store.CurrentCycle()
		require.Len(t, current.WeeklyScores, 1)
		assert.Equal(t, 100, current.WeeklyScores[0].ExecutionRate)
		require.Len(t, current.WeeklyScores[0].LeadIndicators, 1)
		assert.Equal(t, "Sales calls", current.WeeklyScores[0].LeadIndicators[0].Name)

		remote := gw.Snapshot()[0]
		assert.Len(t, remote.WeeklyScores, 1)
	})

	t.Run("Success: Scores Stay Sorted By Week", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		for _, week := range []int{3, 1, 2} {
			_, err := store.RecordWeeklyScore(ctx, week)
			require.NoError(t, err)
		}

		current, _ := store.CurrentCycle()
		require.Len(t, current.WeeklyScores, 3)
		for i, sc := range current.WeeklyScores {
			assert.Equal(t, i+1, sc.WeekNumber)
		}
		assert.Len(t, store.Dashboard(time.Now()).Trend, domain.CycleWeeks)
	})

	t.Run("Fail: Week Out Of Range", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

		_, err := store.RecordWeeklyScore(ctx, 13)
		assert.ErrorIs(t, err, domain.ErrInvalidWeek)
		_, err = store.RecordWeeklyScore(ctx, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidWeek)
	})

	t.Run("Fail: Remote Error Records Nothing", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		gw.SetError(errRemote)

		_, err := store.RecordWeeklyScore(ctx, 1)
		assert.ErrorIs(t, err, errRemote)
		current, _ := store.CurrentCycle()
		assert.Empty(t, current.WeeklyScores)
	})
}

func TestCycleStore_LeadIndicators(t *testing.T) {
	ctx := context.Background()
	store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

	_, err := store.AddLeadIndicator(ctx, 1, services.AddLeadIndicatorInput{Name: "Calls", Target: 10})
	assert.ErrorIs(t, err, domain.ErrScoreNotFound)

	_, err = store.RecordWeeklyScore(ctx, 1)
	require.NoError(t, err)
	ind, err := store.AddLeadIndicator(ctx, 1, services.AddLeadIndicatorInput{Name: "Calls", Target: 10, Actual: 2})
	require.NoError(t, err)

	require.NoError(t, store.UpdateLeadIndicator(ctx, ind.ID, domain.LeadIndicatorPatch{Actual: ptr(8.0)}))
	current, _ := store.CurrentCycle()
	assert.Equal(t, 8.0, current.WeeklyScores[0].LeadIndicators[0].Actual)

	assert.NoError(t, store.UpdateLeadIndicator(ctx, "missing", domain.LeadIndicatorPatch{Actual: ptr(1.0)}))

	require.NoError(t, store.DeleteLeadIndicator(ctx, ind.ID))
	current, _ = store.CurrentCycle()
	assert.Empty(t, current.WeeklyScores[0].LeadIndicators)
}
