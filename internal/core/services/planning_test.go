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

func TestCycleStore_Goals(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Add Update And Aggregate", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

		first, err := store.AddGoal(ctx, services.AddGoalInput{Title: "Ship MVP", Progress: 20})
		require.NoError(t, err)
		_, err = store.AddGoal(ctx, services.AddGoalInput{Title: "Read", Progress: 40})
		require.NoError(t, err)

		require.NoError(t, store.UpdateGoal(ctx, first.ID, domain.GoalPatch{Progress: ptr(60)}))

		assert.Equal(t, 60, store.GoalProgress(first.ID))
		assert.Equal(t, 50, store.AggregateGoalProgress())
		assert.Equal(t, 0, store.GoalProgress("missing"))
	})

	t.Run("Success: Delete Detaches Tasks", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		goal, err := store.AddGoal(ctx, services.AddGoalInput{Title: "Ship MVP"})
		require.NoError(t, err)
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Schema", GoalID: ptr(goal.ID)})
		require.NoError(t, err)

		require.NoError(t, store.DeleteGoal(ctx, goal.ID))

		current, _ := store.CurrentCycle()
		assert.Empty(t, current.Goals)
		require.Len(t, current.WeeklyTasks, 1)
		assert.Equal(t, task.ID, current.WeeklyTasks[0].ID)
		assert.Nil(t, current.WeeklyTasks[0].GoalID)

		remote := gw.Snapshot()[0]
		assert.Nil(t, remote.WeeklyTasks[0].GoalID)
	})

	t.Run("Success: Missing Goal Is A No-Op", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		gw.SetError(errRemote)

		assert.NoError(t, store.UpdateGoal(ctx, "missing", domain.GoalPatch{Title: ptr("x")}))
		assert.NoError(t, store.DeleteGoal(ctx, "missing"))
		assert.Empty(t, store.LastError())
	})

	t.Run("Fail: Validation", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

		_, err := store.AddGoal(ctx, services.AddGoalInput{Title: "x", Progress: 101})
		assert.ErrorIs(t, err, domain.ErrInvalidProgress)
		_, err = store.AddGoal(ctx, services.AddGoalInput{Title: ""})
		assert.ErrorIs(t, err, domain.ErrGoalTitleEmpty)
		assert.Empty(t, store.LastError())
	})

	t.Run("Fail: Remote Error Leaves State Unchanged", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		goal, err := store.AddGoal(ctx, services.AddGoalInput{Title: "Keep"})
		require.NoError(t, err)
		before := store.Cycles()

		gw.SetError(errRemote)
		_, err = store.AddGoal(ctx, services.AddGoalInput{Title: "Lost"})
		assert.ErrorIs(t, err, errRemote)
		assert.ErrorIs(t, store.DeleteGoal(ctx, goal.ID), errRemote)

		assert.Equal(t, before, store.Cycles())
		assert.Equal(t, errRemote.Error(), store.LastError())
	})
}

func TestCycleStore_WeeklyTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Toggle Twice Restores State", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Schema"})
		require.NoError(t, err)
		assert.False(t, task.Completed)

		require.NoError(t, store.ToggleWeeklyTask(ctx, task.ID))
		current, _ := store.CurrentCycle()
		assert.True(t, current.WeeklyTasks[0].Completed)
		assert.Equal(t, 100, store.WeeklyExecutionRate())

		require.NoError(t, store.ToggleWeeklyTask(ctx, task.ID))
		current, _ = store.CurrentCycle()
		assert.False(t, current.WeeklyTasks[0].Completed)
		assert.Equal(t, 0, store.WeeklyExecutionRate())
	})

	t.Run("Success: Update And Delete", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Schema"})
		require.NoError(t, err)

		require.NoError(t, store.UpdateWeeklyTask(ctx, task.ID, domain.WeeklyTaskPatch{Title: ptr("Schema v2"), DueDate: ptr("2026-01-20")}))
		current, _ := store.CurrentCycle()
		assert.Equal(t, "Schema v2", current.WeeklyTasks[0].Title)
		assert.Equal(t, "2026-01-20", *current.WeeklyTasks[0].DueDate)

		require.NoError(t, store.DeleteWeeklyTask(ctx, task.ID))
		current, _ = store.CurrentCycle()
		assert.Empty(t, current.WeeklyTasks)
	})

	t.Run("Fail: Unknown Goal Reference", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

		_, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Orphan", GoalID: ptr("missing")})
		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
		current, _ := store.CurrentCycle()
		assert.Empty(t, current.WeeklyTasks)
	})

	t.Run("Fail: Conflict Reconciles With The Remote State", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Schema"})
		require.NoError(t, err)

		// Another device completes the task behind the store's back.
		_, err = gw.MemoryGateway.ToggleWeeklyTask(ctx, task.CycleID, task.ID, false)
		require.NoError(t, err)

		err = store.ToggleWeeklyTask(ctx, task.ID)
		assert.ErrorIs(t, err, domain.ErrToggleConflict)
		assert.NotEmpty(t, store.LastError())

		current, _ := store.CurrentCycle()
		assert.True(t, current.WeeklyTasks[0].Completed)

		require.NoError(t, store.ToggleWeeklyTask(ctx, task.ID))
		current, _ = store.CurrentCycle()
		assert.False(t, current.WeeklyTasks[0].Completed)
	})

	t.Run("Fail: Remote Error Keeps The Old Flag", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))
		task, err := store.AddWeeklyTask(ctx, services.AddWeeklyTaskInput{Title: "Schema"})
		require.NoError(t, err)
		before := store.Cycles()

		gw.SetError(errRemote)
		assert.ErrorIs(t, store.ToggleWeeklyTask(ctx, task.ID), errRemote)
		assert.Equal(t, before, store.Cycles())
	})
}

func TestCycleStore_DailyActions(t *testing.T) {
	ctx := context.Background()
	store, _ := newLoadedStore(t, newCycle(t, "Q1", "2026-01-13", time.Now()))

	low, err := store.AddDailyAction(ctx, services.AddDailyActionInput{Title: "Inbox zero", Date: "2026-01-16", Priority: domain.PriorityLow})
	require.NoError(t, err)
	high, err := store.AddDailyAction(ctx, services.AddDailyActionInput{Title: "Jog", Date: "2026-01-16", Priority: domain.PriorityHigh})
	require.NoError(t, err)
	_, err = store.AddDailyAction(ctx, services.AddDailyActionInput{Title: "Tomorrow", Date: "2026-01-17"})
	require.NoError(t, err)

	_, err = store.AddDailyAction(ctx, services.AddDailyActionInput{Title: "Bad", Date: "2026-01-16", Priority: "urgent"})
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)

	require.NoError(t, store.ToggleDailyAction(ctx, high.ID))
	require.NoError(t, store.UpdateDailyAction(ctx, low.ID, domain.DailyActionPatch{Priority: ptr(domain.PriorityMedium)}))

	day := time.Date(2026, 1, 16, 8, 0, 0, 0, time.UTC)
	today := store.Dashboard(day).TodayActions
	require.Len(t, today, 2)
	assert.Equal(t, high.ID, today[0].ID)
	assert.True(t, today[0].Completed)
	assert.Equal(t, domain.PriorityMedium, today[1].Priority)

	require.NoError(t, store.DeleteDailyAction(ctx, high.ID))
	assert.NoError(t, store.ToggleDailyAction(ctx, high.ID))
	assert.Len(t, store.Dashboard(day).TodayActions, 1)
}
