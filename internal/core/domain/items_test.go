package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

func TestNewGoal(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		progress int
		date     *string
		wantErr  error
	}{
		{name: "Success: Minimal", title: "Lose 5kg", progress: 0},
		{name: "Success: With Date", title: "Ship MVP", progress: 40, date: ptr("2026-04-06")},
		{name: "Error: Empty Title", title: "  ", wantErr: domain.ErrGoalTitleEmpty},
		{name: "Error: Progress Over 100", title: "x", progress: 101, wantErr: domain.ErrInvalidProgress},
		{name: "Error: Negative Progress", title: "x", progress: -1, wantErr: domain.ErrInvalidProgress},
		{name: "Error: Bad Date", title: "x", date: ptr("next week"), wantErr: domain.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := domain.NewGoal("c1", tt.title, "", tt.date, tt.progress)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "c1", g.CycleID)
			assert.Equal(t, tt.progress, g.Progress)
		})
	}
}

func TestGoalPatch_ClearTargetDate(t *testing.T) {
	g, err := domain.NewGoal("c1", "Read", "", ptr("2026-04-06"), 0)
	require.NoError(t, err)

	p := domain.GoalPatch{TargetDate: ptr("")}
	require.NoError(t, p.Validate())
	g.Apply(p)

	assert.Nil(t, g.TargetDate)
}

func TestNewWeeklyTask_Defaults(t *testing.T) {
	task, err := domain.NewWeeklyTask("c1", "Design schema", nil, nil)

	require.NoError(t, err)
	assert.False(t, task.Completed, "New tasks start incomplete")
	assert.Nil(t, task.GoalID)
	assert.Nil(t, task.DueDate)
}

func TestWeeklyTaskPatch_Detach(t *testing.T) {
	task, _ := domain.NewWeeklyTask("c1", "Design schema", ptr("g1"), nil)
	require.True(t, task.BelongsTo("g1"))

	p := domain.WeeklyTaskPatch{GoalID: ptr("")}
	require.NoError(t, p.Validate())
	task.Apply(p)

	assert.Nil(t, task.GoalID)
	assert.False(t, task.BelongsTo("g1"))
}

func TestNewDailyAction(t *testing.T) {
	t.Run("Success: Priority defaults to medium", func(t *testing.T) {
		a, err := domain.NewDailyAction("c1", "Jog", "2026-01-16", "")
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityMedium, a.Priority)
	})

	t.Run("Error: Unknown priority", func(t *testing.T) {
		_, err := domain.NewDailyAction("c1", "Jog", "2026-01-16", "urgent")
		assert.Equal(t, domain.ErrInvalidPriority, err)
	})

	t.Run("Error: Missing date", func(t *testing.T) {
		_, err := domain.NewDailyAction("c1", "Jog", "", domain.PriorityHigh)
		assert.Equal(t, domain.ErrInvalidDate, err)
	})
}

func TestActionsOn_PriorityOrder(t *testing.T) {
	actions := []domain.DailyAction{
		{ID: "1", Date: "2026-01-16", Priority: domain.PriorityLow},
		{ID: "2", Date: "2026-01-16", Priority: domain.PriorityHigh},
		{ID: "3", Date: "2026-01-17", Priority: domain.PriorityHigh},
		{ID: "4", Date: "2026-01-16", Priority: domain.PriorityMedium},
	}

	got := domain.ActionsOn(actions, "2026-01-16")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "4", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestNewHabit_Defaults(t *testing.T) {
	h, err := domain.NewHabit("c1", "Meditate", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, h.TargetDaysPerWeek)
	assert.Empty(t, h.CompletedDates)

	_, err = domain.NewHabit("c1", "Meditate", 8)
	assert.Equal(t, domain.ErrInvalidTargetDays, err)
}

func TestHabit_ToggleDate(t *testing.T) {
	t.Run("Double toggle restores the original state", func(t *testing.T) {
		h, _ := domain.NewHabit("c1", "Water", 7)
		h.CompletedDates = []string{"2026-01-13"}

		h.ToggleDate("2026-01-14")
		assert.True(t, h.IsCompletedOn("2026-01-14"))

		h.ToggleDate("2026-01-14")
		assert.False(t, h.IsCompletedOn("2026-01-14"))
		assert.Equal(t, []string{"2026-01-13"}, h.CompletedDates)
	})

	t.Run("Never produces duplicates", func(t *testing.T) {
		h, _ := domain.NewHabit("c1", "Water", 7)
		for i := 0; i < 7; i++ {
			h.ToggleDate("2026-01-14")
		}
		h.SetCompleted("2026-01-14", true)
		h.SetCompleted("2026-01-14", true)

		assert.Equal(t, []string{"2026-01-14"}, h.CompletedDates)
	})
}

func TestNewWeeklyScore(t *testing.T) {
	s, err := domain.NewWeeklyScore("c1", 3, 10, 8)
	require.NoError(t, err)
	assert.Equal(t, 80, s.ExecutionRate)

	_, err = domain.NewWeeklyScore("c1", 13, 1, 1)
	assert.Equal(t, domain.ErrInvalidWeek, err)

	_, err = domain.NewWeeklyScore("c1", 2, 3, 4)
	assert.Equal(t, domain.ErrInvalidTaskCounts, err)
}

func TestNewLeadIndicator_Defaults(t *testing.T) {
	ind, err := domain.NewLeadIndicator("s1", "Workouts", 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, ind.Target)
	assert.Equal(t, 0.0, ind.Actual)
	assert.Equal(t, "", ind.Unit)
}
