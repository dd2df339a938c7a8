package domain

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("cycle does not belong to user")

type CycleRepository interface {
	// ListCycles loads every cycle of a user as a full tree, newest first.
	ListCycles(ctx context.Context, userID string) ([]*Cycle, error)

	// GetCycle loads a single cycle as a full tree.
	GetCycle(ctx context.Context, cycleID string) (*Cycle, error)

	// ListActiveCycles returns the headers (no children) of every active cycle across users.
	ListActiveCycles(ctx context.Context) ([]*Cycle, error)

	// CreateCycle persists the header of a new cycle.
	CreateCycle(ctx context.Context, cycle *Cycle) error

	// UpdateCycle applies a partial update and returns the new header.
	UpdateCycle(ctx context.Context, cycleID string, patch CyclePatch) (*Cycle, error)

	// DeleteCycle removes the cycle and all of its children.
	DeleteCycle(ctx context.Context, cycleID string) error
}

type GoalRepository interface {
	ListGoals(ctx context.Context, cycleID string) ([]Goal, error)
	CreateGoal(ctx context.Context, goal *Goal) error
	UpdateGoal(ctx context.Context, cycleID, goalID string, patch GoalPatch) (*Goal, error)

	// DeleteGoal removes the goal and detaches the weekly tasks that referenced it.
	DeleteGoal(ctx context.Context, cycleID, goalID string) error
}

type WeeklyTaskRepository interface {
	ListWeeklyTasks(ctx context.Context, cycleID string) ([]WeeklyTask, error)
	CreateWeeklyTask(ctx context.Context, task *WeeklyTask) error
	UpdateWeeklyTask(ctx context.Context, cycleID, taskID string, patch WeeklyTaskPatch) (*WeeklyTask, error)
	DeleteWeeklyTask(ctx context.Context, cycleID, taskID string) error

	// ToggleWeeklyTask flips the completed flag only if it still equals wasCompleted.
	// A mismatch returns ErrToggleConflict.
	ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*WeeklyTask, error)
}

type DailyActionRepository interface {
	// ListDailyActions returns a cycle's actions by ascending date.
	ListDailyActions(ctx context.Context, cycleID string) ([]DailyAction, error)

	// ListDailyActionsByDate returns one day's actions, highest priority first.
	ListDailyActionsByDate(ctx context.Context, cycleID, date string) ([]DailyAction, error)

	CreateDailyAction(ctx context.Context, action *DailyAction) error
	UpdateDailyAction(ctx context.Context, cycleID, actionID string, patch DailyActionPatch) (*DailyAction, error)
	DeleteDailyAction(ctx context.Context, cycleID, actionID string) error
	ToggleDailyAction(ctx context.Context, cycleID, actionID string, wasCompleted bool) (*DailyAction, error)
}

// CompletionWriter holds the two primitive completion operations.
type CompletionWriter interface {
	// AddHabitCompletion fails with ErrCompletionExists if the date is already recorded.
	AddHabitCompletion(ctx context.Context, cycleID, habitID, date string) (*HabitCompletion, error)

	// RemoveHabitCompletion fails with ErrCompletionNotFound if the date is not recorded.
	RemoveHabitCompletion(ctx context.Context, cycleID, habitID, date string) error
}

type HabitRepository interface {
	CompletionWriter

	// ListHabits returns habits with their completed dates, oldest first.
	ListHabits(ctx context.Context, cycleID string) ([]Habit, error)
	CreateHabit(ctx context.Context, habit *Habit) error
	UpdateHabit(ctx context.Context, cycleID, habitID string, patch HabitPatch) (*Habit, error)
	DeleteHabit(ctx context.Context, cycleID, habitID string) error

	// ToggleHabitCompletion removes the date when wasCompleted, adds it otherwise, and reports
	// the resulting state. The decision is the caller's, the store does not re-read first.
	ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error)
}

type WeeklyScoreRepository interface {
	// ListWeeklyScores returns scores with their indicators by ascending week.
	ListWeeklyScores(ctx context.Context, cycleID string) ([]WeeklyScore, error)
	GetWeeklyScore(ctx context.Context, cycleID string, week int) (*WeeklyScore, error)

	// UpsertWeeklyScore inserts or updates the row keyed by (cycle, week). On update the
	// existing row id is written back into score.ID.
	UpsertWeeklyScore(ctx context.Context, score *WeeklyScore) error

	CreateLeadIndicator(ctx context.Context, cycleID string, indicator *LeadIndicator) error
	UpdateLeadIndicator(ctx context.Context, cycleID, indicatorID string, patch LeadIndicatorPatch) (*LeadIndicator, error)
	DeleteLeadIndicator(ctx context.Context, cycleID, indicatorID string) error
}

// Gateway is the full remote surface the cycle store talks to.
type Gateway interface {
	CycleRepository
	GoalRepository
	WeeklyTaskRepository
	DailyActionRepository
	HabitRepository
	WeeklyScoreRepository
}

// ToggleCompletion implements the convenience toggle on top of the two primitives.
func ToggleCompletion(ctx context.Context, w CompletionWriter, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	if wasCompleted {
		err := w.RemoveHabitCompletion(ctx, cycleID, habitID, date)
		if errors.Is(err, ErrCompletionNotFound) {
			return false, fmt.Errorf("%w: %s was not completed on %s", ErrToggleConflict, habitID, date)
		}
		return false, err
	}

	_, err := w.AddHabitCompletion(ctx, cycleID, habitID, date)
	if errors.Is(err, ErrCompletionExists) {
		return true, fmt.Errorf("%w: %s already completed on %s", ErrToggleConflict, habitID, date)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
