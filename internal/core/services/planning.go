package services

import (
	"context"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

type AddGoalInput struct {
	Title       string
	Description string
	TargetDate  *string
	Progress    int
}

func (s *CycleStore) AddGoal(ctx context.Context, input AddGoalInput) (*domain.Goal, error) {
	cycleID, err := s.withCurrent(nil)
	if err != nil {
		return nil, err
	}
	goal, err := domain.NewGoal(cycleID, input.Title, input.Description, input.TargetDate, input.Progress)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CreateGoal(ctx, goal); err != nil {
		return nil, s.fail("add goal", err)
	}

	created := *goal
	s.apply(cycleID, func(c *domain.Cycle) {
		c.Goals = append(c.Goals, created)
	})
	return goal, nil
}

func hasGoal(goalID string) func(c *domain.Cycle) error {
	return func(c *domain.Cycle) error {
		for _, g := range c.Goals {
			if g.ID == goalID {
				return nil
			}
		}
		return domain.ErrGoalNotFound
	}
}

// UpdateGoal is a no-op when the goal is not loaded in the selected cycle.
func (s *CycleStore) UpdateGoal(ctx context.Context, goalID string, patch domain.GoalPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(hasGoal(goalID))
	if err == domain.ErrGoalNotFound || patch.IsEmpty() {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.UpdateGoal(ctx, cycleID, goalID, patch)
	if err != nil {
		return s.fail("update goal", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.Goals {
			if c.Goals[i].ID == goalID {
				c.Goals[i] = *updated
			}
		}
	})
	return nil
}

// DeleteGoal removes the goal and clears the goal reference of its tasks.
func (s *CycleStore) DeleteGoal(ctx context.Context, goalID string) error {
	cycleID, err := s.withCurrent(hasGoal(goalID))
	if err == domain.ErrGoalNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteGoal(ctx, cycleID, goalID); err != nil {
		return s.fail("delete goal", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		goals := make([]domain.Goal, 0, len(c.Goals))
		for _, g := range c.Goals {
			if g.ID != goalID {
				goals = append(goals, g)
			}
		}
		c.Goals = goals
		for i := range c.WeeklyTasks {
			if c.WeeklyTasks[i].BelongsTo(goalID) {
				c.WeeklyTasks[i].GoalID = nil
			}
		}
	})
	return nil
}

type AddWeeklyTaskInput struct {
	Title   string
	GoalID  *string
	DueDate *string
}

func (s *CycleStore) AddWeeklyTask(ctx context.Context, input AddWeeklyTaskInput) (*domain.WeeklyTask, error) {
	cycleID, err := s.withCurrent(nil)
	if err != nil {
		return nil, err
	}
	task, err := domain.NewWeeklyTask(cycleID, input.Title, input.GoalID, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CreateWeeklyTask(ctx, task); err != nil {
		return nil, s.fail("add weekly task", err)
	}

	created := *task
	s.apply(cycleID, func(c *domain.Cycle) {
		c.WeeklyTasks = append(c.WeeklyTasks, created)
	})
	return task, nil
}

// lookupTask reports the loaded completion state of a task in the selected cycle.
func lookupTask(taskID string, completed *bool) func(c *domain.Cycle) error {
	return func(c *domain.Cycle) error {
		for _, t := range c.WeeklyTasks {
			if t.ID == taskID {
				if completed != nil {
					*completed = t.Completed
				}
				return nil
			}
		}
		return domain.ErrTaskNotFound
	}
}

func replaceTask(taskID string, task domain.WeeklyTask) func(c *domain.Cycle) {
	return func(c *domain.Cycle) {
		for i := range c.WeeklyTasks {
			if c.WeeklyTasks[i].ID == taskID {
				c.WeeklyTasks[i] = task
			}
		}
	}
}

func (s *CycleStore) UpdateWeeklyTask(ctx context.Context, taskID string, patch domain.WeeklyTaskPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(lookupTask(taskID, nil))
	if err == domain.ErrTaskNotFound || patch.IsEmpty() {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.UpdateWeeklyTask(ctx, cycleID, taskID, patch)
	if err != nil {
		return s.fail("update weekly task", err)
	}

	s.apply(cycleID, replaceTask(taskID, *updated))
	return nil
}

func (s *CycleStore) DeleteWeeklyTask(ctx context.Context, taskID string) error {
	cycleID, err := s.withCurrent(lookupTask(taskID, nil))
	if err == domain.ErrTaskNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteWeeklyTask(ctx, cycleID, taskID); err != nil {
		return s.fail("delete weekly task", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		tasks := make([]domain.WeeklyTask, 0, len(c.WeeklyTasks))
		for _, t := range c.WeeklyTasks {
			if t.ID != taskID {
				tasks = append(tasks, t)
			}
		}
		c.WeeklyTasks = tasks
	})
	return nil
}

// ToggleWeeklyTask flips the task from the state currently loaded in memory.
func (s *CycleStore) ToggleWeeklyTask(ctx context.Context, taskID string) error {
	var completed bool
	cycleID, err := s.withCurrent(lookupTask(taskID, &completed))
	if err == domain.ErrTaskNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.ToggleWeeklyTask(ctx, cycleID, taskID, completed)
	if err != nil {
		return s.toggleFailed(ctx, "toggle weekly task", cycleID, err)
	}

	s.apply(cycleID, replaceTask(taskID, *updated))
	return nil
}

type AddDailyActionInput struct {
	Title    string
	Date     string
	Priority string
}

func (s *CycleStore) AddDailyAction(ctx context.Context, input AddDailyActionInput) (*domain.DailyAction, error) {
	cycleID, err := s.withCurrent(nil)
	if err != nil {
		return nil, err
	}
	action, err := domain.NewDailyAction(cycleID, input.Title, input.Date, input.Priority)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CreateDailyAction(ctx, action); err != nil {
		return nil, s.fail("add daily action", err)
	}

	created := *action
	s.apply(cycleID, func(c *domain.Cycle) {
		c.DailyActions = append(c.DailyActions, created)
	})
	return action, nil
}

func lookupAction(actionID string, completed *bool) func(c *domain.Cycle) error {
	return func(c *domain.Cycle) error {
		for _, a := range c.DailyActions {
			if a.ID == actionID {
				if completed != nil {
					*completed = a.Completed
				}
				return nil
			}
		}
		return domain.ErrActionNotFound
	}
}

func replaceAction(actionID string, action domain.DailyAction) func(c *domain.Cycle) {
	return func(c *domain.Cycle) {
		for i := range c.DailyActions {
			if c.DailyActions[i].ID == actionID {
				c.DailyActions[i] = action
			}
		}
	}
}

func (s *CycleStore) UpdateDailyAction(ctx context.Context, actionID string, patch domain.DailyActionPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(lookupAction(actionID, nil))
	if err == domain.ErrActionNotFound || patch.IsEmpty() {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.UpdateDailyAction(ctx, cycleID, actionID, patch)
	if err != nil {
		return s.fail("update daily action", err)
	}

	s.apply(cycleID, replaceAction(actionID, *updated))
	return nil
}

func (s *CycleStore) DeleteDailyAction(ctx context.Context, actionID string) error {
	cycleID, err := s.withCurrent(lookupAction(actionID, nil))
	if err == domain.ErrActionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteDailyAction(ctx, cycleID, actionID); err != nil {
		return s.fail("delete daily action", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		actions := make([]domain.DailyAction, 0, len(c.DailyActions))
		for _, a := range c.DailyActions {
			if a.ID != actionID {
				actions = append(actions, a)
			}
		}
		c.DailyActions = actions
	})
	return nil
}

func (s *CycleStore) ToggleDailyAction(ctx context.Context, actionID string) error {
	var completed bool
	cycleID, err := s.withCurrent(lookupAction(actionID, &completed))
	if err == domain.ErrActionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.ToggleDailyAction(ctx, cycleID, actionID, completed)
	if err != nil {
		return s.toggleFailed(ctx, "toggle daily action", cycleID, err)
	}

	s.apply(cycleID, replaceAction(actionID, *updated))
	return nil
}
