package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

func (g *SQLGateway) ListGoals(ctx context.Context, cycleID string) ([]domain.Goal, error) {
	goals := []domain.Goal{}
	query := "SELECT " + goalColumns + " FROM goals WHERE cycle_id = ? ORDER BY created_at ASC"
	if err := g.db.SelectContext(ctx, &goals, g.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return goals, nil
}

func (g *SQLGateway) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	query := `
        INSERT INTO goals (id, cycle_id, title, description, target_date, progress, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query,
		goal.ID, goal.CycleID, goal.Title, goal.Description, goal.TargetDate, goal.Progress, goal.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCycleNotFound
		}
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

func (g *SQLGateway) UpdateGoal(ctx context.Context, cycleID, goalID string, patch domain.GoalPatch) (*domain.Goal, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.TargetDate != nil {
		set.add("target_date", nullable(*patch.TargetDate))
	}
	if patch.Progress != nil {
		set.add("progress", *patch.Progress)
	}

	if !set.empty() {
		n, err := g.update(ctx, "goals", set, "id = ? AND cycle_id = ?", goalID, cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrGoalNotFound
		}
	}

	var goal domain.Goal
	err := g.get(ctx, &goal, "SELECT "+goalColumns+" FROM goals WHERE id = ? AND cycle_id = ?", goalID, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &goal, nil
}

// DeleteGoal clears the goal reference on its tasks before removing it, so the
// detach does not depend on the backend enforcing ON DELETE SET NULL.
func (g *SQLGateway) DeleteGoal(ctx context.Context, cycleID, goalID string) error {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	detach := tx.Rebind("UPDATE weekly_tasks SET goal_id = NULL WHERE goal_id = ? AND cycle_id = ?")
	if _, err := tx.ExecContext(ctx, detach, goalID, cycleID); err != nil {
		return fmt.Errorf("detach tasks failed: %w", err)
	}

	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM goals WHERE id = ? AND cycle_id = ?"), goalID, cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGoalNotFound
	}

	return tx.Commit()
}

func (g *SQLGateway) ListWeeklyTasks(ctx context.Context, cycleID string) ([]domain.WeeklyTask, error) {
	tasks := []domain.WeeklyTask{}
	query := "SELECT " + taskColumns + " FROM weekly_tasks WHERE cycle_id = ? ORDER BY created_at ASC"
	if err := g.db.SelectContext(ctx, &tasks, g.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return tasks, nil
}

func (g *SQLGateway) CreateWeeklyTask(ctx context.Context, task *domain.WeeklyTask) error {
	if task.GoalID != nil {
		ok, err := g.exists(ctx, "SELECT count(*) FROM goals WHERE id = ? AND cycle_id = ?", *task.GoalID, task.CycleID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrGoalNotFound
		}
	}

	query := `
        INSERT INTO weekly_tasks (id, cycle_id, goal_id, title, completed, due_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query,
		task.ID, task.CycleID, task.GoalID, task.Title, task.Completed, task.DueDate, task.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCycleNotFound
		}
		return fmt.Errorf("failed to insert weekly task: %w", err)
	}
	return nil
}

func (g *SQLGateway) UpdateWeeklyTask(ctx context.Context, cycleID, taskID string, patch domain.WeeklyTaskPatch) (*domain.WeeklyTask, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Completed != nil {
		set.add("completed", *patch.Completed)
	}
	if patch.DueDate != nil {
		set.add("due_date", nullable(*patch.DueDate))
	}
	if patch.GoalID != nil {
		if *patch.GoalID != "" {
			ok, err := g.exists(ctx, "SELECT count(*) FROM goals WHERE id = ? AND cycle_id = ?", *patch.GoalID, cycleID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.ErrGoalNotFound
			}
		}
		set.add("goal_id", nullable(*patch.GoalID))
	}

	if !set.empty() {
		n, err := g.update(ctx, "weekly_tasks", set, "id = ? AND cycle_id = ?", taskID, cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrTaskNotFound
		}
	}
	return g.weeklyTask(ctx, cycleID, taskID)
}

func (g *SQLGateway) weeklyTask(ctx context.Context, cycleID, taskID string) (*domain.WeeklyTask, error) {
	var task domain.WeeklyTask
	err := g.get(ctx, &task, "SELECT "+taskColumns+" FROM weekly_tasks WHERE id = ? AND cycle_id = ?", taskID, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &task, nil
}

func (g *SQLGateway) DeleteWeeklyTask(ctx context.Context, cycleID, taskID string) error {
	n, err := g.exec(ctx, "DELETE FROM weekly_tasks WHERE id = ? AND cycle_id = ?", taskID, cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (g *SQLGateway) ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*domain.WeeklyTask, error) {
	n, err := g.exec(ctx,
		"UPDATE weekly_tasks SET completed = ? WHERE id = ? AND cycle_id = ? AND completed = ?",
		!wasCompleted, taskID, cycleID, wasCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle query failed: %w", err)
	}

	task, err := g.weeklyTask(ctx, cycleID, taskID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return task, fmt.Errorf("%w: task %s", domain.ErrToggleConflict, taskID)
	}
	return task, nil
}

func (g *SQLGateway) ListDailyActions(ctx context.Context, cycleID string) ([]domain.DailyAction, error) {
	actions := []domain.DailyAction{}
	query := "SELECT " + actionColumns + " FROM daily_actions WHERE cycle_id = ? ORDER BY date ASC, created_at ASC"
	if err := g.db.SelectContext(ctx, &actions, g.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return actions, nil
}

func (g *SQLGateway) ListDailyActionsByDate(ctx context.Context, cycleID, date string) ([]domain.DailyAction, error) {
	actions := []domain.DailyAction{}
	query := `
        SELECT ` + actionColumns + ` FROM daily_actions
        WHERE cycle_id = ? AND date = ?
        ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END, created_at ASC`
	if err := g.db.SelectContext(ctx, &actions, g.db.Rebind(query), cycleID, date); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return actions, nil
}

func (g *SQLGateway) CreateDailyAction(ctx context.Context, a *domain.DailyAction) error {
	query := `
        INSERT INTO daily_actions (id, cycle_id, title, completed, date, priority, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query, a.ID, a.CycleID, a.Title, a.Completed, a.Date, a.Priority, a.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCycleNotFound
		}
		return fmt.Errorf("failed to insert daily action: %w", err)
	}
	return nil
}

func (g *SQLGateway) UpdateDailyAction(ctx context.Context, cycleID, actionID string, patch domain.DailyActionPatch) (*domain.DailyAction, error) {
	var set setClause
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Completed != nil {
		set.add("completed", *patch.Completed)
	}
	if patch.Date != nil {
		set.add("date", *patch.Date)
	}
	if patch.Priority != nil {
		set.add("priority", *patch.Priority)
	}

	if !set.empty() {
		n, err := g.update(ctx, "daily_actions", set, "id = ? AND cycle_id = ?", actionID, cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrActionNotFound
		}
	}
	return g.dailyAction(ctx, cycleID, actionID)
}

func (g *SQLGateway) dailyAction(ctx context.Context, cycleID, actionID string) (*domain.DailyAction, error) {
	var a domain.DailyAction
	err := g.get(ctx, &a, "SELECT "+actionColumns+" FROM daily_actions WHERE id = ? AND cycle_id = ?", actionID, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrActionNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &a, nil
}

func (g *SQLGateway) DeleteDailyAction(ctx context.Context, cycleID, actionID string) error {
	n, err := g.exec(ctx, "DELETE FROM daily_actions WHERE id = ? AND cycle_id = ?", actionID, cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrActionNotFound
	}
	return nil
}

func (g *SQLGateway) ToggleDailyAction(ctx context.Context, cycleID, actionID string, wasCompleted bool) (*domain.DailyAction, error) {
	n, err := g.exec(ctx,
		"UPDATE daily_actions SET completed = ? WHERE id = ? AND cycle_id = ? AND completed = ?",
		!wasCompleted, actionID, cycleID, wasCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle query failed: %w", err)
	}

	a, err := g.dailyAction(ctx, cycleID, actionID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return a, fmt.Errorf("%w: action %s", domain.ErrToggleConflict, actionID)
	}
	return a, nil
}
