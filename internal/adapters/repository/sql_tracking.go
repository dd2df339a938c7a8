package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/google/uuid"
)

type completionRow struct {
	HabitID       string `db:"habit_id"`
	CompletedDate string `db:"completed_date"`
}

func (g *SQLGateway) attachCompletions(ctx context.Context, habits []domain.Habit) error {
	if len(habits) == 0 {
		return nil
	}

	ids := make([]string, len(habits))
	index := make(map[string]int, len(habits))
	for i := range habits {
		habits[i].CompletedDates = []string{}
		ids[i] = habits[i].ID
		index[habits[i].ID] = i
	}

	var rows []completionRow
	query := "SELECT habit_id, completed_date FROM habit_completions WHERE habit_id IN (?) ORDER BY completed_date ASC"
	if err := g.selectIn(ctx, &rows, query, ids); err != nil {
		return fmt.Errorf("load habit completions: %w", err)
	}
	for _, r := range rows {
		i := index[r.HabitID]
		habits[i].CompletedDates = append(habits[i].CompletedDates, r.CompletedDate)
	}
	return nil
}

func (g *SQLGateway) ListHabits(ctx context.Context, cycleID string) ([]domain.Habit, error) {
	habits := []domain.Habit{}
	query := "SELECT " + habitColumns + " FROM habits WHERE cycle_id = ? ORDER BY created_at ASC"
	if err := g.db.SelectContext(ctx, &habits, g.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	if err := g.attachCompletions(ctx, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func (g *SQLGateway) CreateHabit(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (id, cycle_id, name, target_days_per_week, created_at)
        VALUES (?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query, h.ID, h.CycleID, h.Name, h.TargetDaysPerWeek, h.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCycleNotFound
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (g *SQLGateway) UpdateHabit(ctx context.Context, cycleID, habitID string, patch domain.HabitPatch) (*domain.Habit, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.TargetDaysPerWeek != nil {
		set.add("target_days_per_week", *patch.TargetDaysPerWeek)
	}

	if !set.empty() {
		n, err := g.update(ctx, "habits", set, "id = ? AND cycle_id = ?", habitID, cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrHabitNotFound
		}
	}

	var h domain.Habit
	err := g.get(ctx, &h, "SELECT "+habitColumns+" FROM habits WHERE id = ? AND cycle_id = ?", habitID, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	habits := []domain.Habit{h}
	if err := g.attachCompletions(ctx, habits); err != nil {
		return nil, err
	}
	return &habits[0], nil
}

func (g *SQLGateway) DeleteHabit(ctx context.Context, cycleID, habitID string) error {
	n, err := g.exec(ctx, "DELETE FROM habits WHERE id = ? AND cycle_id = ?", habitID, cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (g *SQLGateway) habitInCycle(ctx context.Context, cycleID, habitID string) error {
	ok, err := g.exists(ctx, "SELECT count(*) FROM habits WHERE id = ? AND cycle_id = ?", habitID, cycleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (g *SQLGateway) AddHabitCompletion(ctx context.Context, cycleID, habitID, date string) (*domain.HabitCompletion, error) {
	if err := g.habitInCycle(ctx, cycleID, habitID); err != nil {
		return nil, err
	}

	completion, err := domain.NewHabitCompletion(habitID, date)
	if err != nil {
		return nil, err
	}

	_, err = g.exec(ctx,
		"INSERT INTO habit_completions (id, habit_id, completed_date) VALUES (?, ?, ?)",
		completion.ID, completion.HabitID, completion.CompletedDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCompletionExists
		}
		return nil, fmt.Errorf("failed to insert habit completion: %w", err)
	}
	return completion, nil
}

func (g *SQLGateway) RemoveHabitCompletion(ctx context.Context, cycleID, habitID, date string) error {
	if err := g.habitInCycle(ctx, cycleID, habitID); err != nil {
		return err
	}

	n, err := g.exec(ctx, "DELETE FROM habit_completions WHERE habit_id = ? AND completed_date = ?", habitID, date)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}

func (g *SQLGateway) ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	return domain.ToggleCompletion(ctx, g, cycleID, habitID, date, wasCompleted)
}

func (g *SQLGateway) attachIndicators(ctx context.Context, scores []domain.WeeklyScore) error {
	if len(scores) == 0 {
		return nil
	}

	ids := make([]string, len(scores))
	index := make(map[string]int, len(scores))
	for i := range scores {
		scores[i].LeadIndicators = []domain.LeadIndicator{}
		ids[i] = scores[i].ID
		index[scores[i].ID] = i
	}

	var indicators []domain.LeadIndicator
	query := "SELECT " + indicatorColumns + " FROM lead_indicators WHERE weekly_score_id IN (?) ORDER BY created_at ASC"
	if err := g.selectIn(ctx, &indicators, query, ids); err != nil {
		return fmt.Errorf("load lead indicators: %w", err)
	}
	for _, ind := range indicators {
		i := index[ind.WeeklyScoreID]
		scores[i].LeadIndicators = append(scores[i].LeadIndicators, ind)
	}
	return nil
}

func (g *SQLGateway) ListWeeklyScores(ctx context.Context, cycleID string) ([]domain.WeeklyScore, error) {
	scores := []domain.WeeklyScore{}
	query := "SELECT " + scoreColumns + " FROM weekly_scores WHERE cycle_id = ? ORDER BY week_number ASC"
	if err := g.db.SelectContext(ctx, &scores, g.db.Rebind(query), cycleID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	if err := g.attachIndicators(ctx, scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (g *SQLGateway) GetWeeklyScore(ctx context.Context, cycleID string, week int) (*domain.WeeklyScore, error) {
	var s domain.WeeklyScore
	err := g.get(ctx, &s, "SELECT "+scoreColumns+" FROM weekly_scores WHERE cycle_id = ? AND week_number = ?", cycleID, week)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScoreNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	scores := []domain.WeeklyScore{s}
	if err := g.attachIndicators(ctx, scores); err != nil {
		return nil, err
	}
	return &scores[0], nil
}

func (g *SQLGateway) UpsertWeeklyScore(ctx context.Context, s *domain.WeeklyScore) error {
	query := `
        INSERT INTO weekly_scores (id, cycle_id, week_number, planned_tasks, completed_tasks, execution_rate)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (cycle_id, week_number) DO UPDATE SET
            planned_tasks = excluded.planned_tasks,
            completed_tasks = excluded.completed_tasks,
            execution_rate = excluded.execution_rate`

	_, err := g.exec(ctx, query, s.ID, s.CycleID, s.WeekNumber, s.PlannedTasks, s.CompletedTasks, s.ExecutionRate)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCycleNotFound
		}
		return fmt.Errorf("failed to upsert weekly score: %w", err)
	}

	var id string
	if err := g.get(ctx, &id, "SELECT id FROM weekly_scores WHERE cycle_id = ? AND week_number = ?", s.CycleID, s.WeekNumber); err != nil {
		return fmt.Errorf("database scan error: %w", err)
	}
	s.ID = id
	return nil
}

func (g *SQLGateway) scoreInCycle(ctx context.Context, cycleID, scoreID string) error {
	ok, err := g.exists(ctx, "SELECT count(*) FROM weekly_scores WHERE id = ? AND cycle_id = ?", scoreID, cycleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrScoreNotFound
	}
	return nil
}

func (g *SQLGateway) CreateLeadIndicator(ctx context.Context, cycleID string, ind *domain.LeadIndicator) error {
	if err := g.scoreInCycle(ctx, cycleID, ind.WeeklyScoreID); err != nil {
		return err
	}
	if ind.ID == "" {
		ind.ID = uuid.New().String()
	}

	query := `
        INSERT INTO lead_indicators (id, weekly_score_id, name, target, actual, unit, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query, ind.ID, ind.WeeklyScoreID, ind.Name, ind.Target, ind.Actual, ind.Unit, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert lead indicator: %w", err)
	}
	return nil
}

const indicatorInCycle = "id = ? AND weekly_score_id IN (SELECT id FROM weekly_scores WHERE cycle_id = ?)"

func (g *SQLGateway) UpdateLeadIndicator(ctx context.Context, cycleID, indicatorID string, patch domain.LeadIndicatorPatch) (*domain.LeadIndicator, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Target != nil {
		set.add("target", *patch.Target)
	}
	if patch.Actual != nil {
		set.add("actual", *patch.Actual)
	}
	if patch.Unit != nil {
		set.add("unit", *patch.Unit)
	}

	if !set.empty() {
		n, err := g.update(ctx, "lead_indicators", set, indicatorInCycle, indicatorID, cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrIndicatorNotFound
		}
	}

	var ind domain.LeadIndicator
	err := g.get(ctx, &ind, "SELECT "+indicatorColumns+" FROM lead_indicators WHERE "+indicatorInCycle, indicatorID, cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIndicatorNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &ind, nil
}

func (g *SQLGateway) DeleteLeadIndicator(ctx context.Context, cycleID, indicatorID string) error {
	n, err := g.exec(ctx, "DELETE FROM lead_indicators WHERE "+indicatorInCycle, indicatorID, cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrIndicatorNotFound
	}
	return nil
}
