package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.Gateway = (*SQLGateway)(nil)

const (
	cycleColumns     = "id, user_id, name, start_date, end_date, vision, current_week, status, created_at"
	goalColumns      = "id, cycle_id, title, description, target_date, progress, created_at"
	taskColumns      = "id, cycle_id, goal_id, title, completed, due_date, created_at"
	actionColumns    = "id, cycle_id, title, completed, date, priority, created_at"
	habitColumns     = "id, cycle_id, name, target_days_per_week, created_at"
	scoreColumns     = "id, cycle_id, week_number, planned_tasks, completed_tasks, execution_rate"
	indicatorColumns = "id, weekly_score_id, name, target, actual, unit"
)

// SQLGateway is the remote store over Postgres (pgx or lib/pq) or sqlite.
// Queries are written with ? placeholders and rebound for the connected driver.
type SQLGateway struct {
	db *sqlx.DB
}

func NewSQLGateway(db *sqlx.DB) *SQLGateway {
	return &SQLGateway{db: db}
}

// setClause accumulates the assignments of a partial update.
type setClause struct {
	cols []string
	args []interface{}
}

func (s *setClause) add(col string, v interface{}) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) empty() bool {
	return len(s.cols) == 0
}

// nullable turns the "" of a clearing patch into SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (g *SQLGateway) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// update runs UPDATE table SET ... WHERE where and reports how many rows matched.
func (g *SQLGateway) update(ctx context.Context, table string, set setClause, where string, whereArgs ...interface{}) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(set.cols, ", "), where)
	return g.exec(ctx, query, append(set.args, whereArgs...)...)
}

func (g *SQLGateway) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return g.db.GetContext(ctx, dest, g.db.Rebind(query), args...)
}

func (g *SQLGateway) selectIn(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return g.db.SelectContext(ctx, dest, g.db.Rebind(q), a...)
}

func (g *SQLGateway) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int
	if err := g.get(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return count > 0, nil
}

func (g *SQLGateway) ListCycles(ctx context.Context, userID string) ([]*domain.Cycle, error) {
	var cycles []*domain.Cycle
	query := "SELECT " + cycleColumns + " FROM cycles WHERE user_id = ? ORDER BY created_at DESC"
	if err := g.db.SelectContext(ctx, &cycles, g.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	if err := g.loadChildren(ctx, cycles); err != nil {
		return nil, err
	}
	if cycles == nil {
		cycles = []*domain.Cycle{}
	}
	return cycles, nil
}

func (g *SQLGateway) GetCycle(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	c, err := g.cycleHeader(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if err := g.loadChildren(ctx, []*domain.Cycle{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (g *SQLGateway) cycleHeader(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	var c domain.Cycle
	err := g.get(ctx, &c, "SELECT "+cycleColumns+" FROM cycles WHERE id = ?", cycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCycleNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &c, nil
}

func (g *SQLGateway) ListActiveCycles(ctx context.Context) ([]*domain.Cycle, error) {
	var cycles []*domain.Cycle
	query := "SELECT " + cycleColumns + " FROM cycles WHERE status = ? ORDER BY created_at ASC"
	if err := g.db.SelectContext(ctx, &cycles, g.db.Rebind(query), domain.CycleStatusActive); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return cycles, nil
}

func (g *SQLGateway) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	query := `
        INSERT INTO cycles (
            id, user_id, name, start_date, end_date, vision, current_week, status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := g.exec(ctx, query,
		c.ID, c.UserID, c.Name, c.StartDate, c.EndDate, c.Vision, c.CurrentWeek, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cycle: %w", err)
	}
	return nil
}

func (g *SQLGateway) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	var set setClause
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Vision != nil {
		set.add("vision", *patch.Vision)
	}
	if patch.CurrentWeek != nil {
		set.add("current_week", domain.ClampWeek(*patch.CurrentWeek))
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}

	if !set.empty() {
		n, err := g.update(ctx, "cycles", set, "id = ?", cycleID)
		if err != nil {
			return nil, fmt.Errorf("update query failed: %w", err)
		}
		if n == 0 {
			return nil, domain.ErrCycleNotFound
		}
	}
	return g.cycleHeader(ctx, cycleID)
}

func (g *SQLGateway) DeleteCycle(ctx context.Context, cycleID string) error {
	n, err := g.exec(ctx, "DELETE FROM cycles WHERE id = ?", cycleID)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}
	if n == 0 {
		return domain.ErrCycleNotFound
	}
	return nil
}

// loadChildren attaches every child collection to the given cycles with one query per table.
func (g *SQLGateway) loadChildren(ctx context.Context, cycles []*domain.Cycle) error {
	if len(cycles) == 0 {
		return nil
	}

	ids := make([]string, len(cycles))
	byID := make(map[string]*domain.Cycle, len(cycles))
	for i, c := range cycles {
		c.EnsureCollections()
		ids[i] = c.ID
		byID[c.ID] = c
	}

	var goals []domain.Goal
	if err := g.selectIn(ctx, &goals, "SELECT "+goalColumns+" FROM goals WHERE cycle_id IN (?) ORDER BY created_at ASC", ids); err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	for _, x := range goals {
		byID[x.CycleID].Goals = append(byID[x.CycleID].Goals, x)
	}

	var tasks []domain.WeeklyTask
	if err := g.selectIn(ctx, &tasks, "SELECT "+taskColumns+" FROM weekly_tasks WHERE cycle_id IN (?) ORDER BY created_at ASC", ids); err != nil {
		return fmt.Errorf("load weekly tasks: %w", err)
	}
	for _, x := range tasks {
		byID[x.CycleID].WeeklyTasks = append(byID[x.CycleID].WeeklyTasks, x)
	}

	var actions []domain.DailyAction
	if err := g.selectIn(ctx, &actions, "SELECT "+actionColumns+" FROM daily_actions WHERE cycle_id IN (?) ORDER BY date ASC, created_at ASC", ids); err != nil {
		return fmt.Errorf("load daily actions: %w", err)
	}
	for _, x := range actions {
		byID[x.CycleID].DailyActions = append(byID[x.CycleID].DailyActions, x)
	}

	var habits []domain.Habit
	if err := g.selectIn(ctx, &habits, "SELECT "+habitColumns+" FROM habits WHERE cycle_id IN (?) ORDER BY created_at ASC", ids); err != nil {
		return fmt.Errorf("load habits: %w", err)
	}
	if err := g.attachCompletions(ctx, habits); err != nil {
		return err
	}
	for _, x := range habits {
		byID[x.CycleID].Habits = append(byID[x.CycleID].Habits, x)
	}

	var scores []domain.WeeklyScore
	if err := g.selectIn(ctx, &scores, "SELECT "+scoreColumns+" FROM weekly_scores WHERE cycle_id IN (?) ORDER BY week_number ASC", ids); err != nil {
		return fmt.Errorf("load weekly scores: %w", err)
	}
	if err := g.attachIndicators(ctx, scores); err != nil {
		return err
	}
	for _, x := range scores {
		byID[x.CycleID].WeeklyScores = append(byID[x.CycleID].WeeklyScores, x)
	}

	return nil
}
