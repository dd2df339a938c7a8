package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/google/uuid"
)

var _ domain.Gateway = (*MemoryGateway)(nil)

// MemoryGateway keeps full cycle trees in process. It backs local mode and tests
// and follows the same semantics as SQLGateway.
type MemoryGateway struct {
	store map[string]*domain.Cycle

	mu sync.RWMutex
}

func NewMemoryGateway(seed ...*domain.Cycle) *MemoryGateway {
	g := &MemoryGateway{
		store: make(map[string]*domain.Cycle),
	}
	for _, c := range seed {
		clone := c.Clone()
		clone.EnsureCollections()
		g.store[c.ID] = clone
	}
	return g
}

// Snapshot returns deep copies of every stored cycle, newest first.
func (g *MemoryGateway) Snapshot() []*domain.Cycle {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*domain.Cycle, 0, len(g.store))
	for _, c := range g.store {
		out = append(out, c.Clone())
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(cycles []*domain.Cycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].CreatedAt.After(cycles[j].CreatedAt)
	})
}

func (g *MemoryGateway) cycle(cycleID string) (*domain.Cycle, error) {
	c, ok := g.store[cycleID]
	if !ok {
		return nil, domain.ErrCycleNotFound
	}
	return c, nil
}

func (g *MemoryGateway) ListCycles(ctx context.Context, userID string) ([]*domain.Cycle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cycles := []*domain.Cycle{}
	for _, c := range g.store {
		if c.UserID == userID {
			cycles = append(cycles, c.Clone())
		}
	}
	sortNewestFirst(cycles)
	return cycles, nil
}

func (g *MemoryGateway) GetCycle(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (g *MemoryGateway) ListActiveCycles(ctx context.Context) ([]*domain.Cycle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var cycles []*domain.Cycle
	for _, c := range g.store {
		if c.Status == domain.CycleStatusActive {
			cycles = append(cycles, c.Header())
		}
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].CreatedAt.Before(cycles[j].CreatedAt)
	})
	return cycles, nil
}

func (g *MemoryGateway) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.store[c.ID]; ok {
		return fmt.Errorf("cycle %s already exists", c.ID)
	}
	clone := c.Header()
	clone.EnsureCollections()
	g.store[c.ID] = clone
	return nil
}

func (g *MemoryGateway) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, err
	}
	c.Apply(patch)
	return c.Header(), nil
}

func (g *MemoryGateway) DeleteCycle(ctx context.Context, cycleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.store[cycleID]; !ok {
		return domain.ErrCycleNotFound
	}
	delete(g.store, cycleID)
	return nil
}

func (g *MemoryGateway) ListGoals(ctx context.Context, cycleID string) ([]domain.Goal, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.Goal{}, nil
	}
	return c.Goals, nil
}

func (g *MemoryGateway) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(goal.CycleID)
	if err != nil {
		return err
	}
	c.Goals = append(c.Goals, *goal)
	return nil
}

func (g *MemoryGateway) UpdateGoal(ctx context.Context, cycleID, goalID string, patch domain.GoalPatch) (*domain.Goal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, domain.ErrGoalNotFound
	}
	for i := range c.Goals {
		if c.Goals[i].ID == goalID {
			c.Goals[i].Apply(patch)
			out := c.Goals[i]
			return &out, nil
		}
	}
	return nil, domain.ErrGoalNotFound
}

func (g *MemoryGateway) DeleteGoal(ctx context.Context, cycleID, goalID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return domain.ErrGoalNotFound
	}
	kept := c.Goals[:0]
	found := false
	for _, goal := range c.Goals {
		if goal.ID == goalID {
			found = true
			continue
		}
		kept = append(kept, goal)
	}
	if !found {
		return domain.ErrGoalNotFound
	}
	c.Goals = kept
	for i := range c.WeeklyTasks {
		if c.WeeklyTasks[i].BelongsTo(goalID) {
			c.WeeklyTasks[i].GoalID = nil
		}
	}
	return nil
}

func hasGoal(c *domain.Cycle, goalID string) bool {
	for _, goal := range c.Goals {
		if goal.ID == goalID {
			return true
		}
	}
	return false
}

func (g *MemoryGateway) ListWeeklyTasks(ctx context.Context, cycleID string) ([]domain.WeeklyTask, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.WeeklyTask{}, nil
	}
	return c.WeeklyTasks, nil
}

func (g *MemoryGateway) CreateWeeklyTask(ctx context.Context, task *domain.WeeklyTask) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(task.CycleID)
	if err != nil {
		return err
	}
	if task.GoalID != nil && !hasGoal(c, *task.GoalID) {
		return domain.ErrGoalNotFound
	}
	c.WeeklyTasks = append(c.WeeklyTasks, *task)
	return nil
}

func (g *MemoryGateway) weeklyTask(cycleID, taskID string) (*domain.Cycle, *domain.WeeklyTask, error) {
	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, nil, domain.ErrTaskNotFound
	}
	for i := range c.WeeklyTasks {
		if c.WeeklyTasks[i].ID == taskID {
			return c, &c.WeeklyTasks[i], nil
		}
	}
	return nil, nil, domain.ErrTaskNotFound
}

func (g *MemoryGateway) UpdateWeeklyTask(ctx context.Context, cycleID, taskID string, patch domain.WeeklyTaskPatch) (*domain.WeeklyTask, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, task, err := g.weeklyTask(cycleID, taskID)
	if err != nil {
		return nil, err
	}
	if patch.GoalID != nil && *patch.GoalID != "" && !hasGoal(c, *patch.GoalID) {
		return nil, domain.ErrGoalNotFound
	}
	task.Apply(patch)
	out := *task
	return &out, nil
}

func (g *MemoryGateway) DeleteWeeklyTask(ctx context.Context, cycleID, taskID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	for i, t := range c.WeeklyTasks {
		if t.ID == taskID {
			c.WeeklyTasks = append(c.WeeklyTasks[:i], c.WeeklyTasks[i+1:]...)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (g *MemoryGateway) ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*domain.WeeklyTask, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, task, err := g.weeklyTask(cycleID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Completed != wasCompleted {
		out := *task
		return &out, fmt.Errorf("%w: task %s", domain.ErrToggleConflict, taskID)
	}
	task.Completed = !wasCompleted
	out := *task
	return &out, nil
}

func (g *MemoryGateway) ListDailyActions(ctx context.Context, cycleID string) ([]domain.DailyAction, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.DailyAction{}, nil
	}
	sort.SliceStable(c.DailyActions, func(i, j int) bool {
		return c.DailyActions[i].Date < c.DailyActions[j].Date
	})
	return c.DailyActions, nil
}

func (g *MemoryGateway) ListDailyActionsByDate(ctx context.Context, cycleID, date string) ([]domain.DailyAction, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.DailyAction{}, nil
	}
	return domain.ActionsOn(c.DailyActions, date), nil
}

func (g *MemoryGateway) CreateDailyAction(ctx context.Context, action *domain.DailyAction) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(action.CycleID)
	if err != nil {
		return err
	}
	c.DailyActions = append(c.DailyActions, *action)
	return nil
}

func (g *MemoryGateway) dailyAction(cycleID, actionID string) (*domain.DailyAction, error) {
	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, domain.ErrActionNotFound
	}
	for i := range c.DailyActions {
		if c.DailyActions[i].ID == actionID {
			return &c.DailyActions[i], nil
		}
	}
	return nil, domain.ErrActionNotFound
}

func (g *MemoryGateway) UpdateDailyAction(ctx context.Context, cycleID, actionID string, patch domain.DailyActionPatch) (*domain.DailyAction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, err := g.dailyAction(cycleID, actionID)
	if err != nil {
		return nil, err
	}
	a.Apply(patch)
	out := *a
	return &out, nil
}

func (g *MemoryGateway) DeleteDailyAction(ctx context.Context, cycleID, actionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return domain.ErrActionNotFound
	}
	for i, a := range c.DailyActions {
		if a.ID == actionID {
			c.DailyActions = append(c.DailyActions[:i], c.DailyActions[i+1:]...)
			return nil
		}
	}
	return domain.ErrActionNotFound
}

func (g *MemoryGateway) ToggleDailyAction(ctx context.Context, cycleID, actionID string, wasCompleted bool) (*domain.DailyAction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, err := g.dailyAction(cycleID, actionID)
	if err != nil {
		return nil, err
	}
	if a.Completed != wasCompleted {
		out := *a
		return &out, fmt.Errorf("%w: action %s", domain.ErrToggleConflict, actionID)
	}
	a.Completed = !wasCompleted
	out := *a
	return &out, nil
}

func (g *MemoryGateway) ListHabits(ctx context.Context, cycleID string) ([]domain.Habit, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.Habit{}, nil
	}
	return c.Habits, nil
}

func (g *MemoryGateway) CreateHabit(ctx context.Context, h *domain.Habit) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(h.CycleID)
	if err != nil {
		return err
	}
	clone := h.Clone()
	clone.CompletedDates = domain.NormalizeDates(clone.CompletedDates)
	c.Habits = append(c.Habits, clone)
	return nil
}

func (g *MemoryGateway) habit(cycleID, habitID string) (*domain.Habit, error) {
	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, domain.ErrHabitNotFound
	}
	for i := range c.Habits {
		if c.Habits[i].ID == habitID {
			return &c.Habits[i], nil
		}
	}
	return nil, domain.ErrHabitNotFound
}

func (g *MemoryGateway) UpdateHabit(ctx context.Context, cycleID, habitID string, patch domain.HabitPatch) (*domain.Habit, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.habit(cycleID, habitID)
	if err != nil {
		return nil, err
	}
	h.Apply(patch)
	out := h.Clone()
	return &out, nil
}

func (g *MemoryGateway) DeleteHabit(ctx context.Context, cycleID, habitID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return domain.ErrHabitNotFound
	}
	for i, h := range c.Habits {
		if h.ID == habitID {
			c.Habits = append(c.Habits[:i], c.Habits[i+1:]...)
			return nil
		}
	}
	return domain.ErrHabitNotFound
}

func (g *MemoryGateway) AddHabitCompletion(ctx context.Context, cycleID, habitID, date string) (*domain.HabitCompletion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.habit(cycleID, habitID)
	if err != nil {
		return nil, err
	}
	completion, err := domain.NewHabitCompletion(habitID, date)
	if err != nil {
		return nil, err
	}
	if h.IsCompletedOn(completion.CompletedDate) {
		return nil, domain.ErrCompletionExists
	}
	h.SetCompleted(completion.CompletedDate, true)
	return completion, nil
}

func (g *MemoryGateway) RemoveHabitCompletion(ctx context.Context, cycleID, habitID, date string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := g.habit(cycleID, habitID)
	if err != nil {
		return err
	}
	if !h.IsCompletedOn(date) {
		return domain.ErrCompletionNotFound
	}
	h.SetCompleted(date, false)
	return nil
}

func (g *MemoryGateway) ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	return domain.ToggleCompletion(ctx, g, cycleID, habitID, date, wasCompleted)
}

func (g *MemoryGateway) ListWeeklyScores(ctx context.Context, cycleID string) ([]domain.WeeklyScore, error) {
	c, err := g.GetCycle(ctx, cycleID)
	if err != nil {
		return []domain.WeeklyScore{}, nil
	}
	domain.SortScores(c.WeeklyScores)
	return c.WeeklyScores, nil
}

func (g *MemoryGateway) GetWeeklyScore(ctx context.Context, cycleID string, week int) (*domain.WeeklyScore, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, domain.ErrScoreNotFound
	}
	for _, s := range c.WeeklyScores {
		if s.WeekNumber == week {
			out := s.Clone()
			return &out, nil
		}
	}
	return nil, domain.ErrScoreNotFound
}

func (g *MemoryGateway) UpsertWeeklyScore(ctx context.Context, score *domain.WeeklyScore) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.cycle(score.CycleID)
	if err != nil {
		return err
	}
	for i := range c.WeeklyScores {
		s := &c.WeeklyScores[i]
		if s.WeekNumber == score.WeekNumber {
			s.PlannedTasks = score.PlannedTasks
			s.CompletedTasks = score.CompletedTasks
			s.ExecutionRate = score.ExecutionRate
			score.ID = s.ID
			return nil
		}
	}

	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	stored := score.Clone()
	stored.LeadIndicators = []domain.LeadIndicator{}
	c.WeeklyScores = append(c.WeeklyScores, stored)
	domain.SortScores(c.WeeklyScores)
	return nil
}

func (g *MemoryGateway) score(cycleID, scoreID string) (*domain.WeeklyScore, error) {
	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, domain.ErrScoreNotFound
	}
	for i := range c.WeeklyScores {
		if c.WeeklyScores[i].ID == scoreID {
			return &c.WeeklyScores[i], nil
		}
	}
	return nil, domain.ErrScoreNotFound
}

func (g *MemoryGateway) CreateLeadIndicator(ctx context.Context, cycleID string, ind *domain.LeadIndicator) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, err := g.score(cycleID, ind.WeeklyScoreID)
	if err != nil {
		return err
	}
	if ind.ID == "" {
		ind.ID = uuid.New().String()
	}
	s.LeadIndicators = append(s.LeadIndicators, *ind)
	return nil
}

func (g *MemoryGateway) indicator(cycleID, indicatorID string) (*domain.WeeklyScore, int, error) {
	c, err := g.cycle(cycleID)
	if err != nil {
		return nil, 0, domain.ErrIndicatorNotFound
	}
	for i := range c.WeeklyScores {
		s := &c.WeeklyScores[i]
		for j := range s.LeadIndicators {
			if s.LeadIndicators[j].ID == indicatorID {
				return s, j, nil
			}
		}
	}
	return nil, 0, domain.ErrIndicatorNotFound
}

func (g *MemoryGateway) UpdateLeadIndicator(ctx context.Context, cycleID, indicatorID string, patch domain.LeadIndicatorPatch) (*domain.LeadIndicator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, j, err := g.indicator(cycleID, indicatorID)
	if err != nil {
		return nil, err
	}
	s.LeadIndicators[j].Apply(patch)
	out := s.LeadIndicators[j]
	return &out, nil
}

func (g *MemoryGateway) DeleteLeadIndicator(ctx context.Context, cycleID, indicatorID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, j, err := g.indicator(cycleID, indicatorID)
	if err != nil {
		return err
	}
	s.LeadIndicators = append(s.LeadIndicators[:j], s.LeadIndicators[j+1:]...)
	return nil
}
