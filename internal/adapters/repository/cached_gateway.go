package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.Gateway = (*CachedGateway)(nil)

// CachedGateway caches the full-tree ListCycles read per user in redis. Every write to a
// cycle drops the owner's entry, found through a cycle -> user index key.
type CachedGateway struct {
	domain.Gateway
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedGateway(next domain.Gateway, cache *redis.Client, ttl time.Duration) *CachedGateway {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CachedGateway{
		Gateway: next,
		cache:   cache,
		ttl:     ttl,
	}
}

func (r *CachedGateway) cacheKey(userID string) string {
	return fmt.Sprintf("cycles:%s", userID)
}

func (r *CachedGateway) ownerKey(cycleID string) string {
	return fmt.Sprintf("cycle_owner:%s", cycleID)
}

func (r *CachedGateway) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate for user %s: %v", userID, err)
	}
}

// invalidateCycle resolves the owner of a cycle and drops their cached list.
func (r *CachedGateway) invalidateCycle(ctx context.Context, cycleID string) {
	userID, err := r.cache.Get(ctx, r.ownerKey(cycleID)).Result()
	if err == nil {
		r.invalidate(ctx, userID)
		return
	}
	if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	c, err := r.Gateway.GetCycle(ctx, cycleID)
	if err == nil && c != nil {
		r.invalidate(ctx, c.UserID)
	}
}

func (r *CachedGateway) ListCycles(ctx context.Context, userID string) ([]*domain.Cycle, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var cycles []*domain.Cycle
		if err := json.Unmarshal([]byte(val), &cycles); err == nil {
			return cycles, nil
		}

		log.Printf("[CACHE] Corrupted data for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	cycles, err := r.Gateway.ListCycles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cycles); err == nil {
		pipe := r.cache.TxPipeline()
		pipe.Set(ctx, key, data, r.ttl)
		for _, c := range cycles {
			pipe.Set(ctx, r.ownerKey(c.ID), userID, r.ttl)
		}
		if _, setErr := pipe.Exec(ctx); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return cycles, nil
}

func (r *CachedGateway) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	if err := r.Gateway.CreateCycle(ctx, c); err != nil {
		return err
	}
	if err := r.cache.Set(ctx, r.ownerKey(c.ID), c.UserID, r.ttl).Err(); err != nil {
		log.Printf("[CACHE] Redis set error: %v", err)
	}
	r.invalidate(ctx, c.UserID)
	return nil
}

func (r *CachedGateway) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	c, err := r.Gateway.UpdateCycle(ctx, cycleID, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, c.UserID)
	return c, nil
}

func (r *CachedGateway) DeleteCycle(ctx context.Context, cycleID string) error {
	defer r.cache.Del(ctx, r.ownerKey(cycleID))
	r.invalidateCycle(ctx, cycleID)
	return r.Gateway.DeleteCycle(ctx, cycleID)
}

// written drops the owner's cached list after a successful child write.
func (r *CachedGateway) written(ctx context.Context, cycleID string, err error) error {
	if err != nil {
		return err
	}
	r.invalidateCycle(ctx, cycleID)
	return nil
}

func (r *CachedGateway) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	return r.written(ctx, goal.CycleID, r.Gateway.CreateGoal(ctx, goal))
}

func (r *CachedGateway) UpdateGoal(ctx context.Context, cycleID, goalID string, patch domain.GoalPatch) (*domain.Goal, error) {
	goal, err := r.Gateway.UpdateGoal(ctx, cycleID, goalID, patch)
	return goal, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) DeleteGoal(ctx context.Context, cycleID, goalID string) error {
	return r.written(ctx, cycleID, r.Gateway.DeleteGoal(ctx, cycleID, goalID))
}

func (r *CachedGateway) CreateWeeklyTask(ctx context.Context, task *domain.WeeklyTask) error {
	return r.written(ctx, task.CycleID, r.Gateway.CreateWeeklyTask(ctx, task))
}

func (r *CachedGateway) UpdateWeeklyTask(ctx context.Context, cycleID, taskID string, patch domain.WeeklyTaskPatch) (*domain.WeeklyTask, error) {
	task, err := r.Gateway.UpdateWeeklyTask(ctx, cycleID, taskID, patch)
	return task, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) DeleteWeeklyTask(ctx context.Context, cycleID, taskID string) error {
	return r.written(ctx, cycleID, r.Gateway.DeleteWeeklyTask(ctx, cycleID, taskID))
}

func (r *CachedGateway) ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*domain.WeeklyTask, error) {
	task, err := r.Gateway.ToggleWeeklyTask(ctx, cycleID, taskID, wasCompleted)
	r.invalidateCycle(ctx, cycleID)
	return task, err
}

func (r *CachedGateway) CreateDailyAction(ctx context.Context, action *domain.DailyAction) error {
	return r.written(ctx, action.CycleID, r.Gateway.CreateDailyAction(ctx, action))
}

func (r *CachedGateway) UpdateDailyAction(ctx context.Context, cycleID, actionID string, patch domain.DailyActionPatch) (*domain.DailyAction, error) {
	a, err := r.Gateway.UpdateDailyAction(ctx, cycleID, actionID, patch)
	return a, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) DeleteDailyAction(ctx context.Context, cycleID, actionID string) error {
	return r.written(ctx, cycleID, r.Gateway.DeleteDailyAction(ctx, cycleID, actionID))
}

func (r *CachedGateway) ToggleDailyAction(ctx context.Context, cycleID, actionID string, wasCompleted bool) (*domain.DailyAction, error) {
	a, err := r.Gateway.ToggleDailyAction(ctx, cycleID, actionID, wasCompleted)
	r.invalidateCycle(ctx, cycleID)
	return a, err
}

func (r *CachedGateway) CreateHabit(ctx context.Context, h *domain.Habit) error {
	return r.written(ctx, h.CycleID, r.Gateway.CreateHabit(ctx, h))
}

func (r *CachedGateway) UpdateHabit(ctx context.Context, cycleID, habitID string, patch domain.HabitPatch) (*domain.Habit, error) {
	h, err := r.Gateway.UpdateHabit(ctx, cycleID, habitID, patch)
	return h, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) DeleteHabit(ctx context.Context, cycleID, habitID string) error {
	return r.written(ctx, cycleID, r.Gateway.DeleteHabit(ctx, cycleID, habitID))
}

func (r *CachedGateway) AddHabitCompletion(ctx context.Context, cycleID, habitID, date string) (*domain.HabitCompletion, error) {
	c, err := r.Gateway.AddHabitCompletion(ctx, cycleID, habitID, date)
	return c, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) RemoveHabitCompletion(ctx context.Context, cycleID, habitID, date string) error {
	return r.written(ctx, cycleID, r.Gateway.RemoveHabitCompletion(ctx, cycleID, habitID, date))
}

func (r *CachedGateway) ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	done, err := r.Gateway.ToggleHabitCompletion(ctx, cycleID, habitID, date, wasCompleted)
	r.invalidateCycle(ctx, cycleID)
	return done, err
}

func (r *CachedGateway) UpsertWeeklyScore(ctx context.Context, score *domain.WeeklyScore) error {
	return r.written(ctx, score.CycleID, r.Gateway.UpsertWeeklyScore(ctx, score))
}

func (r *CachedGateway) CreateLeadIndicator(ctx context.Context, cycleID string, ind *domain.LeadIndicator) error {
	return r.written(ctx, cycleID, r.Gateway.CreateLeadIndicator(ctx, cycleID, ind))
}

func (r *CachedGateway) UpdateLeadIndicator(ctx context.Context, cycleID, indicatorID string, patch domain.LeadIndicatorPatch) (*domain.LeadIndicator, error) {
	ind, err := r.Gateway.UpdateLeadIndicator(ctx, cycleID, indicatorID, patch)
	return ind, r.written(ctx, cycleID, err)
}

func (r *CachedGateway) DeleteLeadIndicator(ctx context.Context, cycleID, indicatorID string) error {
	return r.written(ctx, cycleID, r.Gateway.DeleteLeadIndicator(ctx, cycleID, indicatorID))
}
