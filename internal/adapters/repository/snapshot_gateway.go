package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the layout written by this build. Version 1 held a single cycle.
const SnapshotVersion = 2

var _ domain.Gateway = (*SnapshotGateway)(nil)

type snapshot struct {
	Version        int             `yaml:"version"`
	CurrentCycleID string          `yaml:"current_cycle_id,omitempty"`
	Cycles         []*domain.Cycle `yaml:"cycles"`
}

type snapshotV1 struct {
	Version int           `yaml:"version"`
	Cycle   *domain.Cycle `yaml:"cycle"`
}

// SnapshotGateway is the local-only backend: a MemoryGateway persisted to a YAML file
// after every successful write. It also remembers the selected cycle between runs.
type SnapshotGateway struct {
	*MemoryGateway

	path    string
	current string

	mu sync.Mutex
}

// OpenSnapshot loads the snapshot at path. A missing, unreadable or unknown-version file is
// replaced by the demo dataset; a version 1 file is migrated in place.
func OpenSnapshot(path, userID string, now time.Time) (*SnapshotGateway, error) {
	snap, err := loadSnapshot(path)
	if err != nil {
		log.Printf("[SNAPSHOT] %v, resetting to demo data", err)
		demo := domain.DemoCycle(userID, now)
		snap = &snapshot{Version: SnapshotVersion, CurrentCycleID: demo.ID, Cycles: []*domain.Cycle{demo}}
	}

	g := &SnapshotGateway{
		MemoryGateway: NewMemoryGateway(snap.Cycles...),
		path:          path,
		current:       snap.CurrentCycleID,
	}
	if err := g.save(); err != nil {
		return nil, err
	}
	return g, nil
}

func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no snapshot at %s", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var header struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("corrupt snapshot: %w", err)
	}

	switch header.Version {
	case 1:
		var v1 snapshotV1
		if err := yaml.Unmarshal(data, &v1); err != nil {
			return nil, fmt.Errorf("corrupt v1 snapshot: %w", err)
		}
		if v1.Cycle == nil {
			return nil, errors.New("v1 snapshot has no cycle")
		}
		log.Printf("[SNAPSHOT] Migrating %s from version 1 to %d", path, SnapshotVersion)
		return &snapshot{Version: SnapshotVersion, CurrentCycleID: v1.Cycle.ID, Cycles: []*domain.Cycle{v1.Cycle}}, nil
	case SnapshotVersion:
		var snap snapshot
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("corrupt snapshot: %w", err)
		}
		return &snap, nil
	}
	return nil, fmt.Errorf("unknown snapshot version %d", header.Version)
}

func (g *SnapshotGateway) save() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := snapshot{
		Version:        SnapshotVersion,
		CurrentCycleID: g.current,
		Cycles:         g.Snapshot(),
	}
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (g *SnapshotGateway) persist(err error) error {
	if err != nil {
		return err
	}
	return g.save()
}

// CurrentCycleID is the selection stored in the snapshot, "" when none.
func (g *SnapshotGateway) CurrentCycleID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *SnapshotGateway) SaveCurrentCycleID(cycleID string) error {
	g.mu.Lock()
	g.current = cycleID
	g.mu.Unlock()
	return g.save()
}

func (g *SnapshotGateway) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	return g.persist(g.MemoryGateway.CreateCycle(ctx, c))
}

func (g *SnapshotGateway) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	c, err := g.MemoryGateway.UpdateCycle(ctx, cycleID, patch)
	return c, g.persist(err)
}

func (g *SnapshotGateway) DeleteCycle(ctx context.Context, cycleID string) error {
	return g.persist(g.MemoryGateway.DeleteCycle(ctx, cycleID))
}

func (g *SnapshotGateway) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	return g.persist(g.MemoryGateway.CreateGoal(ctx, goal))
}

func (g *SnapshotGateway) UpdateGoal(ctx context.Context, cycleID, goalID string, patch domain.GoalPatch) (*domain.Goal, error) {
	goal, err := g.MemoryGateway.UpdateGoal(ctx, cycleID, goalID, patch)
	return goal, g.persist(err)
}

func (g *SnapshotGateway) DeleteGoal(ctx context.Context, cycleID, goalID string) error {
	return g.persist(g.MemoryGateway.DeleteGoal(ctx, cycleID, goalID))
}

func (g *SnapshotGateway) CreateWeeklyTask(ctx context.Context, task *domain.WeeklyTask) error {
	return g.persist(g.MemoryGateway.CreateWeeklyTask(ctx, task))
}

func (g *SnapshotGateway) UpdateWeeklyTask(ctx context.Context, cycleID, taskID string, patch domain.WeeklyTaskPatch) (*domain.WeeklyTask, error) {
	task, err := g.MemoryGateway.UpdateWeeklyTask(ctx, cycleID, taskID, patch)
	return task, g.persist(err)
}

func (g *SnapshotGateway) DeleteWeeklyTask(ctx context.Context, cycleID, taskID string) error {
	return g.persist(g.MemoryGateway.DeleteWeeklyTask(ctx, cycleID, taskID))
}

func (g *SnapshotGateway) ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*domain.WeeklyTask, error) {
	task, err := g.MemoryGateway.ToggleWeeklyTask(ctx, cycleID, taskID, wasCompleted)
	return task, g.persist(err)
}

func (g *SnapshotGateway) CreateDailyAction(ctx context.Context, action *domain.DailyAction) error {
	return g.persist(g.MemoryGateway.CreateDailyAction(ctx, action))
}

func (g *SnapshotGateway) UpdateDailyAction(ctx context.Context, cycleID, actionID string, patch domain.DailyActionPatch) (*domain.DailyAction, error) {
	a, err := g.MemoryGateway.UpdateDailyAction(ctx, cycleID, actionID, patch)
	return a, g.persist(err)
}

func (g *SnapshotGateway) DeleteDailyAction(ctx context.Context, cycleID, actionID string) error {
	return g.persist(g.MemoryGateway.DeleteDailyAction(ctx, cycleID, actionID))
}

func (g *SnapshotGateway) ToggleDailyAction(ctx context.Context, cycleID, actionID string, wasCompleted bool) (*domain.DailyAction, error) {
	a, err := g.MemoryGateway.ToggleDailyAction(ctx, cycleID, actionID, wasCompleted)
	return a, g.persist(err)
}

func (g *SnapshotGateway) CreateHabit(ctx context.Context, h *domain.Habit) error {
	return g.persist(g.MemoryGateway.CreateHabit(ctx, h))
}

func (g *SnapshotGateway) UpdateHabit(ctx context.Context, cycleID, habitID string, patch domain.HabitPatch) (*domain.Habit, error) {
	h, err := g.MemoryGateway.UpdateHabit(ctx, cycleID, habitID, patch)
	return h, g.persist(err)
}

func (g *SnapshotGateway) DeleteHabit(ctx context.Context, cycleID, habitID string) error {
	return g.persist(g.MemoryGateway.DeleteHabit(ctx, cycleID, habitID))
}

func (g *SnapshotGateway) AddHabitCompletion(ctx context.Context, cycleID, habitID, date string) (*domain.HabitCompletion, error) {
	c, err := g.MemoryGateway.AddHabitCompletion(ctx, cycleID, habitID, date)
	return c, g.persist(err)
}

func (g *SnapshotGateway) RemoveHabitCompletion(ctx context.Context, cycleID, habitID, date string) error {
	return g.persist(g.MemoryGateway.RemoveHabitCompletion(ctx, cycleID, habitID, date))
}

func (g *SnapshotGateway) ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	return domain.ToggleCompletion(ctx, g, cycleID, habitID, date, wasCompleted)
}

func (g *SnapshotGateway) UpsertWeeklyScore(ctx context.Context, score *domain.WeeklyScore) error {
	return g.persist(g.MemoryGateway.UpsertWeeklyScore(ctx, score))
}

func (g *SnapshotGateway) CreateLeadIndicator(ctx context.Context, cycleID string, ind *domain.LeadIndicator) error {
	return g.persist(g.MemoryGateway.CreateLeadIndicator(ctx, cycleID, ind))
}

func (g *SnapshotGateway) UpdateLeadIndicator(ctx context.Context, cycleID, indicatorID string, patch domain.LeadIndicatorPatch) (*domain.LeadIndicator, error) {
	ind, err := g.MemoryGateway.UpdateLeadIndicator(ctx, cycleID, indicatorID, patch)
	return ind, g.persist(err)
}

func (g *SnapshotGateway) DeleteLeadIndicator(ctx context.Context, cycleID, indicatorID string) error {
	return g.persist(g.MemoryGateway.DeleteLeadIndicator(ctx, cycleID, indicatorID))
}
