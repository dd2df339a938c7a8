package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/adapters/repository"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

var errRemote = errors.New("connection reset by peer")

func ptr[T any](v T) *T {
	return &v
}

// FlakyGateway wraps the in-memory gateway and fails every write while simulateError is set.
type FlakyGateway struct {
	*repository.MemoryGateway

	mu            sync.Mutex
	simulateError error
	listCalls     int
}

func NewFlakyGateway(seed ...*domain.Cycle) *FlakyGateway {
	return &FlakyGateway{MemoryGateway: repository.NewMemoryGateway(seed...)}
}

func (f *FlakyGateway) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulateError = err
}

func (f *FlakyGateway) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.simulateError
}

func (f *FlakyGateway) ListCycles(ctx context.Context, userID string) ([]*domain.Cycle, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.MemoryGateway.ListCycles(ctx, userID)
}

func (f *FlakyGateway) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.CreateCycle(ctx, c)
}

func (f *FlakyGateway) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.MemoryGateway.UpdateCycle(ctx, cycleID, patch)
}

func (f *FlakyGateway) DeleteCycle(ctx context.Context, cycleID string) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.DeleteCycle(ctx, cycleID)
}

func (f *FlakyGateway) CreateGoal(ctx context.Context, goal *domain.Goal) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.CreateGoal(ctx, goal)
}

func (f *FlakyGateway) DeleteGoal(ctx context.Context, cycleID, goalID string) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.DeleteGoal(ctx, cycleID, goalID)
}

func (f *FlakyGateway) ToggleWeeklyTask(ctx context.Context, cycleID, taskID string, wasCompleted bool) (*domain.WeeklyTask, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return f.MemoryGateway.ToggleWeeklyTask(ctx, cycleID, taskID, wasCompleted)
}

func (f *FlakyGateway) ToggleHabitCompletion(ctx context.Context, cycleID, habitID, date string, wasCompleted bool) (bool, error) {
	if err := f.err(); err != nil {
		return false, err
	}
	return f.MemoryGateway.ToggleHabitCompletion(ctx, cycleID, habitID, date, wasCompleted)
}

func (f *FlakyGateway) UpsertWeeklyScore(ctx context.Context, score *domain.WeeklyScore) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.UpsertWeeklyScore(ctx, score)
}

func (f *FlakyGateway) CreateLeadIndicator(ctx context.Context, cycleID string, ind *domain.LeadIndicator) error {
	if err := f.err(); err != nil {
		return err
	}
	return f.MemoryGateway.CreateLeadIndicator(ctx, cycleID, ind)
}

func newLoadedStore(t *testing.T, seed ...*domain.Cycle) (*services.CycleStore, *FlakyGateway) {
	t.Helper()
	gw := NewFlakyGateway(seed...)
	store := services.NewCycleStore(gw, testUser)
	require.NoError(t, store.FetchAll(context.Background()))
	return store, gw
}

func newCycle(t *testing.T, name, start string, created time.Time) *domain.Cycle {
	t.Helper()
	c, err := domain.NewCycle(testUser, name, "", start)
	require.NoError(t, err)
	c.CreatedAt = created
	return c
}

func TestCycleStore_FetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Loads Newest First And Selects It", func(t *testing.T) {
		older := newCycle(t, "Q1", "2026-01-05", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		newer := newCycle(t, "Q2", "2026-04-06", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		store, _ := newLoadedStore(t, older, newer)

		cycles := store.Cycles()
		require.Len(t, cycles, 2)
		assert.Equal(t, newer.ID, cycles[0].ID)
		assert.Equal(t, newer.ID, store.CurrentCycleID())
	})

	t.Run("Success: Keeps An Existing Selection", func(t *testing.T) {
		older := newCycle(t, "Q1", "2026-01-05", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		newer := newCycle(t, "Q2", "2026-04-06", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		store, _ := newLoadedStore(t, older, newer)

		store.SelectCycle(older.ID)
		require.NoError(t, store.FetchAll(ctx))
		assert.Equal(t, older.ID, store.CurrentCycleID())
	})

	t.Run("Success: Empty List Leaves No Selection", func(t *testing.T) {
		store, _ := newLoadedStore(t)
		assert.Empty(t, store.Cycles())
		assert.Empty(t, store.CurrentCycleID())

		_, err := store.CurrentCycle()
		assert.ErrorIs(t, err, domain.ErrNoCurrentCycle)
	})

	t.Run("Fail: Remote Error Goes To The Error Slot", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Q1", "2026-01-05", time.Now()))
		before := store.Cycles()

		gw.SetError(errRemote)
		err := store.FetchAll(ctx)

		assert.ErrorIs(t, err, errRemote)
		assert.Equal(t, errRemote.Error(), store.LastError())
		assert.Equal(t, before, store.Cycles())

		store.DismissError()
		assert.Empty(t, store.LastError())
	})
}

func TestCycleStore_CreateCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Derives End Date And Selects The New Cycle", func(t *testing.T) {
		store, _ := newLoadedStore(t, newCycle(t, "Old", "2025-10-06", time.Now().Add(-time.Hour)))

		id, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: "Q1 2026", StartDate: "2026-01-13"})
		require.NoError(t, err)

		current, err := store.CurrentCycle()
		require.NoError(t, err)
		assert.Equal(t, id, current.ID)
		assert.Equal(t, "2026-04-06", current.EndDate)
		assert.Equal(t, 1, current.CurrentWeek)
		assert.Equal(t, domain.CycleStatusActive, current.Status)
		assert.Equal(t, id, store.Cycles()[0].ID)
	})

	t.Run("Fail: Validation Error Does Not Touch The Slot", func(t *testing.T) {
		store, _ := newLoadedStore(t)

		_, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: "  ", StartDate: "2026-01-13"})
		assert.ErrorIs(t, err, domain.ErrCycleNameEmpty)
		assert.Empty(t, store.LastError())
		assert.Empty(t, store.Cycles())
	})

	t.Run("Fail: Remote Error Leaves State Unchanged", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "Old", "2025-10-06", time.Now()))
		before := store.Cycles()
		selected := store.CurrentCycleID()

		gw.SetError(errRemote)
		_, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: "Q1", StartDate: "2026-01-13"})

		assert.ErrorIs(t, err, errRemote)
		assert.Equal(t, before, store.Cycles())
		assert.Equal(t, selected, store.CurrentCycleID())
		assert.NotEmpty(t, store.LastError())
	})
}

func TestCycleStore_DeleteCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Deleting The Selected Cycle Selects The First Remaining", func(t *testing.T) {
		a := newCycle(t, "A", "2026-01-05", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		b := newCycle(t, "B", "2026-01-05", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		c := newCycle(t, "C", "2026-01-05", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		store, _ := newLoadedStore(t, a, b, c)
		store.SelectCycle(b.ID)

		require.NoError(t, store.DeleteCycle(ctx, b.ID))

		assert.Equal(t, a.ID, store.CurrentCycleID())
		assert.Len(t, store.Cycles(), 2)
	})

	t.Run("Success: Deleting Another Cycle Keeps The Selection", func(t *testing.T) {
		a := newCycle(t, "A", "2026-01-05", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
		b := newCycle(t, "B", "2026-01-05", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
		store, _ := newLoadedStore(t, a, b)

		require.NoError(t, store.DeleteCycle(ctx, b.ID))
		assert.Equal(t, a.ID, store.CurrentCycleID())
	})

	t.Run("Success: Deleting The Last Cycle Clears The Selection", func(t *testing.T) {
		only := newCycle(t, "Only", "2026-01-05", time.Now())
		store, _ := newLoadedStore(t, only)

		require.NoError(t, store.DeleteCycle(ctx, only.ID))
		assert.Empty(t, store.CurrentCycleID())
		assert.Empty(t, store.Cycles())
	})

	t.Run("Success: Unknown Cycle Is A No-Op", func(t *testing.T) {
		store, gw := newLoadedStore(t, newCycle(t, "A", "2026-01-05", time.Now()))
		gw.SetError(errRemote)

		assert.NoError(t, store.DeleteCycle(ctx, "missing"))
		assert.Empty(t, store.LastError())
	})

	t.Run("Fail: Remote Error Keeps The Cycle", func(t *testing.T) {
		only := newCycle(t, "Only", "2026-01-05", time.Now())
		store, gw := newLoadedStore(t, only)
		gw.SetError(errRemote)

		assert.ErrorIs(t, store.DeleteCycle(ctx, only.ID), errRemote)
		assert.Equal(t, only.ID, store.CurrentCycleID())
		assert.Len(t, store.Cycles(), 1)
	})
}

func TestCycleStore_ArchiveAndUpdate(t *testing.T) {
	ctx := context.Background()
	cycle := newCycle(t, "Q1", "2026-01-13", time.Now())
	store, gw := newLoadedStore(t, cycle)

	require.NoError(t, store.ArchiveCycle(ctx, cycle.ID))
	current, _ := store.CurrentCycle()
	assert.Equal(t, domain.CycleStatusArchived, current.Status)

	require.NoError(t, store.SetCurrentWeek(ctx, 20))
	current, _ = store.CurrentCycle()
	assert.Equal(t, domain.BufferWeek, current.CurrentWeek)

	assert.ErrorIs(t, store.UpdateCycle(ctx, domain.CyclePatch{Status: ptr("paused")}), domain.ErrInvalidCycleStatus)
	assert.Empty(t, store.LastError())

	gw.SetError(errRemote)
	assert.ErrorIs(t, store.UpdateCycle(ctx, domain.CyclePatch{Name: ptr("Renamed")}), errRemote)
	current, _ = store.CurrentCycle()
	assert.Equal(t, "Q1", current.Name)
}

func TestCycleStore_NoCurrentCycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newLoadedStore(t)

	_, err := store.AddGoal(ctx, services.AddGoalInput{Title: "Ship"})
	assert.ErrorIs(t, err, domain.ErrNoCurrentCycle)

	_, err = store.RecordWeeklyScore(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNoCurrentCycle)

	assert.Equal(t, 0, store.WeeklyExecutionRate())
	assert.Equal(t, 0, store.AggregateGoalProgress())
	assert.Empty(t, store.LastError())
}

func TestCycleStore_SelectionPersistsInSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	now := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)

	gw, err := repository.OpenSnapshot(path, testUser, now)
	require.NoError(t, err)
	store := services.NewCycleStore(gw, testUser)
	require.NoError(t, store.FetchAll(ctx))
	demoID := store.CurrentCycleID()

	newID, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: "Q2", StartDate: "2026-04-07"})
	require.NoError(t, err)
	store.SelectCycle(demoID)

	reopened, err := repository.OpenSnapshot(path, testUser, now)
	require.NoError(t, err)
	again := services.NewCycleStore(reopened, testUser)
	require.NoError(t, again.FetchAll(ctx))

	assert.Equal(t, demoID, again.CurrentCycleID())
	assert.Len(t, again.Cycles(), 2)
	assert.NotEqual(t, newID, again.CurrentCycleID())
}

func TestCycleStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store, gw := newLoadedStore(t)

	var events []services.Event
	unsubscribe := store.Subscribe(func(e services.Event) {
		events = append(events, e)
	})

	id, err := store.CreateCycle(ctx, services.CreateCycleInput{Name: "Q1", StartDate: "2026-01-13"})
	require.NoError(t, err)

	gw.SetError(errRemote)
	_, _ = store.AddGoal(ctx, services.AddGoalInput{Title: "Ship"})

	require.Len(t, events, 2)
	assert.Equal(t, services.EventStateChanged, events[0].Type)
	assert.Equal(t, id, events[0].CycleID)
	assert.Equal(t, services.EventError, events[1].Type)
	assert.Equal(t, errRemote.Error(), events[1].Message)

	unsubscribe()
	store.DismissError()
	assert.Len(t, events, 2)
}
