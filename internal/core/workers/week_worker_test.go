package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCycleRepo struct {
	mock.Mock
}

func (m *MockCycleRepo) ListActiveCycles(ctx context.Context) ([]*domain.Cycle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Cycle), args.Error(1)
}

func (m *MockCycleRepo) UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error) {
	args := m.Called(ctx, cycleID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cycle), args.Error(1)
}

type recordingSessions struct {
	invalidated []string
}

func (r *recordingSessions) Invalidate(userID string) {
	r.invalidated = append(r.invalidated, userID)
}

func weekPatch(week int) any {
	return mock.MatchedBy(func(p domain.CyclePatch) bool {
		return p.CurrentWeek != nil && *p.CurrentWeek == week
	})
}

func newTestWorker(repo *MockCycleRepo, sessions *recordingSessions, today time.Time) *WeekWorker {
	w := NewWeekWorker(repo, sessions)
	w.now = func() time.Time { return today }
	return w
}

func TestWeekWorker_ProcessJob(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC)

	t.Run("Success: Advances A Stale Week And Invalidates The Session", func(t *testing.T) {
		repo := new(MockCycleRepo)
		sessions := &recordingSessions{}
		repo.On("UpdateCycle", mock.Anything, "cycle-1", weekPatch(3)).Return(&domain.Cycle{ID: "cycle-1", CurrentWeek: 3}, nil)

		w := newTestWorker(repo, sessions, today)
		w.processJob(ctx, WeekJob{CycleID: "cycle-1", UserID: "user-1", StartDate: "2026-01-13", CurrentWeek: 1})

		repo.AssertExpectations(t)
		assert.Equal(t, []string{"user-1"}, sessions.invalidated)
	})

	t.Run("Success: Up To Date Cycle Is Left Alone", func(t *testing.T) {
		repo := new(MockCycleRepo)
		sessions := &recordingSessions{}

		w := newTestWorker(repo, sessions, today)
		w.processJob(ctx, WeekJob{CycleID: "cycle-1", UserID: "user-1", StartDate: "2026-01-13", CurrentWeek: 3})

		repo.AssertNotCalled(t, "UpdateCycle", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, sessions.invalidated)
	})

	t.Run("Success: Past The Twelfth Week Lands On The Buffer Week", func(t *testing.T) {
		repo := new(MockCycleRepo)
		sessions := &recordingSessions{}
		repo.On("UpdateCycle", mock.Anything, "cycle-1", weekPatch(domain.BufferWeek)).Return(&domain.Cycle{ID: "cycle-1"}, nil)

		w := newTestWorker(repo, sessions, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
		w.processJob(ctx, WeekJob{CycleID: "cycle-1", UserID: "user-1", StartDate: "2026-01-13", CurrentWeek: 12})

		repo.AssertExpectations(t)
	})

	t.Run("Fail: Update Error Keeps The Session", func(t *testing.T) {
		repo := new(MockCycleRepo)
		sessions := &recordingSessions{}
		repo.On("UpdateCycle", mock.Anything, "cycle-1", mock.Anything).Return(nil, errors.New("db down"))

		w := newTestWorker(repo, sessions, today)
		w.processJob(ctx, WeekJob{CycleID: "cycle-1", UserID: "user-1", StartDate: "2026-01-13", CurrentWeek: 1})

		assert.Empty(t, sessions.invalidated)
	})

	t.Run("Fail: Bad Start Date Is Skipped", func(t *testing.T) {
		repo := new(MockCycleRepo)
		sessions := &recordingSessions{}

		w := newTestWorker(repo, sessions, today)
		w.processJob(ctx, WeekJob{CycleID: "cycle-1", StartDate: "garbage"})

		repo.AssertNotCalled(t, "UpdateCycle", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWeekWorker_ScanActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Enqueues Every Active Cycle", func(t *testing.T) {
		repo := new(MockCycleRepo)
		repo.On("ListActiveCycles", mock.Anything).Return([]*domain.Cycle{
			{ID: "a", UserID: "u1", StartDate: "2026-01-13", CurrentWeek: 1},
			{ID: "b", UserID: "u2", StartDate: "2026-01-05", CurrentWeek: 2},
		}, nil)

		w := NewWeekWorker(repo, nil)
		require.NoError(t, w.ScanActive(ctx))

		assert.Len(t, w.jobs, 2)
		first := <-w.jobs
		assert.Equal(t, "a", first.CycleID)
		assert.Equal(t, "u1", first.UserID)
	})

	t.Run("Fail: List Error Is Wrapped", func(t *testing.T) {
		repo := new(MockCycleRepo)
		boom := errors.New("db down")
		repo.On("ListActiveCycles", mock.Anything).Return(nil, boom)

		w := NewWeekWorker(repo, nil)
		assert.ErrorIs(t, w.ScanActive(ctx), boom)
	})
}

func TestWeekWorker_EnqueueDropsWhenFull(t *testing.T) {
	w := NewWeekWorker(new(MockCycleRepo), nil)
	for i := 0; i < cap(w.jobs)+5; i++ {
		w.Enqueue(WeekJob{CycleID: "c"})
	}
	assert.Len(t, w.jobs, cap(w.jobs))
}

func TestWeekWorker_Schedule(t *testing.T) {
	w := NewWeekWorker(new(MockCycleRepo), nil)

	assert.Error(t, w.Schedule(context.Background(), "not a cron spec"))

	require.NoError(t, w.Schedule(context.Background(), "@daily"))
	w.Stop()
}

func TestWeekWorker_StartProcessesQueue(t *testing.T) {
	repo := new(MockCycleRepo)
	sessions := &recordingSessions{}
	done := make(chan struct{})
	repo.On("UpdateCycle", mock.Anything, "cycle-1", weekPatch(2)).
		Return(&domain.Cycle{ID: "cycle-1"}, nil).
		Run(func(mock.Arguments) { close(done) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := newTestWorker(repo, sessions, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	w.Start(ctx)
	w.Enqueue(WeekJob{CycleID: "cycle-1", UserID: "user-1", StartDate: "2026-01-13", CurrentWeek: 1})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not process the job")
	}
}
