package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
	"github.com/robfig/cron/v3"
)

type CycleRepository interface {
	ListActiveCycles(ctx context.Context) ([]*domain.Cycle, error)
	UpdateCycle(ctx context.Context, cycleID string, patch domain.CyclePatch) (*domain.Cycle, error)
}

// SessionInvalidator drops cached per-user state after the worker changed a cycle.
type SessionInvalidator interface {
	Invalidate(userID string)
}

type WeekJob struct {
	CycleID     string
	UserID      string
	StartDate   string
	CurrentWeek int
}

// WeekWorker keeps current_week of active cycles in step with the calendar.
type WeekWorker struct {
	repo     CycleRepository
	sessions SessionInvalidator
	jobs     chan WeekJob
	now      func() time.Time
	cron     *cron.Cron
}

func NewWeekWorker(repo CycleRepository, sessions SessionInvalidator) *WeekWorker {
	return &WeekWorker{
		repo:     repo,
		sessions: sessions,
		jobs:     make(chan WeekJob, 100),
		now:      time.Now,
	}
}

func (w *WeekWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Week worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Week worker shutting down...")
				return
			}
		}
	}()
}

func (w *WeekWorker) Enqueue(job WeekJob) {
	select {
	case w.jobs <- job:
	default:
		log.Printf("[WORKER] Queue full! Dropping week job for cycle %s", job.CycleID)
	}
}

// ScanActive enqueues one job per active cycle.
func (w *WeekWorker) ScanActive(ctx context.Context) error {
	cycles, err := w.repo.ListActiveCycles(ctx)
	if err != nil {
		return fmt.Errorf("week worker: failed to list active cycles: %w", err)
	}
	for _, c := range cycles {
		w.Enqueue(WeekJob{
			CycleID:     c.ID,
			UserID:      c.UserID,
			StartDate:   c.StartDate,
			CurrentWeek: c.CurrentWeek,
		})
	}
	return nil
}

// Schedule runs ScanActive on the cron spec until Stop is called.
func (w *WeekWorker) Schedule(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := w.ScanActive(ctx); err != nil {
			log.Printf("[WORKER] %v", err)
		}
	}); err != nil {
		return fmt.Errorf("week worker: invalid schedule %q: %w", spec, err)
	}
	w.cron = c
	c.Start()
	log.Printf("[WORKER] Week scan scheduled (%s)", spec)
	return nil
}

func (w *WeekWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *WeekWorker) processJob(ctx context.Context, job WeekJob) {
	week, err := domain.WeekForDate(job.StartDate, w.now())
	if err != nil {
		log.Printf("[WORKER] Cycle %s has a bad start date %q: %v", job.CycleID, job.StartDate, err)
		return
	}
	if week == job.CurrentWeek {
		return
	}

	if _, err := w.repo.UpdateCycle(ctx, job.CycleID, domain.CyclePatch{CurrentWeek: &week}); err != nil {
		log.Printf("[WORKER] Failed to advance cycle %s to week %d: %v", job.CycleID, week, err)
		return
	}

	log.Printf("[WORKER] Cycle %s moved from week %d to %d", job.CycleID, job.CurrentWeek, week)
	if w.sessions != nil {
		w.sessions.Invalidate(job.UserID)
	}
}
