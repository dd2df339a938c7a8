package services

import (
	"time"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

// WeeklyExecutionRate covers every task of the selected cycle, 0 without a selection.
func (s *CycleStore) WeeklyExecutionRate() int {
	rate := 0
	_, _ = s.withCurrent(func(c *domain.Cycle) error {
		rate = domain.WeeklyExecutionRate(c.WeeklyTasks)
		return nil
	})
	return rate
}

func (s *CycleStore) GoalProgress(goalID string) int {
	progress := 0
	_, _ = s.withCurrent(func(c *domain.Cycle) error {
		progress = domain.GoalProgress(c.Goals, goalID)
		return nil
	})
	return progress
}

func (s *CycleStore) AggregateGoalProgress() int {
	progress := 0
	_, _ = s.withCurrent(func(c *domain.Cycle) error {
		progress = domain.AggregateGoalProgress(c.Goals)
		return nil
	})
	return progress
}

type CycleSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	CurrentWeek int    `json:"current_week"`
	Selected    bool   `json:"selected"`
}

type HabitSummary struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TargetDaysPerWeek int    `json:"target_days_per_week"`
	CompletedThisWeek int    `json:"completed_this_week"`
	CompletedToday    bool   `json:"completed_today"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
}

type Dashboard struct {
	Cycle          *domain.Cycle        `json:"cycle"`
	Cycles         []CycleSummary       `json:"cycles"`
	ExecutionRate  int                  `json:"execution_rate"`
	TargetMet      bool                 `json:"target_met"`
	GoalProgress   int                  `json:"goal_progress"`
	WeeksRemaining int                  `json:"weeks_remaining"`
	Trend          []domain.WeekRate    `json:"trend"`
	TodayActions   []domain.DailyAction `json:"today_actions"`
	Habits         []HabitSummary       `json:"habits"`
	LastError      string               `json:"last_error,omitempty"`
}

// Dashboard assembles the read model shown to the user for the given day.
func (s *CycleStore) Dashboard(today time.Time) Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Dashboard{
		Cycles:       make([]CycleSummary, 0, len(s.cycles)),
		Trend:        domain.ExecutionTrend(nil),
		TodayActions: []domain.DailyAction{},
		Habits:       []HabitSummary{},
		LastError:    s.lastErr,
	}
	for _, c := range s.cycles {
		d.Cycles = append(d.Cycles, CycleSummary{
			ID:          c.ID,
			Name:        c.Name,
			Status:      c.Status,
			StartDate:   c.StartDate,
			EndDate:     c.EndDate,
			CurrentWeek: c.CurrentWeek,
			Selected:    c.ID == s.current,
		})
	}

	_, c := s.find(s.current)
	if c == nil {
		return d
	}

	d.Cycle = c.Clone()
	d.ExecutionRate = domain.WeeklyExecutionRate(c.WeeklyTasks)
	d.TargetMet = domain.MeetsTarget(d.ExecutionRate)
	d.GoalProgress = domain.AggregateGoalProgress(c.Goals)
	d.WeeksRemaining = domain.WeeksRemaining(c.CurrentWeek)
	d.Trend = domain.ExecutionTrend(c.WeeklyScores)

	todayKey := today.Format(domain.DateLayout)
	d.TodayActions = domain.ActionsOn(c.DailyActions, todayKey)

	var weekStart time.Time
	if start, err := domain.ParseDate(c.StartDate); err == nil {
		weekStart = start.AddDate(0, 0, (c.CurrentWeek-1)*7)
	}
	for i := range c.Habits {
		h := c.Habits[i]
		current, longest := domain.HabitStreaks(h.CompletedDates, today)
		d.Habits = append(d.Habits, HabitSummary{
			ID:                h.ID,
			Name:              h.Name,
			TargetDaysPerWeek: h.TargetDaysPerWeek,
			CompletedThisWeek: domain.HabitCompletionsInWeek(h, weekStart),
			CompletedToday:    h.IsCompletedOn(todayKey),
			CurrentStreak:     current,
			LongestStreak:     longest,
		})
	}
	return d
}
