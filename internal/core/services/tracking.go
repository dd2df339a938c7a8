package services

import (
	"context"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

type AddHabitInput struct {
	Name              string
	TargetDaysPerWeek int
}

func (s *CycleStore) AddHabit(ctx context.Context, input AddHabitInput) (*domain.Habit, error) {
	cycleID, err := s.withCurrent(nil)
	if err != nil {
		return nil, err
	}
	habit, err := domain.NewHabit(cycleID, input.Name, input.TargetDaysPerWeek)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CreateHabit(ctx, habit); err != nil {
		return nil, s.fail("add habit", err)
	}

	created := habit.Clone()
	s.apply(cycleID, func(c *domain.Cycle) {
		c.Habits = append(c.Habits, created)
	})
	return habit, nil
}

func lookupHabit(habitID, date string, completed *bool) func(c *domain.Cycle) error {
	return func(c *domain.Cycle) error {
		for i := range c.Habits {
			if c.Habits[i].ID == habitID {
				if completed != nil {
					*completed = c.Habits[i].IsCompletedOn(date)
				}
				return nil
			}
		}
		return domain.ErrHabitNotFound
	}
}

func (s *CycleStore) UpdateHabit(ctx context.Context, habitID string, patch domain.HabitPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(lookupHabit(habitID, "", nil))
	if err == domain.ErrHabitNotFound || patch.IsEmpty() {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.UpdateHabit(ctx, cycleID, habitID, patch)
	if err != nil {
		return s.fail("update habit", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.Habits {
			if c.Habits[i].ID == habitID {
				c.Habits[i].Name = updated.Name
				c.Habits[i].TargetDaysPerWeek = updated.TargetDaysPerWeek
			}
		}
	})
	return nil
}

func (s *CycleStore) DeleteHabit(ctx context.Context, habitID string) error {
	cycleID, err := s.withCurrent(lookupHabit(habitID, "", nil))
	if err == domain.ErrHabitNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteHabit(ctx, cycleID, habitID); err != nil {
		return s.fail("delete habit", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		habits := make([]domain.Habit, 0, len(c.Habits))
		for _, h := range c.Habits {
			if h.ID != habitID {
				habits = append(habits, h)
			}
		}
		c.Habits = habits
	})
	return nil
}

// ToggleHabitCompletion adds or removes date depending on the loaded state and sets the
// in-memory date to what the gateway reports.
func (s *CycleStore) ToggleHabitCompletion(ctx context.Context, habitID, date string) error {
	day, err := domain.ParseDate(date)
	if err != nil {
		return domain.ErrInvalidDate
	}
	date = day.Format(domain.DateLayout)

	var completed bool
	cycleID, err := s.withCurrent(lookupHabit(habitID, date, &completed))
	if err == domain.ErrHabitNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	done, err := s.gateway.ToggleHabitCompletion(ctx, cycleID, habitID, date, completed)
	if err != nil {
		return s.toggleFailed(ctx, "toggle habit completion", cycleID, err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.Habits {
			if c.Habits[i].ID == habitID {
				c.Habits[i].SetCompleted(date, done)
			}
		}
	})
	return nil
}

// RecordWeeklyScore derives planned and completed counts from the loaded task list and
// upserts the score for week. Indicators already recorded for that week are kept.
func (s *CycleStore) RecordWeeklyScore(ctx context.Context, week int) (*domain.WeeklyScore, error) {
	if !domain.ValidScoreWeek(week) {
		return nil, domain.ErrInvalidWeek
	}

	var planned, completed int
	cycleID, err := s.withCurrent(func(c *domain.Cycle) error {
		planned = len(c.WeeklyTasks)
		completed = domain.CompletedTasks(c.WeeklyTasks)
		return nil
	})
	if err != nil {
		return nil, err
	}

	score, err := domain.NewWeeklyScore(cycleID, week, planned, completed)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.UpsertWeeklyScore(ctx, score); err != nil {
		return nil, s.fail("record weekly score", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.WeeklyScores {
			if c.WeeklyScores[i].WeekNumber == week {
				score.LeadIndicators = append([]domain.LeadIndicator{}, c.WeeklyScores[i].LeadIndicators...)
				c.WeeklyScores[i] = score.Clone()
				return
			}
		}
		c.WeeklyScores = append(c.WeeklyScores, score.Clone())
		domain.SortScores(c.WeeklyScores)
	})
	return score, nil
}

type AddLeadIndicatorInput struct {
	Name   string
	Target float64
	Actual float64
	Unit   string
}

// AddLeadIndicator attaches an indicator to an already recorded week.
func (s *CycleStore) AddLeadIndicator(ctx context.Context, week int, input AddLeadIndicatorInput) (*domain.LeadIndicator, error) {
	var scoreID string
	cycleID, err := s.withCurrent(func(c *domain.Cycle) error {
		for _, sc := range c.WeeklyScores {
			if sc.WeekNumber == week {
				scoreID = sc.ID
				return nil
			}
		}
		return domain.ErrScoreNotFound
	})
	if err != nil {
		return nil, err
	}

	ind, err := domain.NewLeadIndicator(scoreID, input.Name, input.Target, input.Actual, input.Unit)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.CreateLeadIndicator(ctx, cycleID, ind); err != nil {
		return nil, s.fail("add lead indicator", err)
	}

	created := *ind
	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.WeeklyScores {
			if c.WeeklyScores[i].ID == scoreID {
				c.WeeklyScores[i].LeadIndicators = append(c.WeeklyScores[i].LeadIndicators, created)
			}
		}
	})
	return ind, nil
}

func lookupIndicator(indicatorID string) func(c *domain.Cycle) error {
	return func(c *domain.Cycle) error {
		for _, sc := range c.WeeklyScores {
			for _, ind := range sc.LeadIndicators {
				if ind.ID == indicatorID {
					return nil
				}
			}
		}
		return domain.ErrIndicatorNotFound
	}
}

func (s *CycleStore) UpdateLeadIndicator(ctx context.Context, indicatorID string, patch domain.LeadIndicatorPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	cycleID, err := s.withCurrent(lookupIndicator(indicatorID))
	if err == domain.ErrIndicatorNotFound || patch.IsEmpty() {
		return nil
	}
	if err != nil {
		return err
	}

	updated, err := s.gateway.UpdateLeadIndicator(ctx, cycleID, indicatorID, patch)
	if err != nil {
		return s.fail("update lead indicator", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.WeeklyScores {
			for j := range c.WeeklyScores[i].LeadIndicators {
				if c.WeeklyScores[i].LeadIndicators[j].ID == indicatorID {
					c.WeeklyScores[i].LeadIndicators[j] = *updated
				}
			}
		}
	})
	return nil
}

func (s *CycleStore) DeleteLeadIndicator(ctx context.Context, indicatorID string) error {
	cycleID, err := s.withCurrent(lookupIndicator(indicatorID))
	if err == domain.ErrIndicatorNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.gateway.DeleteLeadIndicator(ctx, cycleID, indicatorID); err != nil {
		return s.fail("delete lead indicator", err)
	}

	s.apply(cycleID, func(c *domain.Cycle) {
		for i := range c.WeeklyScores {
			kept := make([]domain.LeadIndicator, 0, len(c.WeeklyScores[i].LeadIndicators))
			for _, ind := range c.WeeklyScores[i].LeadIndicators {
				if ind.ID != indicatorID {
					kept = append(kept, ind)
				}
			}
			c.WeeklyScores[i].LeadIndicators = kept
		}
	})
	return nil
}
