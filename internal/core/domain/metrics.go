package domain

import (
	"math"
	"sort"
	"time"
)

// WeeklyExecutionRate covers the whole task list of a cycle, not only the tasks of the active week.
func WeeklyExecutionRate(tasks []WeeklyTask) int {
	if len(tasks) == 0 {
		return 0
	}
	return ExecutionRate(CompletedTasks(tasks), len(tasks))
}

func CompletedTasks(tasks []WeeklyTask) int {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return completed
}

// GoalProgress is the stored progress of a goal, 0 when the goal does not exist.
func GoalProgress(goals []Goal, goalID string) int {
	for _, g := range goals {
		if g.ID == goalID {
			return g.Progress
		}
	}
	return 0
}

// AggregateGoalProgress is the rounded mean progress over all goals.
func AggregateGoalProgress(goals []Goal) int {
	if len(goals) == 0 {
		return 0
	}
	total := 0
	for _, g := range goals {
		total += g.Progress
	}
	return int(math.Round(float64(total) / float64(len(goals))))
}

func MeetsTarget(rate int) bool {
	return rate >= TargetExecutionRate
}

// WeeksRemaining counts the current week as remaining. The buffer week leaves none.
func WeeksRemaining(currentWeek int) int {
	remaining := CycleWeeks - currentWeek + 1
	if remaining < 0 {
		return 0
	}
	return remaining
}

type WeekRate struct {
	Week int `json:"week"`
	Rate int `json:"rate"`
}

// ExecutionTrend has one point per scored week; unrecorded weeks read as 0.
func ExecutionTrend(scores []WeeklyScore) []WeekRate {
	byWeek := make(map[int]int, len(scores))
	for _, s := range scores {
		byWeek[s.WeekNumber] = s.ExecutionRate
	}
	trend := make([]WeekRate, CycleWeeks)
	for i := range trend {
		trend[i] = WeekRate{Week: i + 1, Rate: byWeek[i+1]}
	}
	return trend
}

// IndicatorAttainment is actual/target as a percentage capped at 100.
func IndicatorAttainment(ind LeadIndicator) float64 {
	if ind.Target <= 0 {
		return 0
	}
	return math.Min(ind.Actual/ind.Target*100, 100)
}

// WeekForDate maps a calendar day onto the cycle's week number, clamped to 1..13.
func WeekForDate(startDate string, day time.Time) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, ErrInvalidStartDate
	}
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(start).Hours() / 24)
	if days < 0 {
		return 1, nil
	}
	return ClampWeek(days/7 + 1), nil
}

// HabitCompletionsInWeek counts completions within [weekStart, weekStart+7).
func HabitCompletionsInWeek(h Habit, weekStart time.Time) int {
	from := weekStart.Format(DateLayout)
	to := weekStart.AddDate(0, 0, 7).Format(DateLayout)
	count := 0
	for _, d := range h.CompletedDates {
		if d >= from && d < to {
			count++
		}
	}
	return count
}

// HabitStreaks returns the current and longest run of consecutive completed days.
// The current streak survives if the last completion was today or yesterday.
func HabitStreaks(dates []string, today time.Time) (int, int) {
	var sorted []time.Time
	for _, d := range NormalizeDates(dates) {
		t, err := ParseDate(d)
		if err != nil {
			continue
		}
		sorted = append(sorted, t)
	}
	if len(sorted) == 0 {
		return 0, 0
	}

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].After(sorted[j])
	})

	day := 24 * time.Hour
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	currentStreak := 0
	if diff := now.Sub(sorted[0]); diff >= 0 && diff <= day {
		currentStreak = 1
		for i := 0; i < len(sorted)-1; i++ {
			if sorted[i].Sub(sorted[i+1]) != day {
				break
			}
			currentStreak++
		}
	}

	longestStreak := 0
	tempStreak := 1
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i].Sub(sorted[i+1]) == day {
			tempStreak++
			continue
		}
		if tempStreak > longestStreak {
			longestStreak = tempStreak
		}
		tempStreak = 1
	}
	if tempStreak > longestStreak {
		longestStreak = tempStreak
	}

	return currentStreak, longestStreak
}
