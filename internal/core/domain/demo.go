package domain

import (
	"time"

	"github.com/google/uuid"
)

// DemoCycle builds the seeded dataset local mode falls back to when no usable snapshot exists.
func DemoCycle(userID string, now time.Time) *Cycle {
	const start = "2026-01-13"
	end := "2026-04-06"
	created := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)
	if now.Before(created) {
		created = now.UTC()
	}

	cycleID := uuid.NewString()
	c := &Cycle{
		ID:          cycleID,
		UserID:      userID,
		Name:        "2026 Q1 Productivity",
		StartDate:   start,
		EndDate:     end,
		Vision:      "Become a leader who delivers the best results with a healthy body and mind",
		CurrentWeek: 1,
		Status:      CycleStatusActive,
		CreatedAt:   created,
	}

	goal := func(title, desc string, progress int) Goal {
		return Goal{
			ID: uuid.NewString(), CycleID: cycleID, Title: title, Description: desc,
			TargetDate: optionalString(end), Progress: progress, CreatedAt: created,
		}
	}
	c.Goals = []Goal{
		goal("Lose 5kg", "Reach the target weight with a healthy diet and regular exercise", 15),
		goal("Ship the new project MVP", "Release an MVP with the core features working within 12 weeks", 8),
		goal("Finish 12 books", "Read one business or self-development book per week", 8),
	}

	task := func(title string, done bool, due string, g Goal) WeeklyTask {
		return WeeklyTask{
			ID: uuid.NewString(), CycleID: cycleID, GoalID: optionalString(g.ID), Title: title,
			Completed: done, DueDate: optionalString(due), CreatedAt: created,
		}
	}
	health, mvp, books := c.Goals[0], c.Goals[1], c.Goals[2]
	c.WeeklyTasks = []WeeklyTask{
		task("Finish the Figma prototype", true, "2026-01-17", mvp),
		task("Design the database schema", true, "2026-01-17", mvp),
		task("Define the API endpoints", false, "2026-01-18", mvp),
		task("Exercise 30+ minutes three times", false, "2026-01-19", health),
		task("Read chapters 1-5 of The One Thing", true, "2026-01-19", books),
		task("Install a food diary app and start logging", true, "2026-01-15", health),
		task("Define project milestones", false, "2026-01-18", mvp),
		task("Write the weekly review", false, "2026-01-19", mvp),
	}

	action := func(title string, done bool, priority string) DailyAction {
		return DailyAction{
			ID: uuid.NewString(), CycleID: cycleID, Title: title, Completed: done,
			Date: "2026-01-16", Priority: priority, CreatedAt: created,
		}
	}
	c.DailyActions = []DailyAction{
		action("30 minute jog", true, PriorityHigh),
		action("Write the API design doc", false, PriorityHigh),
		action("Read chapter 2 of The One Thing", false, PriorityMedium),
	}

	habit := func(name string, target int, dates ...string) Habit {
		return Habit{
			ID: uuid.NewString(), CycleID: cycleID, Name: name, TargetDaysPerWeek: target,
			CompletedDates: NormalizeDates(dates), CreatedAt: created,
		}
	}
	c.Habits = []Habit{
		habit("Glass of water after waking", 7, "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16"),
		habit("30 minutes of exercise", 5, "2026-01-13", "2026-01-15", "2026-01-16"),
		habit("10 minutes of meditation", 7, "2026-01-14", "2026-01-16"),
		habit("No food after 8pm", 6, "2026-01-13", "2026-01-14", "2026-01-15"),
		habit("30 minutes of reading", 7, "2026-01-13", "2026-01-14"),
	}

	scoreID := uuid.NewString()
	indicator := func(name string, target, actual float64, unit string) LeadIndicator {
		return LeadIndicator{ID: uuid.NewString(), WeeklyScoreID: scoreID, Name: name, Target: target, Actual: actual, Unit: unit}
	}
	c.WeeklyScores = []WeeklyScore{{
		ID: scoreID, CycleID: cycleID, WeekNumber: 1,
		PlannedTasks: 10, CompletedTasks: 8, ExecutionRate: ExecutionRate(8, 10),
		LeadIndicators: []LeadIndicator{
			indicator("Workouts", 5, 4, "sessions"),
			indicator("Coding time", 20, 18, "hours"),
			indicator("Reading time", 5, 3, "hours"),
		},
	}}

	return c
}
