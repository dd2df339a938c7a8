package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrInvalidTargetDays  = errors.New("target days per week must be between 1 and 7")
	ErrCompletionExists   = errors.New("habit already completed on that date")
	ErrCompletionNotFound = errors.New("habit not completed on that date")
)

const DefaultTargetDaysPerWeek = 7

type Habit struct {
	ID                string    `json:"id" db:"id" yaml:"id"`
	CycleID           string    `json:"cycle_id" db:"cycle_id" yaml:"cycle_id"`
	Name              string    `json:"name" db:"name" yaml:"name"`
	TargetDaysPerWeek int       `json:"target_days_per_week" db:"target_days_per_week" yaml:"target_days_per_week"`
	CompletedDates    []string  `json:"completed_dates" db:"-" yaml:"completed_dates"`
	CreatedAt         time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// HabitCompletion is one "done that day" record.
type HabitCompletion struct {
	ID            string `json:"id" db:"id" yaml:"id"`
	HabitID       string `json:"habit_id" db:"habit_id" yaml:"habit_id"`
	CompletedDate string `json:"completed_date" db:"completed_date" yaml:"completed_date"`
}

type HabitPatch struct {
	Name              *string
	TargetDaysPerWeek *int
}

func (p HabitPatch) IsEmpty() bool {
	return p.Name == nil && p.TargetDaysPerWeek == nil
}

func NewHabit(cycleID, name string, targetDaysPerWeek int) (*Habit, error) {
	cleanName, err := validateTitle(name, ErrHabitNameEmpty, ErrHabitNameTooLong)
	if err != nil {
		return nil, err
	}
	if targetDaysPerWeek == 0 {
		targetDaysPerWeek = DefaultTargetDaysPerWeek
	}
	if targetDaysPerWeek < 1 || targetDaysPerWeek > 7 {
		return nil, ErrInvalidTargetDays
	}

	return &Habit{
		ID:                uuid.New().String(),
		CycleID:           cycleID,
		Name:              cleanName,
		TargetDaysPerWeek: targetDaysPerWeek,
		CompletedDates:    []string{},
		CreatedAt:         time.Now().UTC(),
	}, nil
}

func NewHabitCompletion(habitID, date string) (*HabitCompletion, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &HabitCompletion{
		ID:            uuid.New().String(),
		HabitID:       habitID,
		CompletedDate: day.Format(DateLayout),
	}, nil
}

func (p *HabitPatch) Validate() error {
	if p.Name != nil {
		clean, err := validateTitle(*p.Name, ErrHabitNameEmpty, ErrHabitNameTooLong)
		if err != nil {
			return err
		}
		p.Name = &clean
	}
	if p.TargetDaysPerWeek != nil && (*p.TargetDaysPerWeek < 1 || *p.TargetDaysPerWeek > 7) {
		return ErrInvalidTargetDays
	}
	return nil
}

func (h *Habit) Apply(p HabitPatch) {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.TargetDaysPerWeek != nil {
		h.TargetDaysPerWeek = *p.TargetDaysPerWeek
	}
}

func (h *Habit) IsCompletedOn(date string) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

// ToggleDate removes the date if present and adds it otherwise. The set stays sorted and unique.
func (h *Habit) ToggleDate(date string) {
	date = strings.TrimSpace(date)
	if h.IsCompletedOn(date) {
		h.SetCompleted(date, false)
		return
	}
	h.SetCompleted(date, true)
}

// SetCompleted forces the presence of a date in the completion set.
func (h *Habit) SetCompleted(date string, done bool) {
	out := make([]string, 0, len(h.CompletedDates)+1)
	for _, d := range h.CompletedDates {
		if d != date {
			out = append(out, d)
		}
	}
	if done {
		out = append(out, date)
	}
	h.CompletedDates = NormalizeDates(out)
}

// NormalizeDates sorts and dedups a list of ISO dates.
func NormalizeDates(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}

func (h Habit) Clone() Habit {
	h.CompletedDates = append([]string{}, h.CompletedDates...)
	return h
}
