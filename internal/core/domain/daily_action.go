package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrActionNotFound     = errors.New("daily action not found")
	ErrActionTitleEmpty   = errors.New("action title cannot be empty")
	ErrActionTitleTooLong = errors.New("action title is too long (max 100 chars)")
	ErrInvalidPriority    = errors.New("invalid priority (must be high, medium or low)")
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	// DailyFocusLimit is how many actions the dashboard shows per day. Not enforced.
	DailyFocusLimit = 3
)

type DailyAction struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	CycleID   string    `json:"cycle_id" db:"cycle_id" yaml:"cycle_id"`
	Title     string    `json:"title" db:"title" yaml:"title"`
	Completed bool      `json:"completed" db:"completed" yaml:"completed"`
	Date      string    `json:"date" db:"date" yaml:"date"`
	Priority  string    `json:"priority" db:"priority" yaml:"priority"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

type DailyActionPatch struct {
	Title     *string
	Completed *bool
	Date      *string
	Priority  *string
}

func (p DailyActionPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.Date == nil && p.Priority == nil
}

// PriorityRank orders high before medium before low.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func validPriority(priority string) bool {
	return PriorityRank(priority) < 3
}

func NewDailyAction(cycleID, title, date, priority string) (*DailyAction, error) {
	cleanTitle, err := validateTitle(title, ErrActionTitleEmpty, ErrActionTitleTooLong)
	if err != nil {
		return nil, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !validPriority(priority) {
		return nil, ErrInvalidPriority
	}

	return &DailyAction{
		ID:        uuid.New().String(),
		CycleID:   cycleID,
		Title:     cleanTitle,
		Completed: false,
		Date:      day.Format(DateLayout),
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (p *DailyActionPatch) Validate() error {
	if p.Title != nil {
		clean, err := validateTitle(*p.Title, ErrActionTitleEmpty, ErrActionTitleTooLong)
		if err != nil {
			return err
		}
		p.Title = &clean
	}
	if p.Date != nil {
		day, err := ParseDate(*p.Date)
		if err != nil {
			return ErrInvalidDate
		}
		formatted := day.Format(DateLayout)
		p.Date = &formatted
	}
	if p.Priority != nil && !validPriority(*p.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

func (a *DailyAction) Apply(p DailyActionPatch) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Completed != nil {
		a.Completed = *p.Completed
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
}

// ActionsOn returns the actions planned for one day, highest priority first.
func ActionsOn(actions []DailyAction, date string) []DailyAction {
	out := []DailyAction{}
	for _, a := range actions {
		if a.Date == date {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return PriorityRank(out[i].Priority) < PriorityRank(out[j].Priority)
	})
	return out
}
