package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalTitleEmpty   = errors.New("goal title cannot be empty")
	ErrGoalTitleTooLong = errors.New("goal title is too long (max 100 chars)")
	ErrInvalidProgress  = errors.New("progress must be between 0 and 100")
	ErrInvalidDate      = errors.New("invalid date (must be YYYY-MM-DD)")
)

const MaxTitleLen = 100

type Goal struct {
	ID          string    `json:"id" db:"id" yaml:"id"`
	CycleID     string    `json:"cycle_id" db:"cycle_id" yaml:"cycle_id"`
	Title       string    `json:"title" db:"title" yaml:"title"`
	Description string    `json:"description" db:"description" yaml:"description"`
	TargetDate  *string   `json:"target_date,omitempty" db:"target_date" yaml:"target_date,omitempty"`
	Progress    int       `json:"progress" db:"progress" yaml:"progress"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// GoalPatch is a partial goal update. An empty TargetDate clears the date.
type GoalPatch struct {
	Title       *string
	Description *string
	TargetDate  *string
	Progress    *int
}

func (p GoalPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.TargetDate == nil && p.Progress == nil
}

func validateTitle(title string, empty, tooLong error) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", empty
	}
	if len(clean) > MaxTitleLen {
		return "", tooLong
	}
	return clean, nil
}

// normalizeOptionalDate returns nil for an empty input and an error for a malformed one.
func normalizeOptionalDate(date *string) (*string, error) {
	if date == nil {
		return nil, nil
	}
	clean := strings.TrimSpace(*date)
	if clean == "" {
		return nil, nil
	}
	t, err := ParseDate(clean)
	if err != nil {
		return nil, ErrInvalidDate
	}
	formatted := t.Format(DateLayout)
	return &formatted, nil
}

func NewGoal(cycleID, title, description string, targetDate *string, progress int) (*Goal, error) {
	cleanTitle, err := validateTitle(title, ErrGoalTitleEmpty, ErrGoalTitleTooLong)
	if err != nil {
		return nil, err
	}
	if progress < 0 || progress > 100 {
		return nil, ErrInvalidProgress
	}
	date, err := normalizeOptionalDate(targetDate)
	if err != nil {
		return nil, err
	}

	return &Goal{
		ID:          uuid.New().String(),
		CycleID:     cycleID,
		Title:       cleanTitle,
		Description: strings.TrimSpace(description),
		TargetDate:  date,
		Progress:    progress,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (p *GoalPatch) Validate() error {
	if p.Title != nil {
		clean, err := validateTitle(*p.Title, ErrGoalTitleEmpty, ErrGoalTitleTooLong)
		if err != nil {
			return err
		}
		p.Title = &clean
	}
	if p.Description != nil {
		clean := strings.TrimSpace(*p.Description)
		p.Description = &clean
	}
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > 100) {
		return ErrInvalidProgress
	}
	if p.TargetDate != nil {
		date, err := normalizeOptionalDate(p.TargetDate)
		if err != nil {
			return err
		}
		empty := ""
		if date == nil {
			date = &empty
		}
		p.TargetDate = date
	}
	return nil
}

func (g *Goal) Apply(p GoalPatch) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetDate != nil {
		g.TargetDate = optionalString(*p.TargetDate)
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
}

func (g Goal) clone() Goal {
	g.TargetDate = copyString(g.TargetDate)
	return g
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
