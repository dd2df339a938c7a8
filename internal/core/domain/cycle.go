package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCycleNotFound      = errors.New("cycle not found")
	ErrCycleNameEmpty     = errors.New("cycle name cannot be empty")
	ErrCycleNameTooLong   = errors.New("cycle name is too long (max 100 chars)")
	ErrCycleInvalidUserID = errors.New("invalid user id")
	ErrInvalidStartDate   = errors.New("invalid start date (must be YYYY-MM-DD)")
	ErrInvalidCycleStatus = errors.New("invalid cycle status (must be active, completed or archived)")
	ErrNoCurrentCycle     = errors.New("no current cycle selected")
)

const (
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
	CycleStatusArchived  = "archived"

	DateLayout = "2006-01-02"

	CycleWeeks   = 12
	BufferWeek   = 13
	CycleLength  = CycleWeeks * 7
	MaxNameLen   = 100
	MaxVisionLen = 2000
)

// Cycle is the aggregate root: one 12-week period and everything planned inside it.
type Cycle struct {
	ID          string    `json:"id" db:"id" yaml:"id"`
	UserID      string    `json:"user_id" db:"user_id" yaml:"user_id"`
	Name        string    `json:"name" db:"name" yaml:"name"`
	StartDate   string    `json:"start_date" db:"start_date" yaml:"start_date"`
	EndDate     string    `json:"end_date" db:"end_date" yaml:"end_date"`
	Vision      string    `json:"vision" db:"vision" yaml:"vision"`
	CurrentWeek int       `json:"current_week" db:"current_week" yaml:"current_week"`
	Status      string    `json:"status" db:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"created_at"`

	Goals        []Goal        `json:"goals" db:"-" yaml:"goals"`
	WeeklyTasks  []WeeklyTask  `json:"weekly_tasks" db:"-" yaml:"weekly_tasks"`
	DailyActions []DailyAction `json:"daily_actions" db:"-" yaml:"daily_actions"`
	Habits       []Habit       `json:"habits" db:"-" yaml:"habits"`
	WeeklyScores []WeeklyScore `json:"weekly_scores" db:"-" yaml:"weekly_scores"`
}

// CyclePatch carries the optional fields of a cycle update. Nil means unchanged.
type CyclePatch struct {
	Name        *string
	Vision      *string
	CurrentWeek *int
	Status      *string
}

func (p CyclePatch) IsEmpty() bool {
	return p.Name == nil && p.Vision == nil && p.CurrentWeek == nil && p.Status == nil
}

// ParseDate accepts the ISO calendar dates used across the model.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// EndDateFor returns the last calendar day of the 84-day period starting at start.
// It is computed once at creation and never re-derived.
func EndDateFor(start time.Time) string {
	return start.AddDate(0, 0, CycleLength-1).Format(DateLayout)
}

// ClampWeek keeps a week number inside 1..13.
func ClampWeek(week int) int {
	if week < 1 {
		return 1
	}
	if week > BufferWeek {
		return BufferWeek
	}
	return week
}

func NewCycle(userID, name, vision, startDate string) (*Cycle, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrCycleInvalidUserID
	}

	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return nil, ErrCycleNameEmpty
	}
	if len(cleanName) > MaxNameLen {
		return nil, ErrCycleNameTooLong
	}

	start, err := ParseDate(startDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}

	return &Cycle{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         cleanName,
		StartDate:    start.Format(DateLayout),
		EndDate:      EndDateFor(start),
		Vision:       strings.TrimSpace(vision),
		CurrentWeek:  1,
		Status:       CycleStatusActive,
		CreatedAt:    time.Now().UTC(),
		Goals:        []Goal{},
		WeeklyTasks:  []WeeklyTask{},
		DailyActions: []DailyAction{},
		Habits:       []Habit{},
		WeeklyScores: []WeeklyScore{},
	}, nil
}

func ValidCycleStatus(status string) bool {
	switch status {
	case CycleStatusActive, CycleStatusCompleted, CycleStatusArchived:
		return true
	}
	return false
}

// Validate normalizes the patch in place: names are trimmed and the week is clamped.
func (p *CyclePatch) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrCycleNameEmpty
		}
		if len(name) > MaxNameLen {
			return ErrCycleNameTooLong
		}
		p.Name = &name
	}
	if p.Vision != nil {
		vision := strings.TrimSpace(*p.Vision)
		p.Vision = &vision
	}
	if p.CurrentWeek != nil {
		week := ClampWeek(*p.CurrentWeek)
		p.CurrentWeek = &week
	}
	if p.Status != nil && !ValidCycleStatus(*p.Status) {
		return ErrInvalidCycleStatus
	}
	return nil
}

// Apply copies the header fields of a patch onto the cycle. Children are untouched.
func (c *Cycle) Apply(p CyclePatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Vision != nil {
		c.Vision = *p.Vision
	}
	if p.CurrentWeek != nil {
		c.CurrentWeek = ClampWeek(*p.CurrentWeek)
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
}

// Archive is one-way. Archiving an archived cycle is a no-op.
func (c *Cycle) Archive() {
	c.Status = CycleStatusArchived
}

func (c *Cycle) IsArchived() bool {
	return c.Status == CycleStatusArchived
}

// Clone returns a deep copy so callers never share slices with the store.
func (c *Cycle) Clone() *Cycle {
	if c == nil {
		return nil
	}
	out := *c
	out.Goals = append([]Goal{}, c.Goals...)
	out.WeeklyTasks = make([]WeeklyTask, len(c.WeeklyTasks))
	for i, t := range c.WeeklyTasks {
		out.WeeklyTasks[i] = t.clone()
	}
	out.DailyActions = append([]DailyAction{}, c.DailyActions...)
	out.Habits = make([]Habit, len(c.Habits))
	for i, h := range c.Habits {
		out.Habits[i] = h.Clone()
	}
	out.WeeklyScores = make([]WeeklyScore, len(c.WeeklyScores))
	for i, s := range c.WeeklyScores {
		out.WeeklyScores[i] = s.Clone()
	}
	for i, g := range out.Goals {
		out.Goals[i] = g.clone()
	}
	return &out
}

// Header returns the cycle without its child collections.
func (c *Cycle) Header() *Cycle {
	out := *c
	out.Goals = nil
	out.WeeklyTasks = nil
	out.DailyActions = nil
	out.Habits = nil
	out.WeeklyScores = nil
	return &out
}

// EnsureCollections replaces nil child slices with empty ones so JSON renders [] instead of null.
func (c *Cycle) EnsureCollections() {
	if c.Goals == nil {
		c.Goals = []Goal{}
	}
	if c.WeeklyTasks == nil {
		c.WeeklyTasks = []WeeklyTask{}
	}
	if c.DailyActions == nil {
		c.DailyActions = []DailyAction{}
	}
	if c.Habits == nil {
		c.Habits = []Habit{}
	}
	if c.WeeklyScores == nil {
		c.WeeklyScores = []WeeklyScore{}
	}
	for i := range c.Habits {
		if c.Habits[i].CompletedDates == nil {
			c.Habits[i].CompletedDates = []string{}
		}
	}
	for i := range c.WeeklyScores {
		if c.WeeklyScores[i].LeadIndicators == nil {
			c.WeeklyScores[i].LeadIndicators = []LeadIndicator{}
		}
	}
}
