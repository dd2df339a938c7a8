package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound     = errors.New("weekly task not found")
	ErrTaskTitleEmpty   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = errors.New("task title is too long (max 100 chars)")
	ErrToggleConflict   = errors.New("completion state changed elsewhere")
)

type WeeklyTask struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	CycleID   string    `json:"cycle_id" db:"cycle_id" yaml:"cycle_id"`
	GoalID    *string   `json:"goal_id,omitempty" db:"goal_id" yaml:"goal_id,omitempty"`
	Title     string    `json:"title" db:"title" yaml:"title"`
	Completed bool      `json:"completed" db:"completed" yaml:"completed"`
	DueDate   *string   `json:"due_date,omitempty" db:"due_date" yaml:"due_date,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// WeeklyTaskPatch is a partial task update. An empty GoalID detaches the task from its goal,
// an empty DueDate clears the due date.
type WeeklyTaskPatch struct {
	Title     *string
	Completed *bool
	DueDate   *string
	GoalID    *string
}

func (p WeeklyTaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil && p.DueDate == nil && p.GoalID == nil
}

func NewWeeklyTask(cycleID, title string, goalID, dueDate *string) (*WeeklyTask, error) {
	cleanTitle, err := validateTitle(title, ErrTaskTitleEmpty, ErrTaskTitleTooLong)
	if err != nil {
		return nil, err
	}
	due, err := normalizeOptionalDate(dueDate)
	if err != nil {
		return nil, err
	}

	var goal *string
	if goalID != nil {
		goal = optionalString(strings.TrimSpace(*goalID))
	}

	return &WeeklyTask{
		ID:        uuid.New().String(),
		CycleID:   cycleID,
		GoalID:    goal,
		Title:     cleanTitle,
		Completed: false,
		DueDate:   due,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (p *WeeklyTaskPatch) Validate() error {
	if p.Title != nil {
		clean, err := validateTitle(*p.Title, ErrTaskTitleEmpty, ErrTaskTitleTooLong)
		if err != nil {
			return err
		}
		p.Title = &clean
	}
	if p.DueDate != nil {
		due, err := normalizeOptionalDate(p.DueDate)
		if err != nil {
			return err
		}
		empty := ""
		if due == nil {
			due = &empty
		}
		p.DueDate = due
	}
	if p.GoalID != nil {
		clean := strings.TrimSpace(*p.GoalID)
		p.GoalID = &clean
	}
	return nil
}

func (t *WeeklyTask) Apply(p WeeklyTaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate != nil {
		t.DueDate = optionalString(*p.DueDate)
	}
	if p.GoalID != nil {
		t.GoalID = optionalString(*p.GoalID)
	}
}

// BelongsTo reports whether the task references the given goal.
func (t *WeeklyTask) BelongsTo(goalID string) bool {
	return t.GoalID != nil && *t.GoalID == goalID
}

func (t WeeklyTask) clone() WeeklyTask {
	t.GoalID = copyString(t.GoalID)
	t.DueDate = copyString(t.DueDate)
	return t
}
