package domain

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrScoreNotFound        = errors.New("weekly score not found")
	ErrIndicatorNotFound    = errors.New("lead indicator not found")
	ErrInvalidWeek          = errors.New("week number must be between 1 and 12")
	ErrIndicatorNameEmpty   = errors.New("indicator name cannot be empty")
	ErrIndicatorNameTooLong = errors.New("indicator name is too long (max 100 chars)")
	ErrInvalidTaskCounts    = errors.New("task counts cannot be negative and completed cannot exceed planned")
)

// TargetExecutionRate is the weekly execution percentage that counts as a successful week.
const TargetExecutionRate = 85

// WeeklyScore is unique per (cycle, week number).
type WeeklyScore struct {
	ID             string          `json:"id" db:"id" yaml:"id"`
	CycleID        string          `json:"cycle_id" db:"cycle_id" yaml:"cycle_id"`
	WeekNumber     int             `json:"week_number" db:"week_number" yaml:"week_number"`
	PlannedTasks   int             `json:"planned_tasks" db:"planned_tasks" yaml:"planned_tasks"`
	CompletedTasks int             `json:"completed_tasks" db:"completed_tasks" yaml:"completed_tasks"`
	ExecutionRate  int             `json:"execution_rate" db:"execution_rate" yaml:"execution_rate"`
	LeadIndicators []LeadIndicator `json:"lead_indicators" db:"-" yaml:"lead_indicators"`
}

type LeadIndicator struct {
	ID            string  `json:"id" db:"id" yaml:"id"`
	WeeklyScoreID string  `json:"weekly_score_id" db:"weekly_score_id" yaml:"weekly_score_id"`
	Name          string  `json:"name" db:"name" yaml:"name"`
	Target        float64 `json:"target" db:"target" yaml:"target"`
	Actual        float64 `json:"actual" db:"actual" yaml:"actual"`
	Unit          string  `json:"unit" db:"unit" yaml:"unit"`
}

type LeadIndicatorPatch struct {
	Name   *string
	Target *float64
	Actual *float64
	Unit   *string
}

func (p LeadIndicatorPatch) IsEmpty() bool {
	return p.Name == nil && p.Target == nil && p.Actual == nil && p.Unit == nil
}

// ExecutionRate is round(completed/planned*100), or 0 when nothing was planned.
func ExecutionRate(completed, planned int) int {
	if planned <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(planned) * 100))
}

func ValidScoreWeek(week int) bool {
	return week >= 1 && week <= CycleWeeks
}

func NewWeeklyScore(cycleID string, week, planned, completed int) (*WeeklyScore, error) {
	if !ValidScoreWeek(week) {
		return nil, ErrInvalidWeek
	}
	if planned < 0 || completed < 0 || completed > planned {
		return nil, ErrInvalidTaskCounts
	}
	return &WeeklyScore{
		ID:             uuid.New().String(),
		CycleID:        cycleID,
		WeekNumber:     week,
		PlannedTasks:   planned,
		CompletedTasks: completed,
		ExecutionRate:  ExecutionRate(completed, planned),
		LeadIndicators: []LeadIndicator{},
	}, nil
}

func NewLeadIndicator(scoreID, name string, target, actual float64, unit string) (*LeadIndicator, error) {
	cleanName, err := validateTitle(name, ErrIndicatorNameEmpty, ErrIndicatorNameTooLong)
	if err != nil {
		return nil, err
	}
	return &LeadIndicator{
		ID:            uuid.New().String(),
		WeeklyScoreID: scoreID,
		Name:          cleanName,
		Target:        target,
		Actual:        actual,
		Unit:          strings.TrimSpace(unit),
	}, nil
}

func (p *LeadIndicatorPatch) Validate() error {
	if p.Name != nil {
		clean, err := validateTitle(*p.Name, ErrIndicatorNameEmpty, ErrIndicatorNameTooLong)
		if err != nil {
			return err
		}
		p.Name = &clean
	}
	if p.Unit != nil {
		clean := strings.TrimSpace(*p.Unit)
		p.Unit = &clean
	}
	return nil
}

func (l *LeadIndicator) Apply(p LeadIndicatorPatch) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Target != nil {
		l.Target = *p.Target
	}
	if p.Actual != nil {
		l.Actual = *p.Actual
	}
	if p.Unit != nil {
		l.Unit = *p.Unit
	}
}

func (s WeeklyScore) Clone() WeeklyScore {
	s.LeadIndicators = append([]LeadIndicator{}, s.LeadIndicators...)
	return s
}

// SortScores orders scores by ascending week number.
func SortScores(scores []WeeklyScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].WeekNumber < scores[j].WeekNumber
	})
}
