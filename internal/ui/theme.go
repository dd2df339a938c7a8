package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

const (
	IconCycle  = "🗓️"
	IconGoal   = "🎯"
	IconTask   = "☑️"
	IconAction = "📌"
	IconHabit  = "🔁"
	IconScore  = "📈"
	IconDone   = "✅"
	IconPlus   = "➕"
	IconKey    = "🔑"
	IconWarn   = "⚠️"
	IconError  = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

func CycleStatus(status string) string {
	switch status {
	case domain.CycleStatusActive:
		return Good.Render(status)
	case domain.CycleStatusCompleted:
		return H2.Render(status)
	default:
		return Muted.Render(status)
	}
}

// Rate colours an execution percentage against the 85% target.
func Rate(rate int) string {
	text := fmt.Sprintf("%d%%", rate)
	switch {
	case domain.MeetsTarget(rate):
		return Good.Render(text)
	case rate >= 50:
		return Warn.Render(text)
	default:
		return Bad.Render(text)
	}
}

func Priority(priority string) string {
	switch priority {
	case domain.PriorityHigh:
		return Bad.Render(priority)
	case domain.PriorityMedium:
		return Warn.Render(priority)
	default:
		return Muted.Render(priority)
	}
}

func Check(done bool) string {
	if done {
		return Good.Render("[x]")
	}
	return Muted.Render("[ ]")
}

// Bar draws a fixed-width progress bar for a 0..100 value.
func Bar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// ShortID is the prefix shown in listings; commands accept any unique prefix.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
