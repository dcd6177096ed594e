package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Priority is the tier a task is scheduled in.
type Priority string

const (
	High   Priority = "High"
	Medium Priority = "Medium"
	Low    Priority = "Low"
	// Meal is the synthetic priority carried by injected meal blocks.
	Meal Priority = "Meal"
)

// UnrankedPriority is the rank of meals, missing and unknown priorities.
const UnrankedPriority = 999

const DateLayout = "2006-01-02"

var (
	ErrMissingName     = errors.New("task name is required")
	ErrMissingPriority = errors.New("task priority is required")
	ErrInvalidEstimate = errors.New("task estimate must be positive")
)

// Rank orders priorities: High=1, Medium=2, Low=3, anything else sorts last.
func (p Priority) Rank() int {
	switch p {
	case High:
		return 1
	case Medium:
		return 2
	case Low:
		return 3
	default:
		return UnrankedPriority
	}
}

// ParsePriority maps the spellings used by the task sources onto a Priority.
// Unrecognised values are kept verbatim so they rank last instead of being lost.
func ParsePriority(s string) Priority {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "high", "h", "a":
		return High
	case "medium", "m", "b":
		return Medium
	case "low", "l", "c":
		return Low
	case "meal":
		return Meal
	}
	return Priority(s)
}

// Task represents a generic task from any source.
type Task struct {
	ID       string
	Name     string
	Priority Priority
	Estimate time.Duration
	// Date is the calendar day the task belongs to, at midnight local time.
	Date   time.Time
	Source string // "file", "taskwarrior" or "orgmode"
	Tags   []string
}

// Validate checks the fields the scheduler needs. It runs at the input
// boundary, never inside the scheduling loop.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task %q: %w", t.ID, ErrMissingName)
	}
	if strings.TrimSpace(string(t.Priority)) == "" {
		return fmt.Errorf("task %q: %w", t.Name, ErrMissingPriority)
	}
	if t.Estimate <= 0 {
		return fmt.Errorf("task %q: %w", t.Name, ErrInvalidEstimate)
	}
	return nil
}

// ValidateAll returns the first validation error in tasks.
func ValidateAll(tasks []Task) error {
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FilterByDate returns the tasks that belong to day, in input order.
func FilterByDate(tasks []Task, day time.Time) []Task {
	var filtered []Task
	for _, t := range tasks {
		if SameDay(t.Date, day) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FilterByTag keeps the tasks carrying tag. An empty tag keeps everything.
func FilterByTag(tasks []Task, tag string) []Task {
	if tag == "" {
		return tasks
	}
	var filtered []Task
	for _, t := range tasks {
		if slices.Contains(t.Tags, tag) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// ParseDate parses a YYYY-MM-DD date, accepting "today" as a shorthand.
func ParseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if s == "" || strings.EqualFold(s, "today") {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	day, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return day, nil
}
