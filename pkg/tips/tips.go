// Package tips picks a motivational line for the number of tasks on a day.
package tips

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/model"
	yaml "go.yaml.in/yaml/v3"
)

var ErrNoMatch = errors.New("no matching tip")

// Tip is one row of the tips table. TaskCount is either an exact count ("3")
// or a half-open range "lo-hi" that matches lo <= n < hi.
type Tip struct {
	TaskCount  string `json:"task_count" yaml:"task_count"`
	Motivation string `json:"motivation" yaml:"motivation"`
}

// CountRange is a parsed TaskCount.
type CountRange struct {
	Lo, Hi int // Hi is exclusive
}

func (r CountRange) Contains(n int) bool {
	return n >= r.Lo && n < r.Hi
}

// ParseCount parses "n" or "lo-hi".
func ParseCount(s string) (CountRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, isRange := strings.Cut(s, "-")
	a, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || a < 0 {
		return CountRange{}, fmt.Errorf("invalid task count %q", s)
	}
	if !isRange {
		return CountRange{Lo: a, Hi: a + 1}, nil
	}
	b, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || b < a {
		return CountRange{}, fmt.Errorf("invalid task count range %q", s)
	}
	return CountRange{Lo: a, Hi: b}, nil
}

// Match returns the motivation of the first tip whose count matches n.
// Rows with malformed counts are skipped.
func Match(tips []Tip, n int) (string, error) {
	for _, tip := range tips {
		r, err := ParseCount(tip.TaskCount)
		if err != nil {
			continue
		}
		if r.Contains(n) {
			return tip.Motivation, nil
		}
	}
	return "", ErrNoMatch
}

// CountTasks counts the non-meal tasks on a day.
func CountTasks(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Priority != model.Meal {
			n++
		}
	}
	return n
}

// LoadFile reads tips from a JSON or YAML list.
func LoadFile(path string) ([]Tip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tips []Tip
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &tips)
	default:
		err = json.Unmarshal(data, &tips)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode tips %s: %w", path, err)
	}
	return tips, nil
}
