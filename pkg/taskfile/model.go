package taskfile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/util"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Hours is an estimate in hours. It accepts JSON numbers and numeric strings,
// since table exports are not consistent about which one they emit.
type Hours float64

// UnmarshalJSON implements the json.Unmarshaler interface for Hours.
func (h *Hours) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*h = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("failed to parse estimated_time '%s': %w", s, err)
	}
	*h = Hours(v)
	return nil
}

func (h Hours) Duration() time.Duration {
	return time.Duration(float64(h) * float64(time.Hour))
}

// Record is one task row as entered by the user.
type Record struct {
	ID            string   `json:"id,omitempty"`
	TaskName      string   `json:"task_name"`
	Priority      string   `json:"priority"`
	EstimatedTime Hours    `json:"estimated_time,omitempty"`
	Est           string   `json:"est,omitempty"` // PT1H30M or 1h30m
	TaskDate      string   `json:"task_date,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Task converts the record. An empty task_date takes defaultDay.
func (r Record) Task(defaultDay time.Time) (model.Task, error) {
	t := model.Task{
		ID:       strings.TrimSpace(r.ID),
		Name:     strings.TrimSpace(r.TaskName),
		Priority: model.ParsePriority(r.Priority),
		Estimate: r.EstimatedTime.Duration(),
		Date:     defaultDay,
		Source:   "file",
		Tags:     r.Tags,
	}
	if r.Est != "" {
		est, err := parseEst(r.Est)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %q: %w", t.Name, err)
		}
		t.Estimate = est
	}
	if strings.TrimSpace(r.TaskDate) != "" {
		day, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(r.TaskDate), defaultDay.Location())
		if err != nil {
			return model.Task{}, fmt.Errorf("task %q: invalid task_date '%s': %w", t.Name, r.TaskDate, err)
		}
		t.Date = day
	}
	return t, nil
}

// parseEst reads ISO 8601 durations (the taskwarrior UDA format) and Go-style
// ones such as "1h30m" or "1d".
func parseEst(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(s), "P") {
		return util.ParseDuration(s)
	}
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid est '%s': %w", s, err)
	}
	return d, nil
}

// Tasks converts and validates every record, failing on the first bad one.
func Tasks(records []Record, defaultDay time.Time) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(records))
	for i, r := range records {
		t, err := r.Task(defaultDay)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}
	model.AssignIDs("file", tasks)
	return tasks, nil
}
