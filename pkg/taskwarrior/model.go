package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/util"
	"github.com/rs/zerolog/log"
)

const PENDING = "pending"

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

type Task struct {
	UUID        string      `json:"uuid"`
	Description string      `json:"description"`
	Due         *CustomTime `json:"due,omitempty"`
	Scheduled   *CustomTime `json:"scheduled,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority,omitempty"` // H, M or L
	Project     string      `json:"project,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	// UDA configured as uda.estimate.label=est, ISO 8601 duration.
	Est string `json:"est,omitempty"`
}

// Day returns the calendar day the task is planned for in loc: the scheduled
// date if set, otherwise the due date.
func (t *Task) Day(loc *time.Location) (time.Time, bool) {
	var at time.Time
	switch {
	case t.Scheduled != nil && !t.Scheduled.IsZero():
		at = t.Scheduled.Time
	case t.Due != nil && !t.Due.IsZero():
		at = t.Due.Time
	default:
		return time.Time{}, false
	}
	y, m, d := at.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), true
}

// ToModel converts pending tasks. Tasks without a scheduled or due date are
// placed on defaultDay. A malformed est only fails the conversion when the
// task falls on defaultDay; on other days the task is skipped.
func ToModel(tasks []Task, defaultDay time.Time) ([]model.Task, error) {
	var out []model.Task
	for i := range tasks {
		tw := &tasks[i]
		if tw.Status != PENDING {
			continue
		}
		day, ok := tw.Day(defaultDay.Location())
		if !ok {
			day = defaultDay
		}
		est, err := util.ParseDuration(tw.Est)
		if err != nil {
			if model.SameDay(day, defaultDay) {
				return nil, fmt.Errorf("task %s: %w", tw.UUID, err)
			}
			log.Debug().Err(err).Str("uuid", tw.UUID).Str("date", day.Format(model.DateLayout)).Msg("skipping task with bad est")
			continue
		}
		out = append(out, model.Task{
			ID:       tw.UUID,
			Name:     tw.Description,
			Priority: model.ParsePriority(tw.Priority),
			Estimate: est,
			Date:     day,
			Source:   "taskwarrior",
			Tags:     tw.Tags,
		})
	}
	return out, nil
}
