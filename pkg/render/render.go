// Package render formats scheduled blocks for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// PriorityLabel decorates a priority the way the task list shows it.
func PriorityLabel(p model.Priority) string {
	switch p {
	case model.High:
		return "🔴 High"
	case model.Medium:
		return "🟡 Medium"
	case model.Low:
		return "🟢 Low"
	case model.Meal:
		return "🍴 Meal"
	case "":
		return "-"
	default:
		return string(p)
	}
}

func hours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', -1, 64) + "h"
}

// Table renders blocks as a bordered table.
func Table(blocks []scheduler.Block) string {
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{b.ScheduledTime(), b.Name, PriorityLabel(b.Priority), hours(b.Estimate)})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Time", "Task", "Priority", "Estimate").
		Rows(rows...).
		String()
}

// Summary is the informational line about tasks left out of the day.
func Summary(unscheduled []model.Task) string {
	switch len(unscheduled) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("1 task could not be scheduled today: %s", unscheduled[0].Name)
	default:
		return fmt.Sprintf("%d tasks could not be scheduled today", len(unscheduled))
	}
}

// JSONBlock is the wire shape of a scheduled block.
type JSONBlock struct {
	ID            string  `json:"id"`
	TaskName      string  `json:"task_name"`
	Priority      string  `json:"priority"`
	EstimatedTime float64 `json:"estimated_time"`
	ScheduledTime string  `json:"scheduled_time"`
	TaskDate      string  `json:"task_date"`
}

// JSON writes the blocks of day as an indented JSON array.
func JSON(w io.Writer, day time.Time, blocks []scheduler.Block) error {
	out := make([]JSONBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, JSONBlock{
			ID:            b.ID,
			TaskName:      b.Name,
			Priority:      string(b.Priority),
			EstimatedTime: b.Estimate.Hours(),
			ScheduledTime: b.ScheduledTime(),
			TaskDate:      day.Format(model.DateLayout),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
