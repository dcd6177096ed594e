package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"google.golang.org/api/calendar/v3"
)

// ExtendedPropertyKey tags every event this tool owns.
const ExtendedPropertyKey = "dayplan_id"

var durationPart = regexp.MustCompile(`(\d+)([HMS])`)

// ParseDuration parses ISO 8601 duration format (PT1H30M) as used by Taskwarrior UDAs
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	// Parse ISO 8601 format (PT1H, PT30M, PT1H30M)
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO 8601 duration format: %s", s)
	}

	s = s[1:]
	if len(s) == 0 || s[0] != 'T' {
		return 0, fmt.Errorf("invalid ISO 8601 duration (missing T): P%s", s)
	}
	s = s[1:]

	var total time.Duration
	for _, match := range durationPart.FindAllStringSubmatch(s, -1) {
		value, _ := strconv.Atoi(match[1])
		switch match[2] {
		case "H":
			total += time.Duration(value) * time.Hour
		case "M":
			total += time.Duration(value) * time.Minute
		case "S":
			total += time.Duration(value) * time.Second
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("invalid ISO 8601 duration: PT%s", s)
	}

	return total, nil
}

// BlockKey identifies a block of a given day across runs.
func BlockKey(day time.Time, blockID string) string {
	return day.Format(model.DateLayout) + "/" + blockID
}

// PriorityColorID maps a priority onto a Google Calendar event colour.
func PriorityColorID(p model.Priority) string {
	switch p {
	case model.High:
		return "11" // Tomato
	case model.Medium:
		return "5" // Banana
	case model.Low:
		return "10" // Basil
	case model.Meal:
		return "8" // Graphite
	default:
		return "1" // Lavender
	}
}

// ConvertBlockToCalendarEvent builds the event for a scheduled block on day.
// Times are anchored in day's location.
func ConvertBlockToCalendarEvent(day time.Time, block *scheduler.Block) (*calendar.Event, error) {
	if block == nil {
		return nil, fmt.Errorf("could not convert nil Block")
	}
	if block.End <= block.Start {
		return nil, fmt.Errorf("block %q has an empty interval %s", block.Name, block.ScheduledTime())
	}

	key := BlockKey(day, block.ID)

	summary := block.Name
	switch block.Priority {
	case model.Meal:
		summary = "🍴 " + block.Name
	case model.High:
		summary = "! " + block.Name
	}

	var desc strings.Builder
	desc.WriteString(fmt.Sprintf("Priority: %s\n", block.Priority))
	desc.WriteString(fmt.Sprintf("Scheduled: %s\n", block.ScheduledTime()))
	desc.WriteString(fmt.Sprintf("ID: %s\n", key))
	if !block.IsMeal() && block.Estimate > 0 {
		desc.WriteString("\nAccounting:\n")
		desc.WriteString(fmt.Sprintf("• estimated: %s\n", block.Estimate))
	}

	event := &calendar.Event{
		Summary: summary,
		ColorId: PriorityColorID(block.Priority),
		Start: &calendar.EventDateTime{
			DateTime: block.Start.On(day).UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: block.End.On(day).UTC().Format(time.RFC3339),
		},
		Description: desc.String(),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				ExtendedPropertyKey: key,
			},
		},
	}

	return event, nil
}

// EventNeedsUpdate returns a patch event if the fields we own differ between
// the existing event and the freshly converted target. It returns nil, nil
// when nothing changed.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}

	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}

	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}

	if existingEvent.Start == nil || existingEvent.End == nil {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		return patch, nil
	}

	existingStartTime, err := time.Parse(time.RFC3339, existingEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStartTime, err := time.Parse(time.RFC3339, targetEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEndTime, err := time.Parse(time.RFC3339, existingEvent.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEndTime, err := time.Parse(time.RFC3339, targetEvent.End.DateTime)
	if err != nil {
		return nil, err
	}

	if !existingStartTime.Equal(targetStartTime) || !existingEndTime.Equal(targetEndTime) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

var keyInDescription = regexp.MustCompile(`ID: (\d{4}-\d{2}-\d{2}/\S+)`)

// EventBlockKey returns the block key an event was published for: the private
// extended property, or the ID line of the description for events whose
// properties were stripped (e.g. copied or imported by hand).
func EventBlockKey(event *calendar.Event) (string, bool) {
	if event == nil {
		return "", false
	}
	if event.ExtendedProperties != nil {
		if key := event.ExtendedProperties.Private[ExtendedPropertyKey]; key != "" {
			return key, true
		}
	}
	return GetBlockKeyFromEventDescription(event.Description)
}

// GetBlockKeyFromEventDescription parses the block key from the event description.
func GetBlockKeyFromEventDescription(description string) (string, bool) {
	matches := keyInDescription.FindStringSubmatch(description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
