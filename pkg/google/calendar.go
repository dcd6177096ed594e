package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"github.com/harrisonrobin/dayplan/pkg/util"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/calendar/v3"
)

// CalendarClient publishes day plans to one Google Calendar.
type CalendarClient struct {
	events     EventService
	calendarID string
	index      *index.EventIndex
}

// NewCalendarClient creates a new Google Calendar client. idx may be nil.
func NewCalendarClient(events EventService, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{events: events, calendarID: calendarID, index: idx}
}

// SyncReport counts what a plan sync changed.
type SyncReport struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
}

// SyncBlock creates the event for a block or patches the existing one.
func (c *CalendarClient) SyncBlock(ctx context.Context, day time.Time, block scheduler.Block) (*calendar.Event, SyncAction, error) {
	event, err := util.ConvertBlockToCalendarEvent(day, &block)
	if err != nil {
		return nil, ActionNone, err
	}
	key := util.BlockKey(day, block.ID)

	existingEvent, err := c.lookup(ctx, key)
	if err != nil {
		return nil, ActionNone, fmt.Errorf("error searching for event: %w", err)
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			return nil, ActionNone, fmt.Errorf("could not compare block with its calendar event: %w", err)
		}
		if patch == nil {
			c.remember(key, existingEvent.Id)
			return existingEvent, ActionNone, nil
		}
		updatedEvent, err := c.events.Patch(ctx, c.calendarID, existingEvent.Id, patch)
		if err != nil {
			return nil, ActionNone, err
		}
		c.remember(key, updatedEvent.Id)
		return updatedEvent, ActionUpdated, nil
	}

	createdEvent, err := c.events.Insert(ctx, c.calendarID, event)
	if err != nil {
		return nil, ActionNone, err
	}
	c.remember(key, createdEvent.Id)
	return createdEvent, ActionCreated, nil
}

// SyncPlan publishes every block of day and removes events of blocks that
// are no longer part of the plan.
func (c *CalendarClient) SyncPlan(ctx context.Context, day time.Time, blocks []scheduler.Block) (SyncReport, error) {
	var report SyncReport
	keep := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		keep[util.BlockKey(day, b.ID)] = true
		_, action, err := c.SyncBlock(ctx, day, b)
		if err != nil {
			return report, fmt.Errorf("sync %q: %w", b.Name, err)
		}
		switch action {
		case ActionCreated:
			report.Created++
		case ActionUpdated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	stale, err := c.staleEvents(ctx, day, keep)
	if err != nil {
		return report, err
	}
	for key, eventID := range stale {
		if err := c.DeleteEvent(ctx, eventID); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("could not delete stale event")
			continue
		}
		if c.index != nil {
			c.index.Remove(key)
		}
		report.Deleted++
	}
	return report, nil
}

// staleEvents maps the keys of day's published blocks that are not in keep to
// their event IDs. The calendar is listed as well as the index, so stale
// events are found when the index is missing or out of date.
func (c *CalendarClient) staleEvents(ctx context.Context, day time.Time, keep map[string]bool) (map[string]string, error) {
	prefix := day.Format(model.DateLayout) + "/"
	stale := make(map[string]string)
	if c.index != nil {
		for _, key := range c.index.KeysWithPrefix(prefix) {
			if !keep[key] {
				stale[key] = c.index.Get(key)
			}
		}
	}

	events, err := c.events.ListDay(ctx, c.calendarID, day)
	if err != nil {
		return nil, fmt.Errorf("error listing events of %s: %w", day.Format(model.DateLayout), err)
	}
	for _, ev := range events {
		key, ok := util.EventBlockKey(ev)
		if !ok || !strings.HasPrefix(key, prefix) || keep[key] || ev.Status == "cancelled" {
			continue
		}
		stale[key] = ev.Id
	}
	return stale, nil
}

// DeleteEvent removes one event from the plan calendar.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.events.Delete(ctx, c.calendarID, eventID)
}

// SyncAction is what SyncBlock did to the calendar.
type SyncAction int

const (
	ActionNone SyncAction = iota
	ActionCreated
	ActionUpdated
)

func (c *CalendarClient) lookup(ctx context.Context, key string) (*calendar.Event, error) {
	// Local index first, then fall back to an API search.
	if c.index != nil {
		if eventID := c.index.Get(key); eventID != "" {
			if ev, err := c.events.Get(ctx, c.calendarID, eventID); err == nil && ev != nil && ev.Status != "cancelled" {
				return ev, nil
			}
			log.Debug().Str("key", key).Msg("indexed event missing, searching calendar")
		}
	}
	return c.events.FindByKey(ctx, c.calendarID, key)
}

func (c *CalendarClient) remember(key, eventID string) {
	if c.index != nil {
		c.index.Set(key, eventID)
	}
}
