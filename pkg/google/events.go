package google

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/util"
	"google.golang.org/api/calendar/v3"
)

// EventService is the slice of the Calendar events API the publisher needs.
type EventService interface {
	Get(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	Patch(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
	// FindByKey searches for the event tagged with a block key.
	FindByKey(ctx context.Context, calendarID, key string) (*calendar.Event, error)
	// ListDay returns the events starting within the 24 hours from day.
	ListDay(ctx context.Context, calendarID string, day time.Time) ([]*calendar.Event, error)
}

type apiEvents struct {
	srv *calendar.Service
}

func (a apiEvents) Get(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	return a.srv.Events.Get(calendarID, eventID).Context(ctx).Do()
}

func (a apiEvents) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return a.srv.Events.Insert(calendarID, event).Context(ctx).Do()
}

func (a apiEvents) Patch(ctx context.Context, calendarID, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return a.srv.Events.Patch(calendarID, eventID, patch).Context(ctx).Do()
}

func (a apiEvents) Delete(ctx context.Context, calendarID, eventID string) error {
	return a.srv.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

func (a apiEvents) FindByKey(ctx context.Context, calendarID, key string) (*calendar.Event, error) {
	events, err := a.srv.Events.List(calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.ExtendedPropertyKey, key)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func (a apiEvents) ListDay(ctx context.Context, calendarID string, day time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	err := a.srv.Events.List(calendarID).
		TimeMin(day.Format(time.RFC3339)).
		TimeMax(day.AddDate(0, 0, 1).Format(time.RFC3339)).
		SingleEvents(true).
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	return items, err
}
