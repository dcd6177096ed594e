package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewClient signs in with the cached OAuth token and returns a publisher for
// the calendar whose title is calendarName. idx remembers which event holds
// which block and may be nil.
func NewClient(ctx context.Context, calendarName string, idx *index.EventIndex) (*CalendarClient, error) {
	httpClient, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	calendarID, err := findCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("calendar", calendarName).Str("id", calendarID).Msg("publishing plans to calendar")
	return NewCalendarClient(apiEvents{srv: srv}, calendarID, idx), nil
}

// findCalendarID walks the user's calendar list for an exact title match.
// Plans are only ever written to an existing calendar, never a new one.
func findCalendarID(ctx context.Context, srv *calendar.Service, name string) (string, error) {
	var id string
	err := srv.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, entry := range page.Items {
			if entry.Summary == name && id == "" {
				id = entry.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to list calendars: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("calendar %q not found, create it in Google Calendar or pick another with set-calendar", name)
	}
	return id, nil
}
