package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestFindCalendarID(t *testing.T) {
	// Two pages; the wanted calendar is on the second one.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/me/calendarList") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{"items": [{"id": "primary", "summary": "me@example.com"}], "nextPageToken": "p2"}`)
			return
		}
		fmt.Fprint(w, `{"items": [{"id": "plan-id", "summary": "Day Plan"}]}`)
	}))
	defer ts.Close()

	ctx := context.Background()
	srv, err := calendar.NewService(ctx, option.WithEndpoint(ts.URL+"/"), option.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	id, err := findCalendarID(ctx, srv, "Day Plan")
	if err != nil {
		t.Fatalf("findCalendarID failed: %v", err)
	}
	if id != "plan-id" {
		t.Errorf("Expected plan-id, got %s", id)
	}

	if _, err := findCalendarID(ctx, srv, "Missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}
