package orgmode

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

const sample = `#+TITLE: Today
* TODO [#A] Write report :work:
  SCHEDULED: <2024-05-01 Wed>
  :PROPERTIES:
  :ID: 1f2e3d4c-aaaa-bbbb-cccc-000000000001
  :EFFORT: 1:30
  :END:
* DONE [#A] Already done
  :PROPERTIES:
  :EFFORT: 0:30
  :END:
** TODO Stretch
   :PROPERTIES:
   :EFFORT: 0:15
   :END:
* TODO [#C] Tidy desk :home:chores:
`

func TestParse(t *testing.T) {
	fallback := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	tasks, err := Parse(strings.NewReader(sample), "today.org", fallback)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 open tasks, got %d", len(tasks))
	}

	report := tasks[0]
	if report.Name != "Write report" {
		t.Errorf("Expected 'Write report', got '%s'", report.Name)
	}
	if report.Priority != model.High {
		t.Errorf("Expected High, got %s", report.Priority)
	}
	if report.Estimate != 90*time.Minute {
		t.Errorf("Expected 1h30m, got %v", report.Estimate)
	}
	if report.ID != "1f2e3d4c-aaaa-bbbb-cccc-000000000001" {
		t.Errorf("Expected ID from drawer, got %s", report.ID)
	}
	if want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC); !report.Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, report.Date)
	}

	stretch := tasks[1]
	if stretch.Priority != model.Medium {
		t.Errorf("Expected default Medium, got %s", stretch.Priority)
	}
	if !stretch.Date.Equal(fallback) {
		t.Errorf("Expected fallback date, got %v", stretch.Date)
	}
	if stretch.ID == "" {
		t.Errorf("Expected generated ID")
	}

	tidy := tasks[2]
	if tidy.Priority != model.Low || tidy.Estimate != 0 {
		t.Errorf("Unexpected task: %+v", tidy)
	}
	if len(tidy.Tags) != 2 || tidy.Tags[1] != "chores" {
		t.Errorf("Expected tags [home chores], got %v", tidy.Tags)
	}

	again, err := Parse(strings.NewReader(sample), "today.org", fallback)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if again[1].ID != stretch.ID || again[2].ID != tidy.ID {
		t.Errorf("Expected generated IDs to be stable across parses")
	}
}
