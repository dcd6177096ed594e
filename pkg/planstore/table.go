package planstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
)

const plansFile = "plans.json"

type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Priority  string `json:"priority"`
	Scheduled string `json:"scheduled_time"`
	Minutes   int    `json:"estimated_minutes"`
}

type Plan struct {
	Date        string    `json:"date"`
	Entries     []Entry   `json:"entries"`
	Unscheduled []string  `json:"unscheduled,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskCount is the number of tasks the plan was built from, scheduled or
// not. Meals are not counted.
func (p Plan) TaskCount() int {
	n := len(p.Unscheduled)
	for _, e := range p.Entries {
		if model.Priority(e.Priority) != model.Meal {
			n++
		}
	}
	return n
}

// Blocks turns the saved entries back into scheduler blocks.
func (p Plan) Blocks() ([]scheduler.Block, error) {
	blocks := make([]scheduler.Block, 0, len(p.Entries))
	for _, e := range p.Entries {
		start, end, err := parseInterval(e.Scheduled)
		if err != nil {
			return nil, fmt.Errorf("plan %s, %q: %w", p.Date, e.Name, err)
		}
		blocks = append(blocks, scheduler.Block{
			ID:       e.ID,
			Name:     e.Name,
			Priority: model.Priority(e.Priority),
			Estimate: time.Duration(e.Minutes) * time.Minute,
			Start:    start,
			End:      end,
		})
	}
	return blocks, nil
}

func parseInterval(s string) (scheduler.Clock, scheduler.Clock, error) {
	if len(s) != len("HH:MM-HH:MM") || s[5] != '-' {
		return 0, 0, fmt.Errorf("invalid interval %q", s)
	}
	start, err := scheduler.ParseClock(s[:5])
	if err != nil {
		return 0, 0, err
	}
	end, err := scheduler.ParseClock(s[6:])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Table keeps the last plan produced for each date.
type Table struct {
	Plans map[string]Plan `json:"plans"`
	Path  string          `json:"-"`
	dirty bool
}

func NewTable(dir string) (*Table, error) {
	t := &Table{
		Path:  filepath.Join(dir, plansFile),
		Plans: make(map[string]Plan),
	}

	if _, err := os.Stat(t.Path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(t)
}

func (t *Table) Save() error {
	if !t.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Put replaces the plan stored for day with res.
func (t *Table) Put(day time.Time, res scheduler.Result, now time.Time) Plan {
	p := Plan{
		Date:      day.Format(model.DateLayout),
		Entries:   make([]Entry, 0, len(res.Blocks)),
		CreatedAt: now,
	}
	for _, b := range res.Blocks {
		p.Entries = append(p.Entries, Entry{
			ID:        b.ID,
			Name:      b.Name,
			Priority:  string(b.Priority),
			Scheduled: b.ScheduledTime(),
			Minutes:   int(b.Estimate / time.Minute),
		})
	}
	for _, task := range res.Unscheduled {
		p.Unscheduled = append(p.Unscheduled, task.Name)
	}
	t.Plans[p.Date] = p
	t.dirty = true
	return p
}

func (t *Table) Get(day time.Time) (Plan, bool) {
	p, ok := t.Plans[day.Format(model.DateLayout)]
	return p, ok
}

// Dates returns the stored dates in ascending order.
func (t *Table) Dates() []string {
	dates := make([]string, 0, len(t.Plans))
	for d := range t.Plans {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func (t *Table) Remove(day time.Time) {
	key := day.Format(model.DateLayout)
	if _, exists := t.Plans[key]; exists {
		delete(t.Plans, key)
		t.dirty = true
	}
}

// Sweep removes and returns the plans dated before cutoff's calendar day.
func (t *Table) Sweep(cutoff time.Time) []Plan {
	limit := cutoff.Format(model.DateLayout)
	var swept []Plan
	for _, date := range t.Dates() {
		if date < limit {
			swept = append(swept, t.Plans[date])
			delete(t.Plans, date)
			t.dirty = true
		}
	}
	return swept
}
