package scheduler

import (
	"cmp"
	"slices"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
)

// Block is a task or meal placed on the day's timeline.
type Block struct {
	ID       string
	Name     string
	Priority model.Priority
	Estimate time.Duration
	Start    Clock
	End      Clock
}

// ScheduledTime returns the block interval as "HH:MM-HH:MM".
func (b Block) ScheduledTime() string {
	return Interval(b.Start, b.End)
}

func (b Block) IsMeal() bool {
	return b.Priority == model.Meal
}

// Result is the outcome of one scheduling run.
type Result struct {
	Blocks []Block
	// Unscheduled holds the sorted tail that did not fit before the day end.
	Unscheduled []model.Task
}

// Scheduler places tasks greedily on a single day. It holds no state between
// runs, so one value can serve concurrent callers.
type Scheduler struct {
	start Clock
	end   Clock
}

type Option func(*Scheduler)

// WithDayStart moves the initial cursor.
func WithDayStart(c Clock) Option {
	return func(s *Scheduler) { s.start = c }
}

// WithDayEnd moves the day boundary.
func WithDayEnd(c Clock) Option {
	return func(s *Scheduler) { s.end = c }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{start: DayStart, end: DayEnd}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule runs the default day (08:00 to 23:00) and returns the placed blocks.
func Schedule(tasks []model.Task, mealsToInclude []string) []Block {
	return New().Plan(tasks, mealsToInclude).Blocks
}

// Plan runs the default day and also reports the tasks that did not fit.
func Plan(tasks []model.Task, mealsToInclude []string) Result {
	return New().Plan(tasks, mealsToInclude)
}

type item struct {
	task model.Task
	meal *Meal
}

func (it item) name() string {
	if it.meal != nil {
		return it.meal.Name
	}
	return it.task.Name
}

func (it item) rank() int {
	if it.meal != nil {
		return model.Meal.Rank()
	}
	return it.task.Priority.Rank()
}

// Plan sorts tasks by priority rank then name and places them one after the
// other from the day start. Included meals pre-empt any task that would start
// inside or run into their window. Placement stops at the first task that
// would end after the day end; that task and everything after it is returned
// in Unscheduled. The tasks slice is not modified.
//
// Estimates must be positive; this is not checked here (see model.Task.Validate).
func (s *Scheduler) Plan(tasks []model.Task, mealsToInclude []string) Result {
	if len(tasks) == 0 {
		return Result{}
	}

	active := selectMeals(mealsToInclude)
	items := make([]item, 0, len(tasks)+len(active))
	for _, t := range tasks {
		items = append(items, item{task: t})
	}
	for i := range active {
		items = append(items, item{meal: &active[i]})
	}
	slices.SortStableFunc(items, func(a, b item) int {
		if c := cmp.Compare(a.rank(), b.rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.name(), b.name())
	})

	run := &run{cursor: s.start, active: active, emitted: make(map[string]bool, len(active))}
	for i, it := range items {
		if it.meal != nil {
			run.emitThrough(*it.meal)
			continue
		}

		end := run.clearMeals(it.task.Estimate)
		if end > s.end {
			for _, rest := range items[i:] {
				if rest.meal == nil {
					run.result.Unscheduled = append(run.result.Unscheduled, rest.task)
				}
			}
			break
		}

		run.result.Blocks = append(run.result.Blocks, Block{
			ID:       it.task.ID,
			Name:     it.task.Name,
			Priority: it.task.Priority,
			Estimate: it.task.Estimate,
			Start:    run.cursor,
			End:      end,
		})
		run.cursor = end
	}

	// Meals are reservations; they are kept even when tasks ran out of room.
	run.emitRemaining()
	return run.result
}

type run struct {
	cursor  Clock
	active  []Meal
	emitted map[string]bool
	result  Result
}

// clearMeals emits every included meal that collides with a task of length d
// at the cursor, then returns the task's tentative end.
func (r *run) clearMeals(d time.Duration) Clock {
	for {
		end := r.cursor.Add(d)
		m, ok := r.collision(end)
		if !ok {
			return end
		}
		r.emit(m)
	}
}

func (r *run) collision(end Clock) (Meal, bool) {
	for _, m := range r.active {
		if !r.emitted[m.Name] && m.collides(r.cursor, end) {
			return m, true
		}
	}
	return Meal{}, false
}

// emitThrough emits target, preceded by any earlier included meal that is
// still pending, so that blocks stay in start order.
func (r *run) emitThrough(target Meal) {
	for _, m := range r.active {
		if m.Start > target.Start {
			return
		}
		if r.emitted[m.Name] || m.End <= r.cursor {
			continue
		}
		r.emit(m)
	}
}

func (r *run) emitRemaining() {
	for _, m := range r.active {
		if !r.emitted[m.Name] && m.End > r.cursor {
			r.emit(m)
		}
	}
}

func (r *run) emit(m Meal) {
	r.result.Blocks = append(r.result.Blocks, Block{
		ID:       "meal-" + m.Name,
		Name:     m.Name,
		Priority: model.Meal,
		Estimate: time.Duration(m.End-m.Start) * time.Minute,
		Start:    m.Start,
		End:      m.End,
	})
	r.emitted[m.Name] = true
	if m.End > r.cursor {
		r.cursor = m.End
	}
}

// selectMeals resolves meal names against the catalogue. Unknown names and
// repeats are dropped; the result is in start order.
func selectMeals(names []string) []Meal {
	var out []Meal
	for _, m := range meals {
		if slices.Contains(names, m.Name) {
			out = append(out, m)
		}
	}
	return out
}
