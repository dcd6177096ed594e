package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(name string, p model.Priority, hours float64) model.Task {
	return model.Task{
		ID:       "id-" + name,
		Name:     name,
		Priority: p,
		Estimate: time.Duration(hours * float64(time.Hour)),
	}
}

type placed struct {
	Name string
	Time string
}

func summarize(blocks []Block) []placed {
	out := make([]placed, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, placed{Name: b.Name, Time: b.ScheduledTime()})
	}
	return out
}

func assertWellFormed(t *testing.T, blocks []Block) {
	t.Helper()
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		assert.LessOrEqual(t, prev.Start, cur.Start, "blocks out of order at %d", i)
		assert.LessOrEqual(t, prev.End, cur.Start, "%s overlaps %s", prev.Name, cur.Name)
	}
}

func TestSchedule_EmptyInput(t *testing.T) {
	assert.Empty(t, Schedule(nil, nil))
	assert.Empty(t, Schedule([]model.Task{}, []string{"Breakfast", "Lunch", "Dinner"}))
}

func TestSchedule_PriorityOrdering(t *testing.T) {
	tasks := []model.Task{
		task("B", model.Low, 1),
		task("C", model.Medium, 1),
		task("A", model.High, 1),
	}

	got := summarize(Schedule(tasks, nil))
	assert.Equal(t, []placed{
		{"A", "08:00-09:00"},
		{"C", "09:00-10:00"},
		{"B", "10:00-11:00"},
	}, got)
}

func TestSchedule_TiesBrokenByName(t *testing.T) {
	tasks := []model.Task{
		task("zeta", model.High, 0.5),
		task("alpha", model.High, 0.5),
		task("mid", model.High, 0.5),
	}

	got := summarize(Schedule(tasks, nil))
	assert.Equal(t, []placed{
		{"alpha", "08:00-08:30"},
		{"mid", "08:30-09:00"},
		{"zeta", "09:00-09:30"},
	}, got)
}

func TestSchedule_StableForIdenticalKeys(t *testing.T) {
	first := task("same", model.Medium, 1)
	first.ID = "first"
	second := task("same", model.Medium, 1)
	second.ID = "second"

	blocks := Schedule([]model.Task{first, second}, nil)
	require.Len(t, blocks, 2)
	assert.Equal(t, "first", blocks[0].ID)
	assert.Equal(t, "second", blocks[1].ID)
}

func TestSchedule_UnknownPriorityRanksLast(t *testing.T) {
	tasks := []model.Task{
		task("mystery", model.Priority("Urgent"), 1),
		task("blank", "", 1),
		task("low", model.Low, 1),
	}

	got := summarize(Schedule(tasks, nil))
	assert.Equal(t, []placed{
		{"low", "08:00-09:00"},
		{"blank", "09:00-10:00"},
		{"mystery", "10:00-11:00"},
	}, got)
}

func TestSchedule_MealAppendedAfterNamedTasks(t *testing.T) {
	tasks := []model.Task{task("T", model.High, 2)}

	got := summarize(Schedule(tasks, []string{"Lunch"}))
	assert.Equal(t, []placed{
		{"T", "08:00-10:00"},
		{"Lunch", "13:00-14:00"},
	}, got)
}

func TestSchedule_BreakfastPreemptsDayStart(t *testing.T) {
	tasks := []model.Task{task("T", model.High, 1)}

	got := summarize(Schedule(tasks, []string{"Breakfast"}))
	assert.Equal(t, []placed{
		{"Breakfast", "08:00-09:00"},
		{"T", "09:00-10:00"},
	}, got)
}

func TestSchedule_TaskRunningIntoMealIsPushedAfterIt(t *testing.T) {
	s := New(WithDayStart(At(7, 30)))
	tasks := []model.Task{task("T", model.High, 1)}

	got := summarize(s.Plan(tasks, []string{"Breakfast"}).Blocks)
	assert.Equal(t, []placed{
		{"Breakfast", "08:00-09:00"},
		{"T", "09:00-10:00"},
	}, got)
}

func TestSchedule_LunchCollisionMidDay(t *testing.T) {
	tasks := []model.Task{
		task("morning", model.High, 4),
		task("afternoon", model.Medium, 2),
		task("evening", model.Low, 1),
	}

	blocks := Schedule(tasks, []string{"Lunch", "Dinner"})
	assertWellFormed(t, blocks)
	assert.Equal(t, []placed{
		{"morning", "08:00-12:00"},
		{"Lunch", "13:00-14:00"},
		{"afternoon", "14:00-16:00"},
		{"evening", "16:00-17:00"},
		{"Dinner", "19:00-20:00"},
	}, summarize(blocks))
}

func TestSchedule_MealsStayInStartOrder(t *testing.T) {
	// Dinner sorts before Lunch by name; Lunch must still come first.
	tasks := []model.Task{task("T", model.High, 1)}

	blocks := Schedule(tasks, []string{"Dinner", "Lunch"})
	assertWellFormed(t, blocks)
	assert.Equal(t, []placed{
		{"T", "08:00-09:00"},
		{"Lunch", "13:00-14:00"},
		{"Dinner", "19:00-20:00"},
	}, summarize(blocks))
}

func TestSchedule_UnknownMealIgnored(t *testing.T) {
	tasks := []model.Task{task("T", model.High, 1)}

	got := summarize(Schedule(tasks, []string{"Brunch", "lunch", "Supper"}))
	assert.Equal(t, []placed{{"T", "08:00-09:00"}}, got)
}

func TestSchedule_DuplicateMealNamesCollapse(t *testing.T) {
	tasks := []model.Task{task("T", model.High, 1)}

	blocks := Schedule(tasks, []string{"Lunch", "Lunch"})
	require.Len(t, blocks, 2)
	assert.Equal(t, "Lunch", blocks[1].Name)
}

func TestSchedule_CallerTaskNamedLikeMealIsNotDeduplicated(t *testing.T) {
	tasks := []model.Task{task("Lunch", model.High, 1)}

	blocks := Schedule(tasks, []string{"Lunch"})
	require.Len(t, blocks, 2)
	assert.Equal(t, model.High, blocks[0].Priority)
	assert.True(t, blocks[1].IsMeal())
}

func TestPlan_BoundaryStopsProcessing(t *testing.T) {
	var tasks []model.Task
	for i := 1; i <= 14; i++ {
		tasks = append(tasks, task(fmt.Sprintf("t%02d", i), model.High, 1))
	}
	tasks = append(tasks,
		task("big", model.Medium, 2),
		task("small", model.Low, 0.5),
	)

	res := Plan(tasks, nil)
	require.Len(t, res.Blocks, 14)
	assert.Equal(t, "22:00", res.Blocks[13].End.String())
	require.Len(t, res.Unscheduled, 2)
	assert.Equal(t, "big", res.Unscheduled[0].Name)
	assert.Equal(t, "small", res.Unscheduled[1].Name)
}

func TestPlan_TaskEndingExactlyAtBoundaryFits(t *testing.T) {
	res := New(WithDayStart(At(22, 0))).Plan([]model.Task{task("last", model.High, 1)}, nil)

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "22:00-23:00", res.Blocks[0].ScheduledTime())
	assert.Empty(t, res.Unscheduled)
}

func TestPlan_MealsSurviveBoundaryStop(t *testing.T) {
	tasks := []model.Task{
		task("long", model.High, 4),
		task("huge", model.Medium, 20),
	}

	res := Plan(tasks, []string{"Lunch", "Dinner"})
	assertWellFormed(t, res.Blocks)
	assert.Equal(t, []placed{
		{"long", "08:00-12:00"},
		{"Lunch", "13:00-14:00"},
		{"Dinner", "19:00-20:00"},
	}, summarize(res.Blocks))
	require.Len(t, res.Unscheduled, 1)
	assert.Equal(t, "huge", res.Unscheduled[0].Name)
}

func TestPlan_UnknownPriorityAfterMealItem(t *testing.T) {
	// Unknown priorities share the meal rank, so name decides: "Apple" is
	// placed before the Lunch item is reached, "Zebra" only after it.
	tasks := []model.Task{
		task("Zebra", model.Priority("Urgent"), 1),
		task("T", model.High, 1),
		task("Apple", model.Priority("Urgent"), 1),
	}

	blocks := Schedule(tasks, []string{"Lunch"})
	assertWellFormed(t, blocks)
	assert.Equal(t, []placed{
		{"T", "08:00-09:00"},
		{"Apple", "09:00-10:00"},
		{"Lunch", "13:00-14:00"},
		{"Zebra", "14:00-15:00"},
	}, summarize(blocks))
}

func TestPlan_WithDayEnd(t *testing.T) {
	cases := []struct {
		name        string
		end         Clock
		meals       []string
		want        []placed
		unscheduled []string
	}{
		{
			name:        "early end",
			end:         At(10, 0),
			want:        []placed{{"a", "08:00-09:00"}, {"b", "09:00-10:00"}},
			unscheduled: []string{"c"},
		},
		{
			name:        "meal kept past early end",
			end:         At(10, 30),
			meals:       []string{"Lunch"},
			want:        []placed{{"a", "08:00-09:00"}, {"b", "09:00-10:00"}, {"Lunch", "13:00-14:00"}},
			unscheduled: []string{"c"},
		},
		{
			name:  "later end fits everything",
			end:   At(23, 59),
			meals: []string{"Lunch"},
			want:  []placed{{"a", "08:00-09:00"}, {"b", "09:00-10:00"}, {"c", "10:00-11:00"}, {"Lunch", "13:00-14:00"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tasks := []model.Task{
				task("a", model.High, 1),
				task("b", model.Medium, 1),
				task("c", model.Low, 1),
			}
			res := New(WithDayEnd(tc.end)).Plan(tasks, tc.meals)
			assert.Equal(t, tc.want, summarize(res.Blocks))

			var names []string
			for _, u := range res.Unscheduled {
				names = append(names, u.Name)
			}
			assert.Equal(t, tc.unscheduled, names)
		})
	}
}

func TestPlan_DoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{
		task("B", model.Low, 1),
		task("A", model.High, 1),
	}
	before := append([]model.Task(nil), tasks...)

	first := Plan(tasks, []string{"Breakfast"})
	second := Plan(tasks, []string{"Breakfast"})

	assert.Equal(t, before, tasks)
	assert.Equal(t, first, second)
}

func TestPlan_NonOverlappingAcrossMixedInput(t *testing.T) {
	tasks := []model.Task{
		task("a", model.Low, 2.5),
		task("b", model.High, 3),
		task("c", model.Medium, 1.25),
		task("d", "", 0.75),
		task("e", model.High, 4),
		task("f", model.Medium, 5),
	}

	res := Plan(tasks, []string{"Breakfast", "Lunch", "Dinner"})
	assertWellFormed(t, res.Blocks)
	for _, b := range res.Blocks {
		if !b.IsMeal() {
			assert.LessOrEqual(t, b.End, DayEnd, "%s ends after day end", b.Name)
		}
	}
	assert.Equal(t, len(tasks), len(res.Blocks)-3+len(res.Unscheduled))
}
