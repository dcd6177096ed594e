package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/planstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{Calendar: "Test", Meals: []string{"Lunch"}, RetentionDays: 30}
	now := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	return &app{
		cfg:     cfg,
		loc:     time.UTC,
		dataDir: t.TempDir(),
		now:     func() time.Time { return now },
	}
}

const stdinTasks = `
{"task_name": "Report", "priority": "High", "estimated_time": 2, "task_date": "2024-05-01"}
{"task_name": "Emails", "priority": "Low", "estimated_time": "1", "task_date": "2024-05-01"}
{"task_name": "Tomorrow", "priority": "High", "estimated_time": 1, "task_date": "2024-05-02"}
`

func TestRunPlanJSON(t *testing.T) {
	a := testApp(t)
	var stdout, stderr bytes.Buffer
	o := &planOptions{date: "today", meals: "Lunch", format: "json"}

	require.NoError(t, a.runPlan(context.Background(), o, strings.NewReader(stdinTasks), &stdout, &stderr))

	var got []struct {
		Name          string  `json:"task_name"`
		ScheduledTime string  `json:"scheduled_time"`
		EstimatedTime float64 `json:"estimated_time"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Report", got[0].Name)
	assert.Equal(t, "08:00-10:00", got[0].ScheduledTime)
	assert.Equal(t, "Emails", got[1].Name)
	assert.Equal(t, "10:00-11:00", got[1].ScheduledTime)
	assert.Equal(t, "Lunch", got[2].Name)
	assert.Equal(t, "13:00-14:00", got[2].ScheduledTime)
	assert.Empty(t, stderr.String())

	table, err := planstore.NewTable(a.dataDir)
	require.NoError(t, err)
	plan, ok := table.Get(a.now())
	require.True(t, ok)
	assert.Equal(t, 2, plan.TaskCount())
}

func TestRunPlanRejectsInvalidTask(t *testing.T) {
	a := testApp(t)
	o := &planOptions{date: "2024-05-01", format: "table"}
	in := `[{"task_name": "Broken", "priority": "High", "estimated_time": 0, "task_date": "2024-05-01"}]`

	err := a.runPlan(context.Background(), o, strings.NewReader(in), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, model.ErrInvalidEstimate)
}

func TestRunPlanReportsUnscheduled(t *testing.T) {
	a := testApp(t)
	var stdout, stderr bytes.Buffer
	o := &planOptions{date: "2024-05-01", format: "table", noSave: true}
	in := `{"task_name": "Marathon", "priority": "Low", "estimated_time": 20, "task_date": "2024-05-01"}`

	require.NoError(t, a.runPlan(context.Background(), o, strings.NewReader(in), &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "1 task could not be scheduled today: Marathon")

	_, err := os.Stat(filepath.Join(a.dataDir, "plans.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunPlanUnknownFormat(t *testing.T) {
	a := testApp(t)
	o := &planOptions{date: "2024-05-01", format: "xml", noSave: true}
	err := a.runPlan(context.Background(), o, strings.NewReader(stdinTasks), &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown format")
}

func TestTipFor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tips.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- task_count: "0"
  motivation: Rest day.
- task_count: "1-4"
  motivation: A light day.
`), 0o600))

	msg, err := tipFor(path, 2)
	require.NoError(t, err)
	assert.Equal(t, "A light day.", msg)

	msg, err = tipFor(path, 9)
	require.NoError(t, err)
	assert.Equal(t, noTip, msg)
}

func TestLoadTasksTagAndExport(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	export := `[
{"uuid": "w", "description": "Review PR", "status": "pending", "priority": "H", "est": "PT1H", "tags": ["work"]},
{"uuid": "h", "description": "Laundry", "status": "pending", "priority": "L", "est": "PT30M", "tags": ["home"]},
{"uuid": "d", "description": "Done", "status": "completed", "priority": "H", "est": "PT1H", "tags": ["work"]}
]`
	o := sourceOptions{twExport: "-", tag: "work"}

	tasks, err := loadTasks(context.Background(), o, strings.NewReader(export), day)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "w", tasks[0].ID)
	assert.Equal(t, "taskwarrior", tasks[0].Source)
}

func TestForgetPlan(t *testing.T) {
	a := testApp(t)
	o := &planOptions{date: "2024-05-01", format: "json"}
	require.NoError(t, a.runPlan(context.Background(), o, strings.NewReader(stdinTasks), &bytes.Buffer{}, &bytes.Buffer{}))

	removed, err := a.forgetPlan(a.now())
	require.NoError(t, err)
	assert.True(t, removed)

	table, err := planstore.NewTable(a.dataDir)
	require.NoError(t, err)
	_, ok := table.Get(a.now())
	assert.False(t, ok)

	removed, err = a.forgetPlan(a.now())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetCalendarCommandIgnoresEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvCalendar, "")
	t.Setenv(config.EnvTimezone, "UTC")
	t.Setenv(config.EnvMeals, "Lunch")
	t.Setenv(config.EnvLogLevel, "warn")

	root := NewRootCommand()
	root.SetArgs([]string{"set-calendar", "Work"})
	root.SetOut(&bytes.Buffer{})
	require.NoError(t, root.Execute())

	stored, err := config.LoadStored()
	require.NoError(t, err)
	assert.Equal(t, "Work", stored.Calendar)
	assert.Empty(t, stored.Timezone)
	assert.Equal(t, []string{"Breakfast", "Lunch", "Dinner"}, stored.Meals)
}
