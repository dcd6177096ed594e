package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/orgmode"
	"github.com/harrisonrobin/dayplan/pkg/taskfile"
	"github.com/harrisonrobin/dayplan/pkg/taskwarrior"
)

func parseDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	return model.ParseDate(s, loc, now)
}

// sourceOptions selects where tasks come from. Several sources may be combined.
type sourceOptions struct {
	files       []string
	orgFiles    []string
	taskwarrior bool
	twFilter    []string
	// twExport is saved `task export` output, "-" for stdin.
	twExport string
	tag      string
}

func (o sourceOptions) empty() bool {
	return len(o.files) == 0 && len(o.orgFiles) == 0 && !o.taskwarrior && o.twExport == ""
}

// loadTasks gathers tasks from every selected source; with none selected it
// reads task records from stdin. A tag, when set, narrows the result.
func loadTasks(ctx context.Context, o sourceOptions, stdin io.Reader, day time.Time) ([]model.Task, error) {
	tasks, err := readSources(ctx, o, stdin, day)
	if err != nil {
		return nil, err
	}
	return model.FilterByTag(tasks, o.tag), nil
}

func readSources(ctx context.Context, o sourceOptions, stdin io.Reader, day time.Time) ([]model.Task, error) {
	var tasks []model.Task

	if o.empty() {
		records, err := taskfile.ParseRecords(stdin)
		if err != nil {
			return nil, err
		}
		return taskfile.Tasks(records, day)
	}

	for _, path := range o.files {
		var (
			records []taskfile.Record
			err     error
		)
		if path == "-" {
			records, err = taskfile.ParseRecords(stdin)
		} else {
			records, err = taskfile.ParseFile(path)
		}
		if err != nil {
			return nil, err
		}
		fileTasks, err := taskfile.Tasks(records, day)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		tasks = append(tasks, fileTasks...)
	}

	if len(o.orgFiles) > 0 {
		orgTasks, err := orgmode.ParseFiles(o.orgFiles, day)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, orgTasks...)
	}

	if o.taskwarrior {
		exported, err := taskwarrior.NewClient().Export(ctx, o.twFilter)
		if err != nil {
			return nil, err
		}
		twTasks, err := taskwarrior.ToModel(exported, day)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, twTasks...)
	}

	if o.twExport != "" {
		twTasks, err := readExport(o.twExport, stdin, day)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, twTasks...)
	}
	return tasks, nil
}

func readExport(path string, stdin io.Reader, day time.Time) ([]model.Task, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	exported, err := taskwarrior.NewClient().ParseTasks(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return taskwarrior.ToModel(exported, day)
}
