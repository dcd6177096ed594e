package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/planstore"
	"github.com/harrisonrobin/dayplan/pkg/render"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"github.com/harrisonrobin/dayplan/pkg/tips"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type planOptions struct {
	sources  sourceOptions
	date     string
	meals    string
	format   string
	noSave   bool
	sync     bool
	calendar string
	tipsFile string
}

func newPlanCommand(a *app) *cobra.Command {
	o := &planOptions{}
	cmd := &cobra.Command{
		Use:   "plan [taskwarrior filter...]",
		Short: "Schedule the tasks of one day",
		Long: `Reads tasks, keeps those dated on the chosen day and lays them out from 08:00,
highest priority first, around the included meals. Tasks that would end after
23:00 are left out and reported.

Without --file, --org, --taskwarrior or --tw-export, task records are read as JSON from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.sources.twFilter = args
			if !cmd.Flags().Changed("meals") {
				o.meals = strings.Join(a.cfg.Meals, ",")
			}
			return a.runPlan(cmd.Context(), o, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&o.sources.files, "file", "f", nil, "JSON or YAML task file (- for stdin), repeatable")
	f.StringSliceVar(&o.sources.orgFiles, "org", nil, "Org-mode file with TODO headlines, repeatable")
	f.BoolVar(&o.sources.taskwarrior, "taskwarrior", false, "Read pending tasks from `task export`; extra args are the filter")
	f.StringVar(&o.sources.twExport, "tw-export", "", "Read saved `task export` output from a file (- for stdin)")
	f.StringVarP(&o.sources.tag, "tag", "t", "", "Only plan tasks carrying this tag")
	f.StringVarP(&o.date, "date", "d", "today", "Day to plan (YYYY-MM-DD or today)")
	f.StringVarP(&o.meals, "meals", "m", "", "Meals to include, e.g. Breakfast,Lunch (default from config)")
	f.StringVarP(&o.format, "format", "o", "table", "Output format: table or json")
	f.BoolVar(&o.noSave, "no-save", false, "Do not store the plan")
	f.BoolVar(&o.sync, "sync", false, "Publish the plan to Google Calendar")
	f.StringVar(&o.calendar, "calendar", "", "Google Calendar name (overrides config)")
	f.StringVar(&o.tipsFile, "tips", "", "Print the matching tip from this JSON or YAML file")
	return cmd
}

func (a *app) runPlan(ctx context.Context, o *planOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	day, err := a.day(o.date)
	if err != nil {
		return err
	}

	all, err := loadTasks(ctx, o.sources, stdin, day)
	if err != nil {
		return err
	}
	tasks := model.FilterByDate(all, day)
	if err := model.ValidateAll(tasks); err != nil {
		return fmt.Errorf("invalid task input: %w", err)
	}
	log.Debug().Int("loaded", len(all)).Int("on_day", len(tasks)).Str("date", day.Format(model.DateLayout)).Msg("tasks loaded")

	meals := scheduler.ParseMealList(o.meals)
	for _, name := range meals {
		if !scheduler.IsMealName(name) {
			log.Warn().Str("meal", name).Msg("unknown meal ignored, expected Breakfast, Lunch or Dinner")
		}
	}
	res := scheduler.Plan(tasks, meals)
	if len(tasks) == 0 {
		fmt.Fprintf(stderr, "No tasks found for %s\n", day.Format(model.DateLayout))
	}

	if err := writeBlocks(stdout, o.format, day, res.Blocks); err != nil {
		return err
	}
	if msg := render.Summary(res.Unscheduled); msg != "" {
		fmt.Fprintln(stderr, msg)
	}

	if o.tipsFile != "" {
		printTip(stderr, o.tipsFile, tips.CountTasks(tasks))
	}

	if !o.noSave {
		if err := a.savePlan(day, res); err != nil {
			log.Warn().Err(err).Msg("could not save plan")
		}
	}

	if o.sync {
		return a.publish(ctx, o.calendar, day, res.Blocks, stderr)
	}
	return nil
}

func (a *app) savePlan(day time.Time, res scheduler.Result) error {
	table, err := planstore.NewTable(a.dataDir)
	if err != nil {
		return err
	}
	table.Put(day, res, a.now())
	cutoff := a.now().AddDate(0, 0, -a.cfg.RetentionDays)
	if swept := table.Sweep(cutoff); len(swept) > 0 {
		log.Debug().Int("plans", len(swept)).Msg("pruned old plans")
	}
	return table.Save()
}

func writeBlocks(w io.Writer, format string, day time.Time, blocks []scheduler.Block) error {
	switch format {
	case "json":
		return render.JSON(w, day, blocks)
	case "table", "":
		if len(blocks) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, render.Table(blocks))
		return err
	default:
		return fmt.Errorf("unknown format %q, expected table or json", format)
	}
}
