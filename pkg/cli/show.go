package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/google"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/planstore"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newShowCommand(a *app) *cobra.Command {
	var date, format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a saved plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.day(date)
			if err != nil {
				return err
			}
			plan, blocks, err := a.loadPlan(day)
			if err != nil {
				return err
			}
			if err := writeBlocks(cmd.OutOrStdout(), format, day, blocks); err != nil {
				return err
			}
			if len(plan.Unscheduled) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d tasks could not be scheduled: %s\n",
					len(plan.Unscheduled), strings.Join(plan.Unscheduled, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day to show (YYYY-MM-DD or today)")
	cmd.Flags().StringVarP(&format, "format", "o", "table", "Output format: table or json")
	return cmd
}

func newSyncCommand(a *app) *cobra.Command {
	var date, calendarName string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish a saved plan to Google Calendar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.day(date)
			if err != nil {
				return err
			}
			_, blocks, err := a.loadPlan(day)
			if err != nil {
				return err
			}
			return a.publish(cmd.Context(), calendarName, day, blocks, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day to publish (YYYY-MM-DD or today)")
	cmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name (overrides config)")
	return cmd
}

func (a *app) loadPlan(day time.Time) (planstore.Plan, []scheduler.Block, error) {
	table, err := planstore.NewTable(a.dataDir)
	if err != nil {
		return planstore.Plan{}, nil, err
	}
	plan, ok := table.Get(day)
	if !ok {
		return planstore.Plan{}, nil, fmt.Errorf("no saved plan for %s, run `dayplan plan` first", day.Format(model.DateLayout))
	}
	blocks, err := plan.Blocks()
	if err != nil {
		return planstore.Plan{}, nil, err
	}
	return plan, blocks, nil
}

func (a *app) publish(ctx context.Context, calendarName string, day time.Time, blocks []scheduler.Block, stderr io.Writer) error {
	if calendarName == "" {
		calendarName = a.cfg.Calendar
	}

	idx, err := index.NewEventIndex(a.dataDir)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open event index, falling back to calendar search")
		idx = nil
	}

	client, err := google.NewClient(ctx, calendarName, idx)
	if err != nil {
		return fmt.Errorf("error creating Google Calendar client: %w", err)
	}

	report, syncErr := client.SyncPlan(ctx, day, blocks)
	if idx != nil {
		if err := idx.Save(); err != nil {
			log.Warn().Err(err).Msg("failed to save event index")
		}
	}
	if syncErr != nil {
		return syncErr
	}
	fmt.Fprintf(stderr, "Calendar %q: %d created, %d updated, %d unchanged, %d removed\n",
		calendarName, report.Created, report.Updated, report.Unchanged, report.Deleted)
	return nil
}
