package cli

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/planstore"
	"github.com/spf13/cobra"
)

func newForgetCommand(a *app) *cobra.Command {
	var (
		date, calendarName string
		unpublish          bool
	)
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the saved plan of a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.day(date)
			if err != nil {
				return err
			}
			removed, err := a.forgetPlan(day)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.ErrOrStderr(), "Deleted the plan for %s\n", day.Format(model.DateLayout))
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No saved plan for %s\n", day.Format(model.DateLayout))
			}
			if unpublish {
				// An empty plan leaves every block of the day stale.
				return a.publish(cmd.Context(), calendarName, day, nil, cmd.ErrOrStderr())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day to forget (YYYY-MM-DD or today)")
	cmd.Flags().BoolVar(&unpublish, "unpublish", false, "Also remove the day's events from Google Calendar")
	cmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name (overrides config)")
	return cmd
}

func (a *app) forgetPlan(day time.Time) (bool, error) {
	table, err := planstore.NewTable(a.dataDir)
	if err != nil {
		return false, err
	}
	if _, ok := table.Get(day); !ok {
		return false, nil
	}
	table.Remove(day)
	return true, table.Save()
}
