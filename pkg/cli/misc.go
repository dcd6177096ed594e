package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/planstore"
	"github.com/harrisonrobin/dayplan/pkg/tips"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const noTip = "No matching motivational tip found."

func newTipCommand(a *app) *cobra.Command {
	var date, tipsFile string
	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Print the motivation of the day for a saved plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := a.day(date)
			if err != nil {
				return err
			}
			store, err := planstore.NewTable(a.dataDir)
			if err != nil {
				return err
			}
			count := 0
			if plan, ok := store.Get(day); ok {
				count = plan.TaskCount()
			}
			msg, err := tipFor(tipsFile, count)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "💡 %s\n", msg)
			return err
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "today", "Day whose tasks are counted")
	cmd.Flags().StringVar(&tipsFile, "tips", "tips.yaml", "JSON or YAML list of {task_count, motivation}")
	return cmd
}

func tipFor(path string, count int) (string, error) {
	table, err := tips.LoadFile(path)
	if err != nil {
		return "", err
	}
	msg, err := tips.Match(table, count)
	if errors.Is(err, tips.ErrNoMatch) {
		return noTip, nil
	}
	return msg, err
}

// printTip is best effort: a broken tips file never fails a plan.
func printTip(w io.Writer, path string, count int) {
	msg, err := tipFor(path, count)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not load tips")
		return
	}
	fmt.Fprintf(w, "💡 %s\n", msg)
}

func newAuthCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.ResetToken(); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, _ := auth.TokenPath()
			log.Info().Str("path", path).Msg("authentication successful")
			return nil
		},
	}
}

func newSetCalendarCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar NAME",
		Short: "Set the default Google Calendar name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetCalendar(args[0]); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return err
		},
	}
}
