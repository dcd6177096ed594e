// Package cli wires the dayplan commands together.
package cli

import (
	"time"

	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/logging"
	"github.com/spf13/cobra"
)

// app carries what every command needs once flags and config are resolved.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	dataDir string
	now     func() time.Time
	verbose bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:           "dayplan",
		Short:         "Arrange a day's tasks into time blocks around meals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newPlanCommand(a),
		newShowCommand(a),
		newSyncCommand(a),
		newTipCommand(a),
		newAuthCommand(a),
		newSetCalendarCommand(a),
		newForgetCommand(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logging.Setup(level, nil)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	dir, err := config.GetXdgHome()
	if err != nil {
		return err
	}
	a.cfg, a.loc, a.dataDir = cfg, loc, dir
	return nil
}

func (a *app) day(s string) (time.Time, error) {
	return parseDay(s, a.loc, a.now())
}
