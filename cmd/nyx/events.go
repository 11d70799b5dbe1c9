package main

import (
	"fmt"
	"time"

	"github.com/Cyclone1070/nyx/internal/calendar"
	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// openCalendar opens the calendar under the configured sandbox root without
// loading the model.
func openCalendar(e *env) (*calendar.Store, error) {
	root, err := sandbox.CanonicaliseRoot(e.cfg.Sandbox.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sandbox: %w", err)
	}
	cal, err := calendar.Open(calendar.DefaultPath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	return cal, nil
}

func newEventsCmd(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming calendar events",
		Example: `  nyx events
  nyx events --days 30
  nyx events cancel 6f1c2d0e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := openCalendar(e)
			if err != nil {
				return err
			}
			defer cal.Close()

			events, err := cal.Upcoming(cmd.Context(), time.Now(), days)
			if err != nil {
				return err
			}
			newPrinter(e.out).events(events, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "how many days ahead to show")
	cmd.AddCommand(newCancelEventCmd(e))
	return cmd
}

func newCancelEventCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Delete a calendar event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := openCalendar(e)
			if err != nil {
				return err
			}
			defer cal.Close()

			if err := cal.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.logger.Debug("event cancelled", zap.String("id", args[0]))
			newPrinter(e.out).note("cancelled " + args[0])
			return nil
		},
	}
}
