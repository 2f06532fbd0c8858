package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the enginectl command tree.
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "enginectl",
		Short:         "Evaluate vendor presence, schedules and event statuses offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewScheduleCmd())
	cmd.AddCommand(NewPresenceCmd())
	cmd.AddCommand(NewEventStatusCmd())
	return cmd
}
