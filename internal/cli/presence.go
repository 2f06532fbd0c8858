package cli

import (
	"fmt"
	"time"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/services"

	"github.com/spf13/cobra"
)

func NewPresenceCmd() *cobra.Command {
	var lastActive, sessionStart, at string
	var visible bool
	policy := services.DefaultPresencePolicy()

	cmd := &cobra.Command{
		Use:   "presence",
		Short: "Decide whether a vendor broadcast renders as live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
				now = t
			}

			rec := domain.VendorPresence{
				ExplicitlyVisible: visible,
				LastActiveAt:      optionalTime(cmd, "last-active", lastActive),
				SessionStartedAt:  optionalTime(cmd, "session-start", sessionStart),
			}

			if services.IsLive(rec, now, policy) {
				fmt.Fprintln(cmd.OutOrStdout(), "live")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "offline")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&visible, "visible", true, "explicit visibility flag")
	cmd.Flags().StringVar(&lastActive, "last-active", "", "RFC 3339 last activity timestamp")
	cmd.Flags().StringVar(&sessionStart, "session-start", "", "RFC 3339 session start timestamp")
	cmd.Flags().StringVar(&at, "at", "", "RFC 3339 instant to evaluate at (default now)")
	cmd.Flags().DurationVar(&policy.Grace, "grace", policy.Grace, "activity grace period")
	cmd.Flags().DurationVar(&policy.SessionTTL, "session-ttl", policy.SessionTTL, "maximum session age")
	return cmd
}

// optionalTime treats a malformed timestamp as missing, as the service does.
func optionalTime(cmd *cobra.Command, flag, v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: --%s %q is not RFC 3339, treating as missing\n", flag, v)
		return nil
	}
	return &t
}

func NewEventStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event-status STATUS...",
		Short: "Classify raw event statuses into display categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, services.ClassifyEventStatus(raw))
			}
			return nil
		},
	}
}
