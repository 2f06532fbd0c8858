package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
	"truck-presence-service/internal/adapters/calendar"
	"truck-presence-service/internal/domain"
	"truck-presence-service/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scheduleFlags struct {
	file string
	tz   string
	at   string
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML file mapping weekday to open/close/closed")
	cmd.Flags().StringVar(&f.tz, "tz", "UTC", "IANA timezone the schedule is expressed in")
	cmd.Flags().StringVar(&f.at, "at", "", "RFC 3339 instant to evaluate at (default now)")
	_ = cmd.MarkFlagRequired("file")
}

// load reads the schedule file and resolves the evaluation instant in the
// schedule's timezone.
func (f *scheduleFlags) load(cmd *cobra.Command) (domain.WeeklySchedule, time.Time, error) {
	data, err := os.ReadFile(f.file)
	if err != nil {
		return domain.WeeklySchedule{}, time.Time{}, fmt.Errorf("read schedule %q: %w", f.file, err)
	}

	var raw domain.RawWeeklySchedule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.WeeklySchedule{}, time.Time{}, fmt.Errorf("parse schedule %q: %w", f.file, err)
	}

	loc, err := time.LoadLocation(f.tz)
	if err != nil {
		return domain.WeeklySchedule{}, time.Time{}, fmt.Errorf("load timezone %q: %w", f.tz, err)
	}

	at := time.Now()
	if f.at != "" {
		if at, err = time.Parse(time.RFC3339, f.at); err != nil {
			return domain.WeeklySchedule{}, time.Time{}, fmt.Errorf("parse --at: %w", err)
		}
	}

	s, defaulted := domain.ParseWeeklySchedule(raw)
	for _, d := range defaulted {
		if day, ok := strings.CutSuffix(d, ".duplicate"); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s appears more than once, extra entries ignored\n", day)
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is malformed, using %s\n", d, domain.DefaultOpenTime)
	}

	return s, at.In(loc), nil
}

func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Weekly opening hours",
	}
	cmd.AddCommand(newScheduleOpenCmd())
	cmd.AddCommand(newScheduleICSCmd())
	return cmd
}

func newScheduleOpenCmd() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Report whether the schedule is open at an instant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, at, err := f.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if services.IsOpenNow(s, at).Open {
				fmt.Fprintf(out, "open at %s\n", at.Format(time.RFC3339))
				return nil
			}
			if next, ok := services.NextOpening(s, at); ok {
				fmt.Fprintf(out, "closed at %s, opens %s\n", at.Format(time.RFC3339), next.Format(time.RFC3339))
				return nil
			}
			fmt.Fprintf(out, "closed at %s, never opens\n", at.Format(time.RFC3339))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newScheduleICSCmd() *cobra.Command {
	var f scheduleFlags
	var vendorID, name string
	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export the schedule as an iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, at, err := f.load(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), calendar.ExportSchedule(vendorID, name, s, at))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&vendorID, "vendor", "vendor", "vendor id used in event UIDs")
	cmd.Flags().StringVar(&name, "name", "", "vendor display name")
	return cmd
}
