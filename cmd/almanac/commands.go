package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/almanac/internal/app"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/config"
	"github.com/keyxmakerx/almanac/internal/plugins/calendarapi"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// loadApp builds an in-memory App for one-shot commands: built-in calendars
// plus whatever DEFINITIONS_FILE holds. Logs go to stderr so stdout stays
// clean for output.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, os.Stderr)

	a, err := app.New(cfg, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := a.LoadDefinitions(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// resolveCalendar resolves name, with "" meaning the configured default.
func resolveCalendar(a *app.App, name string) (calendar.Type, error) {
	if name == "" || name == calendarapi.DefaultAlias {
		name = a.Config.Calendar.Default
	}
	return a.Registry.Resolve(name)
}

func newCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List the available calendar systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMONTHS\tWEEKDAYS\tYEARS\t")
			for _, name := range a.Registry.List() {
				t, err := a.Registry.Resolve(name)
				if err != nil {
					continue
				}
				marker := ""
				if name == a.Config.Calendar.Default {
					marker = " (default)"
				}
				fmt.Fprintf(tw, "%s%s\t%d\t%d\t%d..%d\t\n",
					name, marker, len(t.Months()), t.NumWeekdays(), t.MinYear(), t.MaxYear())
			}
			return tw.Flush()
		},
	}
}

func newConvertCmd() *cobra.Command {
	var from, to, at, tz string
	var instant bool

	cmd := &cobra.Command{
		Use:   "convert DATE",
		Short: "Convert a date between calendar systems",
		Long: `Convert a date between calendar systems.

DATE is YEAR-MONTH-DAY in the --from calendar (a leading '-' marks a
negative year), or @SECONDS for an instant. The wall time is read and
printed in --tz.

  almanac convert --from hijri --to gregorian 1445-09-01
  almanac convert --to hijri @1709208000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			src, err := resolveCalendar(a, from)
			if err != nil {
				return err
			}
			dst, err := resolveCalendar(a, to)
			if err != nil {
				return err
			}
			spec, err := timezone.Parse(tz)
			if err != nil {
				return err
			}

			inst, err := readInstant(src, args[0], at, spec)
			if err != nil {
				return err
			}
			if instant {
				fmt.Fprintln(cmd.OutOrStdout(), int64(inst))
				return nil
			}
			dc, err := dst.FromCanonical(inst, spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dst.Name(), dc)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "calendar DATE is written in (default: CALENDAR_TYPE)")
	cmd.Flags().StringVar(&to, "to", "", "calendar to convert into (default: CALENDAR_TYPE)")
	cmd.Flags().StringVar(&at, "time", "00:00", "wall time HH:MM of DATE")
	cmd.Flags().StringVar(&tz, "tz", "", "timezone: zone name, hour offset, or 99 for USER_TIMEZONE")
	cmd.Flags().BoolVar(&instant, "instant", false, "print seconds since the Unix epoch instead of a date")
	return cmd
}

func newFormatCmd() *cobra.Command {
	var calName, pattern, tz string
	var noFixDay, noFixHour bool

	cmd := &cobra.Command{
		Use:   "format SECONDS",
		Short: "Format an instant with a strftime-style pattern",
		Long: `Format an instant (seconds since the Unix epoch) in a calendar.

  almanac format --calendar hijri --pattern '%A, %e %B %Y' 1709208000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveCalendar(a, calName)
			if err != nil {
				return err
			}
			spec, err := timezone.Parse(tz)
			if err != nil {
				return err
			}
			secs, err := strconv.ParseInt(strings.TrimPrefix(args[0], "@"), 10, 64)
			if err != nil {
				return fmt.Errorf("SECONDS must be an integer: %w", err)
			}

			s, err := calendar.Format(t, calendar.Instant(secs), pattern, spec, !noFixDay, !noFixHour)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringVarP(&calName, "calendar", "c", "", "calendar system (default: CALENDAR_TYPE)")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "%A, %e %B %Y, %H:%M", "strftime-style pattern")
	cmd.Flags().StringVar(&tz, "tz", "", "timezone: zone name, hour offset, or 99 for USER_TIMEZONE")
	cmd.Flags().BoolVar(&noFixDay, "no-fixday", false, "keep the leading zero of %d")
	cmd.Flags().BoolVar(&noFixHour, "no-fixhour", false, "keep the leading zero of %I")
	return cmd
}

func newMonthCmd() *cobra.Command {
	var calName string
	var year, month int

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print a month as a week grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveCalendar(a, calName)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("year") || !cmd.Flags().Changed("month") {
				now, err := t.FromCanonical(calendar.Instant(time.Now().Unix()), timezone.User())
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("year") {
					year = now.Year
				}
				if !cmd.Flags().Changed("month") {
					month = now.Month
				}
			}

			g, err := calendar.MonthGrid(t, year, month)
			if err != nil {
				return err
			}
			return printGrid(cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().StringVarP(&calName, "calendar", "c", "", "calendar system (default: CALENDAR_TYPE)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "year (default: current)")
	cmd.Flags().IntVarP(&month, "month", "m", 0, "month number (default: current)")
	return cmd
}

func newICSCmd() *cobra.Command {
	var calName, out string
	var year int

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write an iCalendar feed of a year's month starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveCalendar(a, calName)
			if err != nil {
				return err
			}
			feed, err := calendarapi.MonthStartsICS(t, year, time.Now())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), feed)
				return err
			}
			return os.WriteFile(out, []byte(feed), 0o644)
		},
	}
	cmd.Flags().StringVarP(&calName, "calendar", "c", "", "calendar system (default: CALENDAR_TYPE)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "year in the calendar")
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write (default: stdout)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

// readInstant turns the DATE argument into an instant.
func readInstant(t calendar.Type, arg, at string, tz timezone.Spec) (calendar.Instant, error) {
	if strings.HasPrefix(arg, "@") {
		secs, err := strconv.ParseInt(arg[1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("instant %q: %w", arg, err)
		}
		return calendar.Instant(secs), nil
	}
	y, m, d, err := parseDate(arg)
	if err != nil {
		return 0, err
	}
	hour, minute, err := parseClock(at)
	if err != nil {
		return 0, err
	}
	return calendar.ToInstant(t, y, m, d, hour, minute, tz)
}

// parseDate reads YEAR-MONTH-DAY. The year may be negative.
func parseDate(s string) (year, month, day int, err error) {
	sign := 1
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("date %q is not YEAR-MONTH-DAY", s)
	}
	var nums [3]int
	for i, p := range parts {
		if nums[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, fmt.Errorf("date %q is not YEAR-MONTH-DAY", s)
		}
	}
	return sign * nums[0], nums[1], nums[2], nil
}

// parseClock reads HH:MM.
func parseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	if hour, err = strconv.Atoi(h); err != nil {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	if minute, err = strconv.Atoi(m); err != nil {
		return 0, 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	return hour, minute, nil
}

// printGrid writes g as a plain-text calendar page.
func printGrid(w io.Writer, g calendar.Grid) error {
	width := 2
	for _, wd := range g.Weekdays {
		if len(wd.Short) > width {
			width = len(wd.Short)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", g.MonthName, g.Year)
	for i, wd := range g.Weekdays {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%*s", width, wd.Short)
	}
	b.WriteByte('\n')
	for _, week := range g.Weeks {
		for i, day := range week {
			if i > 0 {
				b.WriteByte(' ')
			}
			if day == 0 {
				b.WriteString(strings.Repeat(" ", width))
				continue
			}
			fmt.Fprintf(&b, "%*d", width, day)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
