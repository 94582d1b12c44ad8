package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/api"
	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/overtime"
)

// =============================================================================
// REPORTS
// =============================================================================

func (a *app) summaryCmd() *cobra.Command {
	var (
		calendar    string
		year, month int
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the overtime report of one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.month(year, month)
			if err != nil {
				return err
			}
			s, err := a.service.Summary(cmd.Context(), generic.CalendarID(calendar), m)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, api.MonthSummaryDTO{CalendarID: calendar, Month: m.String(), MonthSummary: s})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Month\t%s\n", m)
			fmt.Fprintf(w, "FTL\t%s\n", overtime.FormatMinutes(s.TotalFTL))
			fmt.Fprintf(w, "OL\t%s\n", overtime.FormatMinutes(s.TotalOL))
			fmt.Fprintf(w, "Weekend/holiday\t%s\n", overtime.FormatMinutes(s.TotalWeekend))
			fmt.Fprintf(w, "Work days\t%d\n", s.WorkDays)
			fmt.Fprintf(w, "OS month\t%s\n", overtime.FormatMinutes(s.OSMonth))
			fmt.Fprintf(w, "OS total\t%s\n", overtime.FormatMinutes(s.OSTotal))
			fmt.Fprintf(w, "CS month\t%s\n", overtime.FormatMinutes(s.CSMonth))
			fmt.Fprintf(w, "CS balance\t%s\n", overtime.FormatMinutes(s.CSBalance))
			fmt.Fprintf(w, "OS written off (90d)\t%s\n", overtime.FormatMinutes(s.OSDebt90d))
			return w.Flush()
		},
	}
	calendarFlags(cmd, &calendar, &year, &month)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func (a *app) breakdownCmd() *cobra.Command {
	var (
		calendar    string
		year, month int
	)
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Print every replayed month up to the given one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.month(year, month)
			if err != nil {
				return err
			}
			records, err := a.service.Breakdown(cmd.Context(), generic.CalendarID(calendar), m)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "Month\tOL\tFTL\tOS\tCS in\tCS applied\tWritten off\tOS total\t")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
					r.Month,
					formatMinutes(r.MonthOL),
					formatMinutes(r.MonthFTL),
					formatMinutes(r.MonthOS),
					formatMinutes(r.CSEntered),
					formatMinutes(r.CSApplied),
					formatMinutes(r.OSDebt90d),
					formatMinutes(r.OSTotalAfterDebt))
			}
			return w.Flush()
		},
	}
	calendarFlags(cmd, &calendar, &year, &month)
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV exports to stdout",
	}

	var (
		calendar    string
		year, month int
		shift       string
	)
	entries := &cobra.Command{
		Use:   "entries",
		Short: "One row per day, night, neither or cs shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := api.EntryFilter{Year: year, Month: month}
			if shift != "" {
				t, err := overtime.ParseShiftType(shift)
				if err != nil {
					return err
				}
				filter.Shift = t
			}
			list, err := a.store.Entries(cmd.Context(), generic.CalendarID(calendar))
			if err != nil {
				return err
			}
			from, to := api.YearSpan(list, a.today())
			cal, err := a.service.HolidayCalendar(cmd.Context(), from, to+1)
			if err != nil {
				return err
			}
			var summary *overtime.MonthSummary
			if m, ok := filter.SingleMonth(); ok {
				s, err := a.service.Summary(cmd.Context(), generic.CalendarID(calendar), m)
				if err != nil {
					return err
				}
				summary = &s
			}
			return api.WriteEntriesCSV(cmd.OutOrStdout(), cal, list, filter, summary)
		},
	}
	entries.Flags().StringVarP(&calendar, "calendar", "c", "", "Calendar ID")
	entries.Flags().IntVar(&year, "year", 0, "Only this year")
	entries.Flags().IntVar(&month, "month", 0, "Only this month (1-12)")
	entries.Flags().StringVar(&shift, "shift", "", "Only this shift type (day, night, neither, cs)")
	_ = entries.MarkFlagRequired("calendar")

	var (
		yearCalendar string
		summaryYear  int
	)
	yearly := &cobra.Command{
		Use:   "year",
		Short: "One row per month of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if summaryYear == 0 {
				summaryYear = a.today().Year()
			}
			summaries, err := a.service.YearSummaries(cmd.Context(), generic.CalendarID(yearCalendar), summaryYear)
			if err != nil {
				return err
			}
			return api.WriteYearCSV(cmd.OutOrStdout(), summaryYear, summaries)
		},
	}
	yearly.Flags().StringVarP(&yearCalendar, "calendar", "c", "", "Calendar ID")
	yearly.Flags().IntVar(&summaryYear, "year", 0, "Year (default: current)")
	_ = yearly.MarkFlagRequired("calendar")

	cmd.AddCommand(entries, yearly)
	return cmd
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (a *app) holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Show or replace the manual holiday list of a year",
	}

	get := &cobra.Command{
		Use:   "get <year>",
		Short: "Print the official and manual lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			manual, err := a.service.ManualHolidays(cmd.Context(), year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Official %d:\n", year)
			for _, d := range a.service.Official.Official(year) {
				fmt.Fprintf(out, "  %s %s\n", d, d.Weekday())
			}
			fmt.Fprintf(out, "Manual %d:\n", year)
			for _, d := range manual {
				fmt.Fprintf(out, "  %s %s\n", d, d.Weekday())
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <year> [date...]",
		Short: "Replace the manual list; no dates clears it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			dates := make([]generic.Date, 0, len(args)-1)
			for _, s := range args[1:] {
				d, err := generic.ParseDate(s)
				if err != nil {
					return err
				}
				dates = append(dates, d)
			}
			if err := a.service.SetManualHolidays(cmd.Context(), year, dates); err != nil {
				return err
			}
			a.logger.Info("manual holidays replaced", "year", year, "count", len(dates))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d holidays for %d\n", len(dates), year)
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

// =============================================================================
// IMPORT
// =============================================================================

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON backup; profiles with the same ID are replaced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f := factory.NewBackupFactory(a.loc)
			b, err := f.ParseBackup(data)
			if err != nil {
				return err
			}
			res, err := f.Import(cmd.Context(), a.store, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d profiles, %d calendars, %d entries, %d holiday years\n",
				res.Profiles, res.Calendars, res.Entries, res.HolidayYears)
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func calendarFlags(cmd *cobra.Command, calendar *string, year, month *int) {
	cmd.Flags().StringVarP(calendar, "calendar", "c", "", "Calendar ID")
	cmd.Flags().IntVar(year, "year", 0, "Year (default: current)")
	cmd.Flags().IntVar(month, "month", 0, "Month 1-12 (default: current)")
	_ = cmd.MarkFlagRequired("calendar")
}

// month fills zero flags from today.
func (a *app) month(year, month int) (generic.Month, error) {
	today := a.today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	return generic.ParseMonth(year, month)
}

func (a *app) today() generic.Date {
	if a.loc == nil {
		return generic.Today(time.UTC)
	}
	return generic.Today(a.loc)
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year %q", generic.ErrInvalidDate, s)
	}
	return year, nil
}

func formatMinutes(m generic.Minutes) string {
	return overtime.FormatMinutes(generic.RoundMinutes(m))
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
