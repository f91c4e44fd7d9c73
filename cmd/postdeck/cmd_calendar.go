// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/taibuivan/postdeck/internal/calendar"
	"github.com/taibuivan/postdeck/pkg/slice"
)

// labelWidth bounds a preview title inside a grid cell.
const labelWidth = 14

type calendarOptions struct {
	month  string
	offset int
	items  string
	list   bool
}

func newCalendarCmd(deps *app) *cobra.Command {
	opts := &calendarOptions{}

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show scheduled posts as a month grid or an agenda",
		Long: `Show scheduled posts for one month.

Items come from --items (a JSON array) or the built-in sample posts.
Days are decided in POSTDECK_TIMEZONE and labels follow POSTDECK_LOCALE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.run(cmd, func(context.Context) error {
				return runCalendar(cmd.OutOrStdout(), deps, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.month, "month", "", "Month to show, YYYY-MM (default: current month)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Shift the month by N (negative goes back)")
	cmd.Flags().StringVar(&opts.items, "items", "", "JSON file of scheduled items")
	cmd.Flags().BoolVar(&opts.list, "list", false, "Agenda view instead of the month grid")
	return cmd
}

func runCalendar(out io.Writer, deps *app, opts *calendarOptions) error {
	loc := deps.location
	locale := calendar.LocaleFor(deps.cfg.Locale)
	today := calendar.DateOf(time.Now(), loc)

	// ── 1. Month ──────────────────────────────────────────────────────────
	month := today.FirstOfMonth()
	if opts.month != "" {
		parsed, err := calendar.ParseMonth(opts.month)
		if err != nil {
			return err
		}
		month = parsed
	}
	month = calendar.ShiftMonth(month, opts.offset)

	// ── 2. Items ──────────────────────────────────────────────────────────
	items := calendar.SampleItems(loc)
	if opts.items != "" {
		loaded, err := calendar.LoadItems(opts.items)
		if err != nil {
			return describe(err)
		}
		items = loaded
	}

	// ── 3. Render ─────────────────────────────────────────────────────────
	if opts.list {
		return renderAgenda(out, month, items, loc, locale)
	}

	view, err := calendar.BuildMonth(month, items, calendar.MonthOptions{
		Location: loc,
		Locale:   &locale,
		Today:    today,
	})
	if err != nil {
		return describe(err)
	}
	return renderMonth(out, view, loc)
}

// renderMonth prints the grid: a row of day numbers per week followed by up
// to [calendar.PreviewLimit] item rows and a "+N" row when a day overflows.
func renderMonth(out io.Writer, view *calendar.MonthView, loc *time.Location) error {
	fmt.Fprintf(out, "%s (%d)\n\n", view.Title, view.Total)

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, strings.Join(view.Header, "\t"))

	for _, week := range view.Weeks {
		// ── Day numbers ──
		row := make([]string, len(week))
		for i, cell := range week {
			if cell == nil {
				continue
			}
			row[i] = strconv.Itoa(cell.Date.Day)
			if cell.IsToday {
				row[i] = "[" + row[i] + "]"
			}
		}
		fmt.Fprintln(writer, strings.Join(row, "\t"))

		// ── Previews ──
		for line := 0; line < calendar.PreviewLimit; line++ {
			row := make([]string, len(week))
			filled := false
			for i, cell := range week {
				if cell == nil {
					continue
				}
				if preview := cell.Preview(calendar.PreviewLimit); line < len(preview) {
					row[i] = itemLabel(preview[line], loc)
					filled = true
				}
			}
			if filled {
				fmt.Fprintln(writer, strings.Join(row, "\t"))
			}
		}

		// ── Overflow ──
		row = make([]string, len(week))
		overflow := false
		for i, cell := range week {
			if cell == nil {
				continue
			}
			if hidden := cell.Overflow(calendar.PreviewLimit); hidden > 0 {
				row[i] = "+" + strconv.Itoa(hidden)
				overflow = true
			}
		}
		if overflow {
			fmt.Fprintln(writer, strings.Join(row, "\t"))
		}
	}

	return writer.Flush()
}

// renderAgenda prints the days of month that carry items, in order.
func renderAgenda(out io.Writer, month calendar.Date, items []calendar.ScheduledItem, loc *time.Location, locale calendar.Locale) error {
	agenda, err := calendar.Agenda(items, loc)
	if err != nil {
		return describe(err)
	}

	agenda = slice.Filter(agenda, func(day calendar.AgendaDay) bool {
		return day.Date.Year == month.Year && day.Date.Month == month.Month
	})

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if len(agenda) == 0 {
		fmt.Fprintln(writer, locale.NoItems)
	}

	for _, day := range agenda {
		fmt.Fprintf(writer, "%s %d %s %d\n",
			locale.Weekdays[day.Date.Weekday()], day.Date.Day, locale.MonthName(day.Date.Month), day.Date.Year)
		for _, item := range day.Items {
			fmt.Fprintf(writer, "  %s\t%s\t%s\t%s\n",
				item.ScheduledFor.In(loc).Format("15:04"), item.Platform, item.Status, item.Title)
		}
	}

	return writer.Flush()
}

// itemLabel is "HH:MM title", truncated to fit a grid column.
func itemLabel(item calendar.ScheduledItem, loc *time.Location) string {
	label := item.ScheduledFor.In(loc).Format("15:04") + " " + item.Title
	if utf8.RuneCountInString(label) <= labelWidth {
		return label
	}
	runes := []rune(label)
	return string(runes[:labelWidth-1]) + "…"
}
