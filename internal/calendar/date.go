// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package calendar turns a flat list of scheduled posts into a month grid.

Everything here is pure: no clocks, no I/O, no shared state. Instants become
civil dates only through an explicit [*time.Location], so the same items
always land on the same days for a given zone.

Building blocks:

  - [Date]: a civil year/month/day with no clock or zone.
  - [Bucket]: the per-day partition of items across a range of dates.
  - [ShiftMonth]: month navigation with the day clamped to the target month.
  - [BuildMonth]: the padded, locale-aware grid the CLI renders.
*/
package calendar

import (
	"fmt"
	"time"
)

// Date is a civil calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalising out-of-range values the way [time.Date] does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.UTC)
}

// DateOf returns the civil date of t as observed in loc. A nil loc means UTC.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := t.In(loc).Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseMonth reads "YYYY-MM" and returns the first day of that month.
func ParseMonth(value string) (Date, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: invalid month %q, want YYYY-MM: %w", value, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: 1}, nil
}

// Time returns midnight of d in loc. A nil loc means UTC.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday is the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// FirstOfMonth is the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// # Month Arithmetic

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DaysInMonth lists every day of ref's month in ascending order.
func DaysInMonth(ref Date) []Date {
	count := DaysIn(ref.Year, ref.Month)
	days := make([]Date, count)
	for i := range count {
		days[i] = Date{Year: ref.Year, Month: ref.Month, Day: i + 1}
	}
	return days
}

// WeekdayOfFirst is the weekday of the first of ref's month, Sunday = 0.
func WeekdayOfFirst(ref Date) int {
	return int(ref.FirstOfMonth().Weekday())
}

// ShiftMonth moves ref by delta months, carrying into the year.
//
// The day is clamped to the length of the target month (Jan 31 + 1 is the
// last day of February), so ShiftMonth(ShiftMonth(d, n), -n) lands in d's
// month for every d and n.
func ShiftMonth(ref Date, delta int) Date {
	index := ref.Year*12 + int(ref.Month-1) + delta
	year := floorDiv(index, 12)
	month := time.Month(index-year*12) + 1

	day := ref.Day
	if limit := DaysIn(year, month); day > limit {
		day = limit
	}
	return Date{Year: year, Month: month, Day: day}
}

// NextMonth is ShiftMonth(ref, 1).
func NextMonth(ref Date) Date { return ShiftMonth(ref, 1) }

// PreviousMonth is ShiftMonth(ref, -1).
func PreviousMonth(ref Date) Date { return ShiftMonth(ref, -1) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
