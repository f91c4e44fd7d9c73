// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar

import (
	"strconv"
	"time"
)

// PreviewLimit is how many items a month cell shows before collapsing the rest into "+N".
const PreviewLimit = 2

// MonthOptions tunes [BuildMonth].
type MonthOptions struct {
	// Location decides which day an item falls on. Nil means UTC.
	Location *time.Location
	// Locale supplies labels and the week start. The zero value means French.
	Locale *Locale
	// Today marks the matching cell. The zero Date marks nothing.
	Today Date
}

// Cell is one day in the month grid.
type Cell struct {
	Date    Date
	Items   []ScheduledItem
	IsToday bool
}

// Preview returns at most n items for compact display.
func (c Cell) Preview(n int) []ScheduledItem {
	if len(c.Items) <= n {
		return c.Items
	}
	return c.Items[:n]
}

// Overflow is the number of items hidden by Preview(n).
func (c Cell) Overflow(n int) int {
	if len(c.Items) <= n {
		return 0
	}
	return len(c.Items) - n
}

// MonthView is a rendered month: a header of weekday labels and weeks of 7
// slots. Slots outside the month are nil.
type MonthView struct {
	Month   Date
	Title   string
	Header  []string
	Weeks   [][]*Cell
	Padding int
	Total   int
}

// BuildMonth lays out ref's month as a padded grid and buckets items into it.
func BuildMonth(ref Date, items []ScheduledItem, opts MonthOptions) (*MonthView, error) {
	locale := french
	if opts.Locale != nil {
		locale = *opts.Locale
	}

	days := DaysInMonth(ref)
	buckets, err := Bucket(days, items, opts.Location)
	if err != nil {
		return nil, err
	}

	padding := (WeekdayOfFirst(ref) - int(locale.WeekStart) + 7) % 7
	slots := make([]*Cell, padding, padding+len(days)+6)

	total := 0
	for _, day := range days {
		total += len(buckets[day])
		slots = append(slots, &Cell{
			Date:    day,
			Items:   buckets[day],
			IsToday: day == opts.Today,
		})
	}
	for len(slots)%7 != 0 {
		slots = append(slots, nil)
	}

	weeks := make([][]*Cell, 0, len(slots)/7)
	for start := 0; start < len(slots); start += 7 {
		weeks = append(weeks, slots[start:start+7])
	}

	return &MonthView{
		Month:   ref.FirstOfMonth(),
		Title:   locale.MonthName(ref.Month) + " " + strconv.Itoa(ref.Year),
		Header:  locale.Header(),
		Weeks:   weeks,
		Padding: padding,
		Total:   total,
	}, nil
}

