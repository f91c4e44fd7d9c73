// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar

import (
	"slices"
	"time"
)

// AgendaDay groups the items of one day in the list view.
type AgendaDay struct {
	Date  Date
	Items []ScheduledItem
}

// Agenda is the list view: days with at least one item, ascending, and
// items within a day sorted by time. Ties keep input order.
func Agenda(items []ScheduledItem, loc *time.Location) ([]AgendaDay, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b ScheduledItem) int {
		return a.ScheduledFor.Compare(b.ScheduledFor)
	})

	var agenda []AgendaDay
	for _, item := range sorted {
		day := DateOf(item.ScheduledFor, loc)
		if n := len(agenda); n > 0 && agenda[n-1].Date == day {
			agenda[n-1].Items = append(agenda[n-1].Items, item)
			continue
		}
		agenda = append(agenda, AgendaDay{Date: day, Items: []ScheduledItem{item}})
	}

	return agenda, nil
}
