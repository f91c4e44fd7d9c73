// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar

import "time"

// Bucket partitions items across days.
//
// Every day in days is a key, possibly with an empty slice. An item lands on
// the day its ScheduledFor falls on in loc; items outside days are dropped.
// Within a day, items keep their input order.
func Bucket(days []Date, items []ScheduledItem, loc *time.Location) (map[Date][]ScheduledItem, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	buckets := make(map[Date][]ScheduledItem, len(days))
	for _, day := range days {
		buckets[day] = []ScheduledItem{}
	}

	for _, item := range items {
		day := DateOf(item.ScheduledFor, loc)
		if bucket, ok := buckets[day]; ok {
			buckets[day] = append(bucket, item)
		}
	}

	return buckets, nil
}
