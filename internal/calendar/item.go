// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/validate"
)

// Status is the publication state of a scheduled item.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// ScheduledItem is a post scheduled for publication on a platform.
type ScheduledItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Platform     string    `json:"platform"`
	Status       Status    `json:"status"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Body         string    `json:"content"`
}

// ValidateItems rejects items that cannot be placed on a calendar.
// All failures are reported together, keyed by input position.
func ValidateItems(items []ScheduledItem) error {
	v := &validate.Validator{}
	for i, item := range items {
		v.Custom(fmt.Sprintf("items[%d].scheduled_for", i), item.ScheduledFor.IsZero(), "This field is required").
			OneOf(fmt.Sprintf("items[%d].status", i), string(item.Status),
				string(StatusScheduled), string(StatusDraft), string(StatusPublished), string(StatusFailed))
	}
	return v.Err()
}

// LoadItems reads a JSON array of items from path.
func LoadItems(path string) ([]ScheduledItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read items: %w", err)
	}

	var items []ScheduledItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("calendar: decode items: %w", err)
	}
	return items, nil
}

// SampleItems returns the four demo posts of June 2025, placed in loc.
func SampleItems(loc *time.Location) []ScheduledItem {
	if loc == nil {
		loc = time.UTC
	}
	return []ScheduledItem{
		{
			ID:           "1",
			Title:        "Lancement de notre nouvelle collection",
			Platform:     "Instagram",
			Status:       StatusScheduled,
			ScheduledFor: time.Date(2025, time.June, 8, 14, 30, 0, 0, loc),
			Body:         "Découvrez notre nouvelle collection printemps-été ! #NouvelleCollection",
		},
		{
			ID:           "2",
			Title:        "Conseils pour optimiser votre présence en ligne",
			Platform:     "LinkedIn",
			Status:       StatusScheduled,
			ScheduledFor: time.Date(2025, time.June, 10, 10, 0, 0, 0, loc),
			Body:         "5 conseils pour améliorer votre présence sur les réseaux sociaux professionnels",
		},
		{
			ID:           "3",
			Title:        "Tutoriel vidéo : comment utiliser notre application",
			Platform:     "YouTube",
			Status:       StatusDraft,
			ScheduledFor: time.Date(2025, time.June, 15, 16, 0, 0, 0, loc),
			Body:         "Tutoriel complet sur l'utilisation de notre application",
		},
		{
			ID:           "4",
			Title:        "Offre spéciale weekend",
			Platform:     "Facebook",
			Status:       StatusScheduled,
			ScheduledFor: time.Date(2025, time.June, 20, 9, 0, 0, 0, loc),
			Body:         "Profitez de notre offre spéciale ce weekend : -20% sur tout le site !",
		},
	}
}
