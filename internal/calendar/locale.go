// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package calendar

import (
	"time"

	"golang.org/x/text/language"
)

// Locale carries the labels and week start used to render a month.
type Locale struct {
	Tag       language.Tag
	Months    [12]string
	Weekdays  [7]string // abbreviations indexed by time.Weekday, Sunday first
	WeekStart time.Weekday
	Today     string
	NoItems   string
}

var french = Locale{
	Tag: language.French,
	Months: [12]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	},
	Weekdays:  [7]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"},
	WeekStart: time.Monday,
	Today:     "Aujourd'hui",
	NoItems:   "Aucune publication",
}

var english = Locale{
	Tag: language.English,
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Weekdays:  [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	WeekStart: time.Sunday,
	Today:     "Today",
	NoItems:   "No posts",
}

// French is the default locale.
func French() Locale { return french }

// English is the fallback for any English-speaking tag.
func English() Locale { return english }

// The first entry is the fallback when nothing matches.
var matcher = language.NewMatcher([]language.Tag{language.French, language.English})

// sundayFirst lists regions whose calendars conventionally start on Sunday.
var sundayFirst = map[string]bool{
	"US": true, "CA": true, "MX": true, "BR": true, "JP": true,
	"KR": true, "IL": true, "PH": true, "ZA": true,
}

// LocaleFor matches a BCP 47 tag ("fr-FR", "en-US", "en-GB") against the
// supported label sets. The week start follows the tag's region, so "fr-CA"
// gets French labels with a Sunday-first grid.
func LocaleFor(tag string) Locale {
	requested, err := language.Parse(tag)
	if err != nil {
		return french
	}

	_, index, _ := matcher.Match(requested)
	locale := french
	if index == 1 {
		locale = english
	}

	region, _ := requested.Region()
	if sundayFirst[region.String()] {
		locale.WeekStart = time.Sunday
	} else {
		locale.WeekStart = time.Monday
	}
	return locale
}

// MonthName is the localized name of m.
func (l Locale) MonthName(m time.Month) string {
	return l.Months[m-1]
}

// Header returns the weekday abbreviations in grid order, starting at WeekStart.
func (l Locale) Header() []string {
	header := make([]string, 7)
	for i := range header {
		header[i] = l.Weekdays[(int(l.WeekStart)+i)%7]
	}
	return header
}
