package format

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

const day = 24 * time.Hour

// Numeric date layouts, looked up by full tag first and base language second.
var datePatterns = map[string]string{
	"en-US": "1/2/2006",
	"en-GB": "02/01/2006",
	"en":    "1/2/2006",
	"pt":    "02/01/2006",
	"fr":    "02/01/2006",
	"it":    "2/1/2006",
	"es":    "2/1/2006",
	"de":    "2.1.2006",
	"nl":    "2-1-2006",
	"ja":    "2006/1/2",
	"zh":    "2006/1/2",
}

// DaysBetween counts whole days between a and b, rounded to nearest.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Round(float64(d) / float64(day)))
}

// MovementDate labels when a movement happened relative to now:
// "Today", "Yesterday", "N days ago" up to a week, else the numeric date
// in the given locale.
func MovementDate(date, now time.Time, locale string) string {
	switch days := DaysBetween(date, now); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return strconv.Itoa(days) + " days ago"
	}
	return Date(date, locale)
}

// Date formats t as a numeric date in the given locale.
func Date(t time.Time, locale string) string {
	return t.Format(datePattern(parseLocale(locale)))
}

// DateTime is the login timestamp label: numeric date plus hour and minute.
func DateTime(t time.Time, locale string) string {
	tag := parseLocale(locale)
	clock := "15:04"
	if base, _ := tag.Base(); base.String() == "en" {
		if region, _ := tag.Region(); region.String() != "GB" {
			clock = "3:04 PM"
		}
	}
	return t.Format(datePattern(tag) + ", " + clock)
}

func datePattern(tag language.Tag) string {
	if p, ok := datePatterns[tag.String()]; ok {
		return p
	}
	base, _ := tag.Base()
	if p, ok := datePatterns[base.String()]; ok {
		return p
	}
	return datePatterns[fallbackLocale]
}
