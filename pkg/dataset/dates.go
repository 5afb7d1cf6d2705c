package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts tried before falling back to the loose US pattern. The published
// sheets mostly contain M/D/YYYY, but exports occasionally carry ISO dates
// or spelled-out months.
var genericDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1-2-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

var usDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)

// ParseCalendarDate converts a feed date cell into a local-midnight date.
// Generic layouts are tried first; the fallback accepts D{1,2}[/-]D{1,2}[/-]D{2,4}
// in US month-day-year order, expanding two-digit years by adding 2000.
// Returns false for blank cells, unmatched text, or impossible calendar
// dates (month 13, day 40).
func ParseCalendarDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
		}
	}

	m := usDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range components, so an invalid calendar
	// date won't round-trip.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
