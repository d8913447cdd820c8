package wodify

import (
	"regexp"
	"strings"
	"time"
)

// Dates travel through the pipeline anchored to 12:00 UTC. Midnight
// anchoring plus a timezone offset shifts a date into the neighboring day,
// which throws every day-difference off by one; noon never does.

var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
}

var datetimeLayouts = []string{
	"Jan 2, 2006, 3:04 PM",
	"January 2, 2006, 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

var trailingClock = regexp.MustCompile(`,?\s*\d{1,2}:\d{2}(:\d{2})?\s*([AP]M|[ap]m)?$`)

// ParseDate turns a loosely formatted export date ("Dec 31, 2025",
// "Dec 31, 2025, 7:00 AM", ISO) into a noon-anchored calendar date.
// The second return is false when no layout matches; callers treat that
// as "no date", never as an error.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	stripped := strings.TrimSpace(trailingClock.ReplaceAllString(value, ""))
	if stripped != "" {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, stripped); err == nil {
				return Noon(parsed), true
			}
		}
	}

	// Retry the untouched original; some exports carry a full datetime the
	// clock stripper does not recognize.
	for _, layout := range append(datetimeLayouts, dateLayouts...) {
		if parsed, err := time.Parse(layout, value); err == nil {
			return Noon(parsed), true
		}
	}
	return time.Time{}, false
}

// Noon re-anchors a time to 12:00 UTC on the same calendar day.
func Noon(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// DaysBetween returns whole calendar days from one noon-anchored date to
// another. Negative when `to` precedes `from`.
func DaysBetween(from, to time.Time) int {
	return int(Noon(to).Sub(Noon(from)).Hours() / 24)
}

// WeekStart returns noon on the Monday of the week containing the given day.
func WeekStart(value time.Time) time.Time {
	value = Noon(value)
	offset := (int(value.Weekday()) + 6) % 7
	return value.AddDate(0, 0, -offset)
}
