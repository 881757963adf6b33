package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/ilsang/internal/constants"
)

// acceptedLayouts are tried in order by ParseDateIn.
var acceptedLayouts = []string{
	constants.DateFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// civil returns the calendar date of t, read in t's own location, as UTC
// midnight. All day arithmetic happens on these values so offsets and DST
// transitions never change a day count.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inLocation rebuilds a civil date as midnight in loc.
func inLocation(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

const secondsPerDay = 24 * 60 * 60

// daysBetween counts whole calendar days from a to b. It works on Unix
// seconds because time.Duration saturates after about 292 years.
func daysBetween(a, b time.Time) int {
	return int((civil(b).Unix() - civil(a).Unix()) / secondsPerDay)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return civil(a).Equal(civil(b))
}

// Truncate drops the time of day, keeping t's location.
func Truncate(t time.Time) time.Time {
	return inLocation(civil(t), t.Location())
}

// ParseDate parses a date or date-time string using the local timezone.
func ParseDate(s string) (time.Time, error) {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn parses a stored date or timestamp and returns midnight of its
// calendar date in loc. Timestamps carrying an offset are first converted to
// loc, so "2025-01-01T23:30:00Z" is the 2nd in Asia/Seoul.
func ParseDateIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return Truncate(t.In(loc)), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", s)
}
