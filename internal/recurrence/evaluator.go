package recurrence

import (
	"time"
)

// maxMonthsAhead bounds the month search in NextRunDate. Every day 1-31
// appears at least once in any two consecutive months, and every ordinal
// weekday appears every month, so a year is plenty.
const maxMonthsAhead = 12

// ShouldRunOnDate reports whether a routine with the given rule, created on
// createdAt, is due on target. Both dates are compared by calendar day only.
// A routine is never due before the day it was created.
func ShouldRunOnDate(rule Rule, createdAt, target time.Time) bool {
	created, day := civil(createdAt), civil(target)
	if day.Before(created) {
		return false
	}

	switch rule.Kind {
	case KindDaily:
		return true

	case KindInterval:
		if rule.Every < 1 || rule.Every > MaxIntervalDays {
			return false
		}
		return daysBetween(created, day)%rule.Every == 0

	case KindWeekly:
		return day.Weekday() == rule.Weekday.Std()

	case KindMonthlyByDay:
		if day.Day() != rule.Day {
			return false
		}
		return onOrAfterCreation(created, day)

	case KindMonthlyByWeekdayOrdinal:
		occurrence := NthWeekdayOfMonth(day.Year(), day.Month(), rule.Ordinal, rule.Weekday)
		if !occurrence.Equal(day) {
			return false
		}
		return onOrAfterCreation(created, occurrence)

	default:
		return false
	}
}

// onOrAfterCreation applies the monthly rules' start condition: in the month
// of creation the occurrence must not precede the creation day; any later
// month counts.
func onOrAfterCreation(created, occurrence time.Time) bool {
	if occurrence.Year() == created.Year() && occurrence.Month() == created.Month() {
		return occurrence.Day() >= created.Day()
	}
	return occurrence.After(created)
}

// NthWeekdayOfMonth returns the date of the ord-th wd in the given month, as
// UTC midnight. For Last it takes the first wd of the following month and
// steps back a week, which works for any month length.
func NthWeekdayOfMonth(year int, month time.Month, ord Ordinal, wd Weekday) time.Time {
	if ord == Last {
		return firstWeekdayOfMonth(year, month+1, wd).AddDate(0, 0, -7)
	}
	return firstWeekdayOfMonth(year, month, wd).AddDate(0, 0, 7*int(ord-First))
}

func firstWeekdayOfMonth(year int, month time.Month, wd Weekday) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd.Std()) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}

// NextRunDate returns the next due date for the rule, as midnight in from's
// location.
//
// When from falls on the creation day, that day is returned: creation is the
// first occurrence. Otherwise the result is the first date strictly after
// from on which ShouldRunOnDate holds. If from precedes creation, the search
// starts at the creation day.
func NextRunDate(rule Rule, createdAt, from time.Time) time.Time {
	loc := from.Location()
	created, day := civil(createdAt), civil(from)
	if day.Equal(created) {
		return inLocation(day, loc)
	}

	// after is the last day that must not be returned.
	after := day
	if day.Before(created) {
		after = created.AddDate(0, 0, -1)
	}

	next, ok := nextAfter(rule, created, after)
	if !ok {
		return from
	}
	return inLocation(next, loc)
}

func nextAfter(rule Rule, created, after time.Time) (time.Time, bool) {
	switch rule.Kind {
	case KindDaily:
		return after.AddDate(0, 0, 1), true

	case KindInterval:
		if rule.Every < 1 || rule.Every > MaxIntervalDays {
			return time.Time{}, false
		}
		// Smallest k > daysBetween(created, after) with k % Every == 0.
		k := daysBetween(created, after) + 1
		if rem := k % rule.Every; rem != 0 {
			k += rule.Every - rem
		}
		return created.AddDate(0, 0, k), true

	case KindWeekly:
		if !rule.Weekday.Valid() {
			return time.Time{}, false
		}
		delta := (int(rule.Weekday.Std()) - int(after.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return after.AddDate(0, 0, delta), true

	case KindMonthlyByDay:
		if rule.Day < 1 || rule.Day > 31 {
			return time.Time{}, false
		}
		for i := 0; i <= maxMonthsAhead; i++ {
			year, month := addMonths(after.Year(), after.Month(), i)
			if rule.Day > daysInMonth(year, month) {
				// No rollover: months without this day are skipped.
				continue
			}
			candidate := time.Date(year, month, rule.Day, 0, 0, 0, 0, time.UTC)
			if candidate.After(after) {
				return candidate, true
			}
		}
		return time.Time{}, false

	case KindMonthlyByWeekdayOrdinal:
		if !rule.Ordinal.Valid() || !rule.Weekday.Valid() {
			return time.Time{}, false
		}
		for i := 0; i <= maxMonthsAhead; i++ {
			year, month := addMonths(after.Year(), after.Month(), i)
			candidate := NthWeekdayOfMonth(year, month, rule.Ordinal, rule.Weekday)
			if candidate.After(after) {
				return candidate, true
			}
		}
		return time.Time{}, false

	default:
		return time.Time{}, false
	}
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// DueOn parses description and createdAt and reports whether the routine is
// due on target. Unparseable input is never due.
func DueOn(description, createdAt string, target time.Time) bool {
	rule, err := Parse(description)
	if err != nil {
		return false
	}
	created, err := ParseDateIn(createdAt, target.Location())
	if err != nil {
		return false
	}
	return ShouldRunOnDate(rule, created, target)
}

// NextRun is the string-input form of NextRunDate. Unparseable input returns
// from unchanged.
func NextRun(description, createdAt string, from time.Time) time.Time {
	rule, err := Parse(description)
	if err != nil {
		return from
	}
	created, err := ParseDateIn(createdAt, from.Location())
	if err != nil {
		return from
	}
	return NextRunDate(rule, created, from)
}
