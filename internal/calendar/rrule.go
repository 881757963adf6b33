// Package calendar exports routines as recurring all-day iCalendar events.
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/ilsang/internal/recurrence"
)

var weekdays = map[recurrence.Weekday]rrule.Weekday{
	recurrence.Sunday:    rrule.SU,
	recurrence.Monday:    rrule.MO,
	recurrence.Tuesday:   rrule.TU,
	recurrence.Wednesday: rrule.WE,
	recurrence.Thursday:  rrule.TH,
	recurrence.Friday:    rrule.FR,
	recurrence.Saturday:  rrule.SA,
}

// Options maps a rule to an rrule option set. Dtstart is left for the
// caller.
func Options(rule recurrence.Rule) (rrule.ROption, error) {
	switch rule.Kind {
	case recurrence.KindDaily:
		return rrule.ROption{Freq: rrule.DAILY}, nil

	case recurrence.KindInterval:
		if rule.Every < 1 || rule.Every > recurrence.MaxIntervalDays {
			return rrule.ROption{}, fmt.Errorf("interval out of range: %d", rule.Every)
		}
		return rrule.ROption{Freq: rrule.DAILY, Interval: rule.Every}, nil

	case recurrence.KindWeekly:
		wd, ok := weekdays[rule.Weekday]
		if !ok {
			return rrule.ROption{}, fmt.Errorf("invalid weekday %d", rule.Weekday)
		}
		return rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{wd}}, nil

	case recurrence.KindMonthlyByDay:
		if rule.Day < 1 || rule.Day > 31 {
			return rrule.ROption{}, fmt.Errorf("invalid day of month %d", rule.Day)
		}
		return rrule.ROption{Freq: rrule.MONTHLY, Bymonthday: []int{rule.Day}}, nil

	case recurrence.KindMonthlyByWeekdayOrdinal:
		wd, ok := weekdays[rule.Weekday]
		if !ok || !rule.Ordinal.Valid() {
			return rrule.ROption{}, fmt.Errorf("invalid ordinal weekday %v %v", rule.Ordinal, rule.Weekday)
		}
		n := int(rule.Ordinal)
		if rule.Ordinal == recurrence.Last {
			n = -1
		}
		return rrule.ROption{Freq: rrule.MONTHLY, Byweekday: []rrule.Weekday{wd.Nth(n)}}, nil
	}

	return rrule.ROption{}, fmt.Errorf("unsupported rule kind %v", rule.Kind)
}

// RRule renders the RFC 5545 RRULE value for rule, without DTSTART.
func RRule(rule recurrence.Rule) (string, error) {
	opt, err := Options(rule)
	if err != nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

// newRRule anchors rule at the calendar date createdAt has in loc. Stores
// may hand timestamps back in UTC, so the date must be read in the same
// zone the evaluator uses.
func newRRule(rule recurrence.Rule, createdAt time.Time, loc *time.Location) (*rrule.RRule, error) {
	opt, err := Options(rule)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = civilDay(createdAt, loc)
	return rrule.NewRRule(opt)
}

// civilDay returns t's calendar date in loc as UTC midnight.
func civilDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
