package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRepeatCycle is returned (wrapped) for any description that does
// not match the repeat-cycle grammar.
var ErrInvalidRepeatCycle = errors.New("invalid repeat cycle")

const (
	tokenDaily     = "매일"
	tokenWeekly    = "매주"
	tokenMonthly   = "매달"
	suffixInterval = "일마다"
	suffixDay      = "일"
)

// MaxIntervalDays is the longest accepted "N일마다" interval, about a
// century. Larger values would overflow date arithmetic.
const MaxIntervalDays = 36500

var weekdaysByName = map[string]Weekday{
	"일요일": Sunday,
	"월요일": Monday,
	"화요일": Tuesday,
	"수요일": Wednesday,
	"목요일": Thursday,
	"금요일": Friday,
	"토요일": Saturday,
}

var weekdaysByShortName = map[string]Weekday{
	"일": Sunday,
	"월": Monday,
	"화": Tuesday,
	"수": Wednesday,
	"목": Thursday,
	"금": Friday,
	"토": Saturday,
}

var ordinalsByName = map[string]Ordinal{
	"첫째주":  First,
	"둘째주":  Second,
	"셋째주":  Third,
	"넷째주":  Fourth,
	"마지막주": Last,
}

// Parse converts a repeat-cycle description into a Rule. The whole string must
// match exactly one of:
//
//	매일                 daily
//	<N>일마다            every N days, N >= 1
//	매주 <요일>           every given weekday
//	매달 <D>일            day D of every month, 1 <= D <= 31
//	매달 <순서> <요일>     Nth (or last) weekday of every month
//
// Tokens are separated by exactly one space. Weekdays must be the full name
// (수요일); the ordinal is one of 첫째주, 둘째주, 셋째주, 넷째주, 마지막주.
func Parse(description string) (Rule, error) {
	s := strings.TrimSpace(description)

	if s == tokenDaily {
		return Daily(), nil
	}

	if n, ok := strings.CutSuffix(s, suffixInterval); ok {
		every, ok := parsePositive(n)
		if !ok {
			return Rule{}, invalid(description, "interval must be a positive integer")
		}
		if every > MaxIntervalDays {
			return Rule{}, invalid(description, "interval must be at most %d days", MaxIntervalDays)
		}
		return Interval(every), nil
	}

	tokens := strings.Split(s, " ")
	switch {
	case len(tokens) == 2 && tokens[0] == tokenWeekly:
		wd, ok := weekdaysByName[tokens[1]]
		if !ok {
			return Rule{}, invalid(description, "unknown weekday %q", tokens[1])
		}
		return Weekly(wd), nil

	case len(tokens) == 2 && tokens[0] == tokenMonthly:
		n, ok := strings.CutSuffix(tokens[1], suffixDay)
		if !ok {
			return Rule{}, invalid(description, "expected day of month")
		}
		day, ok := parsePositive(n)
		if !ok || day > 31 {
			return Rule{}, invalid(description, "day of month must be between 1 and 31")
		}
		return MonthlyByDay(day), nil

	case len(tokens) == 3 && tokens[0] == tokenMonthly:
		ord, ok := ordinalsByName[tokens[1]]
		if !ok {
			return Rule{}, invalid(description, "unknown week ordinal %q", tokens[1])
		}
		wd, ok := weekdaysByName[tokens[2]]
		if !ok {
			return Rule{}, invalid(description, "unknown weekday %q", tokens[2])
		}
		return MonthlyByWeekdayOrdinal(ord, wd), nil
	}

	return Rule{}, invalid(description, "unsupported format")
}

// Validate reports whether description parses. It is meant for input-time
// checks where the rule itself is not needed.
func Validate(description string) error {
	_, err := Parse(description)
	return err
}

// ParseWeekday accepts either a full weekday name ("수요일") or its
// single-character form ("수").
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if wd, ok := weekdaysByName[s]; ok {
		return wd, nil
	}
	if wd, ok := weekdaysByShortName[s]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

// parsePositive accepts ASCII digits only, so signs, spaces and non-Latin
// numerals are all rejected. Leading zeros are read as base 10.
func parsePositive(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func invalid(description, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidRepeatCycle, description, fmt.Sprintf(format, args...))
}
