package recurrence

import (
	"fmt"
	"time"
)

// Weekday is a day of the week. Values line up with time.Weekday (Sunday = 0).
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// String returns the full Korean name, e.g. "수요일".
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Short returns the single-character Korean abbreviation, e.g. "수".
func (w Weekday) Short() string {
	if !w.Valid() {
		return ""
	}
	return string([]rune(weekdayNames[w])[:1])
}

// Std converts to the standard library weekday.
func (w Weekday) Std() time.Weekday {
	return time.Weekday(w)
}

func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// FromStd converts a standard library weekday.
func FromStd(wd time.Weekday) Weekday {
	return Weekday(wd)
}

// Ordinal selects an occurrence of a weekday within a month.
type Ordinal int

const (
	First Ordinal = iota + 1
	Second
	Third
	Fourth
	Last
)

var ordinalNames = map[Ordinal]string{
	First:  "첫째주",
	Second: "둘째주",
	Third:  "셋째주",
	Fourth: "넷째주",
	Last:   "마지막주",
}

func (o Ordinal) String() string {
	if name, ok := ordinalNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Ordinal(%d)", int(o))
}

func (o Ordinal) Valid() bool {
	return o >= First && o <= Last
}

// Kind tags the variant held by a Rule.
type Kind int

const (
	KindDaily Kind = iota + 1
	KindInterval
	KindWeekly
	KindMonthlyByDay
	KindMonthlyByWeekdayOrdinal
)

func (k Kind) String() string {
	switch k {
	case KindDaily:
		return "daily"
	case KindInterval:
		return "interval"
	case KindWeekly:
		return "weekly"
	case KindMonthlyByDay:
		return "monthly-day"
	case KindMonthlyByWeekdayOrdinal:
		return "monthly-weekday"
	default:
		return "unknown"
	}
}

// Rule is the structured form of a repeat cycle. Only the fields relevant to
// Kind are set; the rest stay zero so two rules parsed from the same
// description compare equal with ==.
type Rule struct {
	Kind    Kind
	Every   int     // KindInterval
	Weekday Weekday // KindWeekly, KindMonthlyByWeekdayOrdinal
	Day     int     // KindMonthlyByDay
	Ordinal Ordinal // KindMonthlyByWeekdayOrdinal
}

func Daily() Rule {
	return Rule{Kind: KindDaily}
}

func Interval(every int) Rule {
	return Rule{Kind: KindInterval, Every: every}
}

func Weekly(wd Weekday) Rule {
	return Rule{Kind: KindWeekly, Weekday: wd}
}

func MonthlyByDay(day int) Rule {
	return Rule{Kind: KindMonthlyByDay, Day: day}
}

func MonthlyByWeekdayOrdinal(ord Ordinal, wd Weekday) Rule {
	return Rule{Kind: KindMonthlyByWeekdayOrdinal, Ordinal: ord, Weekday: wd}
}

// String renders the canonical repeat-cycle description. Parse(r.String())
// yields r for every valid rule.
func (r Rule) String() string {
	switch r.Kind {
	case KindDaily:
		return tokenDaily
	case KindInterval:
		return fmt.Sprintf("%d%s", r.Every, suffixInterval)
	case KindWeekly:
		return tokenWeekly + " " + r.Weekday.String()
	case KindMonthlyByDay:
		return fmt.Sprintf("%s %d%s", tokenMonthly, r.Day, suffixDay)
	case KindMonthlyByWeekdayOrdinal:
		return tokenMonthly + " " + r.Ordinal.String() + " " + r.Weekday.String()
	default:
		return ""
	}
}
