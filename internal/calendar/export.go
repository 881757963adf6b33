package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/models"
)

const productID = "-//ilsang//Routines//KO"

// Skipped names a routine left out of an export and why.
type Skipped struct {
	RoutineID string
	Name      string
	Err       error
}

// Export writes one VCALENDAR holding an all-day recurring VEVENT per
// routine. Creation dates are read in loc, the zone routines are evaluated
// in. Routines whose repeat cycle does not parse are skipped and returned;
// they do not fail the export.
func Export(w io.Writer, routines []models.Routine, loc *time.Location, stamp time.Time) ([]Skipped, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	var skipped []Skipped
	for _, r := range routines {
		event, err := routineEvent(r, loc, stamp)
		if err != nil {
			logger.Warn("Skipping routine in calendar export", "id", r.ID, "error", err)
			skipped = append(skipped, Skipped{RoutineID: r.ID, Name: r.Name, Err: err})
			continue
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return skipped, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return skipped, nil
}

func routineEvent(r models.Routine, loc *time.Location, stamp time.Time) (*ical.Event, error) {
	rule, err := r.Rule()
	if err != nil {
		return nil, err
	}
	created := civilDay(r.CreatedAt, loc)
	rr, err := newRRule(rule, r.CreatedAt, loc)
	if err != nil {
		return nil, err
	}
	opt, err := Options(rule)
	if err != nil {
		return nil, err
	}

	// DTSTART always counts as an occurrence, so start at the first real
	// one rather than the creation day.
	first := rr.After(created, true)
	if first.IsZero() {
		return nil, fmt.Errorf("repeat cycle %q never occurs", r.RepeatCycle)
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, r.ID+"@"+constants.AppName)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetText(ical.PropSummary, r.Name)
	event.Props.SetDate(ical.PropDateTimeStart, first)
	event.Props.SetDate(ical.PropDateTimeEnd, first.AddDate(0, 0, 1))
	// SetText would escape the semicolons.
	event.Props.Set(&ical.Prop{
		Name:   ical.PropRecurrenceRule,
		Params: make(ical.Params),
		Value:  opt.RRuleString(),
	})

	if desc := description(r); desc != "" {
		event.Props.SetText(ical.PropDescription, desc)
	}

	if r.ReminderTime != "" {
		if alarm, err := reminderAlarm(r); err == nil {
			event.Children = append(event.Children, alarm)
		} else {
			logger.Warn("Ignoring invalid reminder time in export", "id", r.ID, "time", r.ReminderTime)
		}
	}

	return event, nil
}

func description(r models.Routine) string {
	var b strings.Builder
	b.WriteString(r.RepeatCycle)
	for _, st := range r.SubTasks {
		b.WriteString("\n- ")
		b.WriteString(st.Title)
	}
	return b.String()
}

// reminderAlarm fires at the routine's reminder time on each occurrence day.
func reminderAlarm(r models.Routine) (*ical.Component, error) {
	t, err := time.Parse(constants.TimeFormat, r.ReminderTime)
	if err != nil {
		return nil, err
	}

	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, r.Name)
	alarm.Props.Set(&ical.Prop{
		Name:   ical.PropTrigger,
		Params: make(ical.Params),
		Value:  fmt.Sprintf("PT%dH%dM", t.Hour(), t.Minute()),
	})
	return alarm, nil
}
