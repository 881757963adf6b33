package routines

import (
	"fmt"
	"time"

	"github.com/julianstephens/ilsang/internal/calendar"
	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/recurrence"
)

// maxScanDays covers the longest gap between occurrences of any rule.
const maxScanDays = 400

// CycleCheckCmd parses a repeat-cycle description and previews its next
// run dates without touching the store.
type CycleCheckCmd struct {
	Cycle string `arg:"" help:"Repeat cycle description."`
	From  string `help:"Creation day to evaluate from (YYYY-MM-DD, default today)."`
	Count int    `short:"n" help:"Number of run dates to show." default:"5"`
}

func (c *CycleCheckCmd) Run(ctx *cli.Context) error {
	if c.Count < 1 || c.Count > 100 {
		return fmt.Errorf("--count must be between 1 and 100")
	}

	rule, err := recurrence.Parse(c.Cycle)
	if err != nil {
		return err
	}

	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	from, err := svc.ParseDay(c.From)
	if err != nil {
		return err
	}

	ctx.Printf("✓ %s\n", cli.CycleStyle.Render(rule.String()))
	if rr, err := calendar.RRule(rule); err == nil {
		ctx.Printf("  RRULE: %s\n", rr)
	}

	for _, day := range dueDates(rule, from, c.Count) {
		ctx.Printf("  %s\n", formatDay(day))
	}
	return nil
}

// dueDates lists the first n days on or after created that the rule is due.
// NextRunDate treats the creation day itself as an occurrence, so days are
// scanned until the search has moved past it.
func dueDates(rule recurrence.Rule, created time.Time, n int) []time.Time {
	var days []time.Time
	day, ok := firstDue(rule, created, created)
	for ok && len(days) < n {
		days = append(days, day)
		if day.Equal(created) {
			day, ok = firstDue(rule, created, day.AddDate(0, 0, 1))
			continue
		}
		next := recurrence.NextRunDate(rule, created, day)
		day, ok = next, next.After(day)
	}
	return days
}

func firstDue(rule recurrence.Rule, created, start time.Time) (time.Time, bool) {
	for i := 0; i <= maxScanDays; i++ {
		day := start.AddDate(0, 0, i)
		if recurrence.ShouldRunOnDate(rule, created, day) {
			return day, true
		}
	}
	return time.Time{}, false
}
