package routines

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/recurrence"
)

type RoutineAddCmd struct {
	Name        string   `arg:"" optional:"" help:"Routine name."`
	Cycle       string   `short:"c" help:"Repeat cycle, e.g. '매일', '3일마다', '매주 수요일', '매달 20일', '매달 셋째주 수요일'."`
	Remind      string   `short:"r" help:"Reminder time (HH:MM)."`
	Task        []string `short:"t" help:"Sub-task title; repeat for several, in order."`
	Interactive bool     `short:"i" help:"Prompt for the fields."`

	tasksText string
}

// runForm is swapped out in tests; huh needs a terminal.
var runForm = func(f *huh.Form) error { return f.Run() }

func (c *RoutineAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive || c.Name == "" || c.Cycle == "" {
		c.tasksText = strings.Join(c.Task, "\n")
		if err := runForm(c.form()); err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
		c.Task = splitLines(c.tasksText)
	}

	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	r, err := svc.Create(ctx.Context(), c.Name, c.Cycle, c.Remind, c.Task)
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added routine: %s\n", cli.RoutineLine(r))
	next, err := svc.NextRun(ctx.Context(), r.ID, svc.Today())
	if err == nil {
		ctx.Printf("  Next run: %s\n", formatDay(next))
	}
	return nil
}

// form asks for whatever is missing. The cycle is validated as it is typed so
// a bad description never reaches the store.
func (c *RoutineAddCmd) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("routine name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Repeat cycle").
				Description("매일 · N일마다 · 매주 수요일 · 매달 20일 · 매달 셋째주 수요일").
				Value(&c.Cycle).
				Validate(recurrence.Validate),
			huh.NewInput().
				Title("Reminder time (HH:MM, optional)").
				Value(&c.Remind).
				Validate(validateReminder),
			huh.NewText().
				Title("Sub-tasks (one per line, optional)").
				Value(&c.tasksText),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateReminder(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("reminder time must be HH:MM")
	}
	return nil
}

// splitLines turns a multi-line prompt answer into sub-task titles.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func formatDay(day time.Time) string {
	return fmt.Sprintf("%s (%s)", day.Format(constants.DateFormat), recurrence.FromStd(day.Weekday()).Short())
}
