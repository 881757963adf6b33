package routines

import (
	"fmt"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/routine"
)

type RoutineEditCmd struct {
	ID         string   `arg:"" help:"Routine ID, ID prefix or name."`
	Name       *string  `help:"New name."`
	Cycle      *string  `short:"c" help:"New repeat cycle."`
	Remind     *string  `short:"r" help:"New reminder time (HH:MM); empty clears it."`
	Task       []string `short:"t" help:"Replace the sub-tasks; repeat for several."`
	ClearTasks bool     `help:"Remove all sub-tasks."`
}

func (c *RoutineEditCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
	if err != nil {
		return err
	}

	u := routine.Update{Name: c.Name, RepeatCycle: c.Cycle, ReminderTime: c.Remind}
	switch {
	case c.ClearTasks && len(c.Task) > 0:
		return fmt.Errorf("--clear-tasks cannot be combined with --task")
	case c.ClearTasks:
		u.SubTasks = &[]string{}
	case len(c.Task) > 0:
		u.SubTasks = &c.Task
	}
	if u == (routine.Update{}) {
		ctx.Println("No changes specified.")
		return nil
	}

	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	updated, err := svc.Update(ctx.Context(), r.ID, u)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated routine: %s\n", cli.RoutineLine(updated))
	return nil
}

type RoutineDeleteCmd struct {
	ID string `arg:"" help:"Routine ID, ID prefix or name."`
}

func (c *RoutineDeleteCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	if err := svc.Delete(ctx.Context(), r.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted routine %s and its history\n", r.Name)
	return nil
}
