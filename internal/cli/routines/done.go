package routines

import (
	"github.com/julianstephens/ilsang/internal/cli"
)

type RoutineDoneCmd struct {
	ID        string `arg:"" help:"Routine ID, ID prefix or name."`
	Date      string `short:"d" help:"Day the routine was done (default today)."`
	Completed *int   `short:"c" help:"Number of sub-tasks completed (default all)."`
	Note      string `help:"Free-form note."`
}

func (c *RoutineDoneCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
	if err != nil {
		return err
	}
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	day, err := svc.ParseDay(c.Date)
	if err != nil {
		return err
	}

	completed := len(r.SubTasks)
	if c.Completed != nil {
		completed = *c.Completed
	}

	exec, err := svc.RecordExecution(ctx.Context(), r.ID, day, completed, c.Note)
	if err != nil {
		return err
	}
	ctx.Printf("%s  %s on %s\n", cli.Progress(&exec), r.Name, formatDay(day))
	return nil
}

type RoutineStatsCmd struct {
	ID   string `arg:"" help:"Routine ID, ID prefix or name."`
	AsOf string `help:"Last day to include (default today)."`
}

func (c *RoutineStatsCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
	if err != nil {
		return err
	}
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	asOf, err := svc.ParseDay(c.AsOf)
	if err != nil {
		return err
	}
	stats, err := svc.Stats(ctx.Context(), r.ID, asOf)
	if err != nil {
		return err
	}

	last := stats.LastCompleted
	if last == "" {
		last = "never"
	}
	ctx.Println(cli.HeaderStyle.Render(r.Name))
	ctx.Printf("  Due days:       %d\n", stats.DueDays)
	ctx.Printf("  Recorded:       %d\n", stats.RecordedDays)
	ctx.Printf("  Completed:      %d\n", stats.CompletedDays)
	ctx.Printf("  Completion:     %.0f%%\n", stats.CompletionRate*100)
	ctx.Printf("  Current streak: %d\n", stats.CurrentStreak)
	ctx.Printf("  Last completed: %s\n", last)
	return nil
}
