package routines

import (
	"errors"
	"fmt"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

type RoutineTodayCmd struct {
	Date string `short:"d" help:"Day to show (YYYY-MM-DD, today, tomorrow, yesterday)."`
}

func (c *RoutineTodayCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	day, err := svc.ParseDay(c.Date)
	if err != nil {
		return err
	}
	due, err := svc.DueOn(ctx.Context(), day)
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Routines for %s", formatDay(day))))
	if len(due) == 0 {
		ctx.Println(cli.List([]string{cli.MutedStyle.Render("Nothing due.")}))
		return nil
	}

	key := day.Format(constants.DateFormat)
	lines := make([]string, 0, len(due))
	for _, r := range due {
		exec, err := ctx.Store.GetExecution(ctx.Context(), r.ID, key)
		var progress *models.Execution
		switch {
		case err == nil:
			progress = &exec
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		lines = append(lines, cli.Progress(progress)+"  "+cli.RoutineLine(r))
	}
	ctx.Println(cli.List(lines))
	return nil
}

type RoutineNextCmd struct {
	ID   string `arg:"" help:"Routine ID, ID prefix or name."`
	From string `help:"Day to search from (YYYY-MM-DD, default today)."`
}

func (c *RoutineNextCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
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
	next, err := svc.NextRun(ctx.Context(), r.ID, from)
	if err != nil {
		return err
	}
	ctx.Printf("%s  %s\n", r.Name, formatDay(next))
	return nil
}

type RoutineAgendaCmd struct {
	Days int    `short:"n" help:"Number of days to show." default:"7"`
	From string `help:"First day (YYYY-MM-DD, default today)."`
}

func (c *RoutineAgendaCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	from, err := svc.ParseDay(c.From)
	if err != nil {
		return err
	}
	agenda, err := svc.Upcoming(ctx.Context(), from, c.Days)
	if err != nil {
		return err
	}

	for _, day := range agenda {
		if len(day.Routines) == 0 {
			continue
		}
		ctx.Println(cli.HeaderStyle.Render(formatDay(day.Day)))
		lines := make([]string, len(day.Routines))
		for i, r := range day.Routines {
			lines[i] = cli.RoutineLine(r)
		}
		ctx.Println(cli.List(lines))
	}
	return nil
}
