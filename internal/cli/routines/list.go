package routines

import (
	"fmt"
	"strings"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
)

type RoutineListCmd struct{}

func (c *RoutineListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	routines, err := svc.List(ctx.Context())
	if err != nil {
		return err
	}

	if len(routines) == 0 {
		ctx.Println("No routines yet. Add one with 'ilsang routine add'.")
		return nil
	}

	lines := make([]string, 0, len(routines))
	for _, r := range routines {
		line := cli.RoutineLine(r)
		if _, err := r.Rule(); err != nil {
			line += "  " + cli.DangerStyle.Render("invalid cycle")
		}
		lines = append(lines, line)
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Routines (%d)", len(routines))))
	ctx.Println(cli.List(lines))
	return nil
}

type RoutineShowCmd struct {
	ID string `arg:"" help:"Routine ID, ID prefix or name."`
}

func (c *RoutineShowCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(c.ID)
	if err != nil {
		return err
	}
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render(r.Name))
	ctx.Printf("  ID:       %s\n", r.ID)
	ctx.Printf("  Cycle:    %s\n", cli.CycleStyle.Render(r.RepeatCycle))
	if r.ReminderTime != "" {
		ctx.Printf("  Reminder: %s\n", r.ReminderTime)
	}
	ctx.Printf("  Created:  %s\n", r.CreatedAt.In(svc.Location()).Format(constants.DateFormat))

	if next, err := svc.NextRun(ctx.Context(), r.ID, svc.Today()); err == nil {
		ctx.Printf("  Next run: %s\n", formatDay(next))
	} else {
		ctx.Printf("  Next run: %s\n", cli.DangerStyle.Render(err.Error()))
	}

	if len(r.SubTasks) > 0 {
		ctx.Println("  Sub-tasks:")
		titles := make([]string, len(r.SubTasks))
		for i, st := range r.SubTasks {
			titles[i] = fmt.Sprintf("%d. %s", i+1, st.Title)
		}
		ctx.Println(cli.List([]string{strings.Join(titles, "\n")}))
	}

	media, err := ctx.Store.GetMediaForOwner(ctx.Context(), constants.MediaOwnerRoutine, r.ID)
	if err == nil && len(media) > 0 {
		ctx.Printf("  Media:    %d attached\n", len(media))
	}
	return nil
}
