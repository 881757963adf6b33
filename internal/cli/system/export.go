package system

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ilsang/internal/calendar"
	"github.com/julianstephens/ilsang/internal/cli"
)

type ExportCmd struct {
	ICS ExportICSCmd `cmd:"" name:"ics" help:"Export routines as an iCalendar (.ics) file." default:"withargs"`
}

type ExportICSCmd struct {
	Out string `short:"o" default:"-" help:"Output file, or - for stdout."`
}

func (c *ExportICSCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	routines, err := svc.List(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list routines: %w", err)
	}

	if c.Out == "-" {
		_, err := calendar.Export(ctx.Out, routines, svc.Location(), ctx.Clock())
		return err
	}

	path := kong.ExpandPath(c.Out)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	skipped, err := calendar.Export(f, routines, svc.Location(), ctx.Clock())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	ctx.Printf("✓ Exported %d routine(s) to %s\n", len(routines)-len(skipped), path)
	for _, s := range skipped {
		ctx.Println(cli.WarningStyle.Render(fmt.Sprintf("  skipped %s (%s): %v", s.Name, cli.ShortID(s.RoutineID), s.Err)))
	}
	return nil
}
