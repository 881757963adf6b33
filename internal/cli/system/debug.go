package system

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/ilsang/internal/calendar"
	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/recurrence"
)

type DebugCmd struct {
	DBPath         *DebugDBPathCmd         `cmd:"" name:"db-path" help:"Show database path."`
	DumpRoutine    *DebugDumpRoutineCmd    `cmd:"" help:"Dump a routine as JSON."`
	DumpExecutions *DebugDumpExecutionsCmd `cmd:"" help:"Dump a routine's execution records as JSON."`
	DumpDiary      *DebugDumpDiaryCmd      `cmd:"" help:"Dump a diary entry as JSON."`
	DumpSettings   *DebugDumpSettingsCmd   `cmd:"" help:"Dump settings as JSON."`
	DumpRule       *DebugDumpRuleCmd       `cmd:"" help:"Parse a repeat cycle and dump the rule as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpRoutineCmd struct {
	ID string `arg:"" help:"Routine ID, ID prefix or name."`
}

func (cmd *DebugDumpRoutineCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(cmd.ID)
	if err != nil {
		return err
	}
	return printJSON(ctx, r)
}

type DebugDumpExecutionsCmd struct {
	ID   string `arg:"" help:"Routine ID, ID prefix or name."`
	From string `help:"First day (YYYY-MM-DD)."`
	To   string `help:"Last day (YYYY-MM-DD)."`
}

func (cmd *DebugDumpExecutionsCmd) Run(ctx *cli.Context) error {
	r, err := ctx.ResolveRoutine(cmd.ID)
	if err != nil {
		return err
	}
	for _, d := range []string{cmd.From, cmd.To} {
		if d != "" && !isValidDate(d) {
			return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", d)
		}
	}
	execs, err := ctx.Store.GetExecutions(ctx.Context(), r.ID, cmd.From, cmd.To)
	if err != nil {
		return fmt.Errorf("failed to get executions: %w", err)
	}
	if execs == nil {
		execs = []models.Execution{}
	}
	return printJSON(ctx, execs)
}

type DebugDumpDiaryCmd struct {
	ID string `arg:"" help:"Diary entry ID."`
}

func (cmd *DebugDumpDiaryCmd) Run(ctx *cli.Context) error {
	entry, err := ctx.Store.GetDiaryEntry(ctx.Context(), cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get diary entry: %w", err)
	}
	return printJSON(ctx, entry)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(ctx, settings)
}

type DebugDumpRuleCmd struct {
	Cycle string `arg:"" help:"Repeat cycle, e.g. '매달 셋째주 수요일'."`
}

func (cmd *DebugDumpRuleCmd) Run(ctx *cli.Context) error {
	rule, err := recurrence.Parse(cmd.Cycle)
	if err != nil {
		return err
	}
	rrule, err := calendar.RRule(rule)
	if err != nil {
		return err
	}
	return printJSON(ctx, struct {
		Rule   recurrence.Rule `json:"rule"`
		String string          `json:"string"`
		RRule  string          `json:"rrule"`
	}{rule, rule.String(), rrule})
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}
