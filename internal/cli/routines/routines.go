// Package routines holds the "routine" and "cycle" commands.
package routines

// RoutineCmd groups the routine subcommands.
type RoutineCmd struct {
	Add    RoutineAddCmd    `cmd:"" help:"Add a routine."`
	Edit   RoutineEditCmd   `cmd:"" help:"Edit a routine."`
	Delete RoutineDeleteCmd `cmd:"" help:"Delete a routine and its history."`
	List   RoutineListCmd   `cmd:"" help:"List all routines."`
	Show   RoutineShowCmd   `cmd:"" help:"Show one routine."`
	Today  RoutineTodayCmd  `cmd:"" help:"Show routines due today." default:"1"`
	Next   RoutineNextCmd   `cmd:"" help:"Show a routine's next run date."`
	Agenda RoutineAgendaCmd `cmd:"" help:"Show routines due over the coming days."`
	Done   RoutineDoneCmd   `cmd:"" help:"Record that a routine was done."`
	Stats  RoutineStatsCmd  `cmd:"" help:"Show completion statistics."`
}

type CycleCmd struct {
	Check CycleCheckCmd `cmd:"" help:"Parse a repeat cycle and preview its run dates." default:"withargs"`
}
