package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ilsang/internal/backup"
	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/config"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/keyring"
	"github.com/julianstephens/ilsang/internal/recurrence"
	"github.com/julianstephens/ilsang/internal/storage/sqlite"
)

// errSkip marks a check that does not apply to the current setup.
var errSkip = errors.New("not applicable")

type level int

const (
	levelFail level = iota
	levelWarn
)

type check struct {
	name    string
	level   level
	needsDB bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{"Database reachable", levelFail, false, checkDBReachable},
	{"Schema version", levelFail, true, checkSchemaVersion},
	{"Migrations complete", levelFail, true, checkMigrationsComplete},
	{"Backups present", levelWarn, false, checkBackupsPresent},
	{"Settings", levelFail, true, checkSettings},
	{"Repeat cycles", levelFail, true, checkRepeatCycles},
	{"Execution records", levelWarn, true, checkExecutions},
	{"Clock/timezone", levelFail, false, checkClockTimezone},
	{"Config file", levelWarn, false, checkConfigFile},
	{"Keyring", levelWarn, false, checkKeyring},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		if i == 0 {
			dbReachable = err == nil
		}
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkip):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.level == levelWarn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx.Context(), "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("%w: JSON storage has no schema", errSkip)
	}
	return m.CheckSchema(ctx.Context())
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("%w: JSON storage has no schema", errSkip)
	}
	pending, err := m.PendingMigrations(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run '%s migrate'", pending, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("%w: backups cover SQLite storage only", errSkip)
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if _, err := cli.LoadLocation(settings.Timezone); err != nil {
		return err
	}
	if _, err := time.Parse(constants.TimeFormat, settings.DefaultReminderTime); err != nil {
		return fmt.Errorf("invalid default reminder time %q", settings.DefaultReminderTime)
	}
	if settings.ReminderGracePeriodMin < 0 {
		return fmt.Errorf("negative reminder grace period: %d", settings.ReminderGracePeriodMin)
	}
	return nil
}

func checkRepeatCycles(ctx *cli.Context) error {
	routines, err := ctx.Store.GetAllRoutines(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to read routines: %w", err)
	}
	var bad []string
	for _, r := range routines {
		if err := r.Validate(); err != nil {
			bad = append(bad, fmt.Sprintf("%s (%s): %v", r.Name, cli.ShortID(r.ID), err))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d routine(s) invalid: %v", len(bad), bad)
	}
	return nil
}

// checkExecutions flags executions recorded on days their routine was not
// due, which happens when a repeat cycle is edited after the fact.
func checkExecutions(ctx *cli.Context) error {
	svc, err := ctx.Routines()
	if err != nil {
		return err
	}
	routines, err := svc.List(ctx.Context())
	if err != nil {
		return err
	}
	stray := 0
	for _, r := range routines {
		execs, err := ctx.Store.GetExecutions(ctx.Context(), r.ID, "", "")
		if err != nil {
			return fmt.Errorf("failed to read executions: %w", err)
		}
		for _, e := range execs {
			day, err := recurrence.ParseDateIn(e.Day, svc.Location())
			if err != nil || !r.DueOn(day) {
				stray++
			}
		}
	}
	if stray > 0 {
		return fmt.Errorf("%d execution(s) fall on days their routine is not due", stray)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock appears incorrect: %v", now)
	}
	if _, err := time.LoadLocation("Asia/Seoul"); err != nil {
		return fmt.Errorf("timezone database unavailable: %w", err)
	}
	return nil
}

func checkConfigFile(ctx *cli.Context) error {
	for _, path := range config.Paths() {
		f, err := os.Open(kong.ExpandPath(path))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		defer f.Close()
		keys, err := config.Keys(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		ctx.Printf("   %s sets: %v\n", path, keys)
		return nil
	}
	return fmt.Errorf("%w: no config file", errSkip)
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("system keyring unavailable; use %s for PostgreSQL credentials", constants.EnvDBConnection)
	}
	return nil
}
