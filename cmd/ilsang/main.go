package main

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/cli/backups"
	"github.com/julianstephens/ilsang/internal/cli/diary"
	"github.com/julianstephens/ilsang/internal/cli/media"
	"github.com/julianstephens/ilsang/internal/cli/routines"
	"github.com/julianstephens/ilsang/internal/cli/settings"
	"github.com/julianstephens/ilsang/internal/cli/system"
	"github.com/julianstephens/ilsang/internal/config"
	"github.com/julianstephens/ilsang/internal/constants"
	ilsangerrors "github.com/julianstephens/ilsang/internal/errors"
	"github.com/julianstephens/ilsang/internal/keyring"
	"github.com/julianstephens/ilsang/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database path (.db or .json) or PostgreSQL connection string. Credentials must NOT be embedded; use the keyring, ILSANG_DB_CONNECTION or .pgpass." env:"ILSANG_CONFIG" default:"~/.config/ilsang/ilsang.db"`
	Debug   bool   `help:"Enable debug logging." env:"ILSANG_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize ilsang storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Routine  routines.RoutineCmd  `cmd:"" help:"Manage routines." default:"1"`
	Cycle    routines.CycleCmd    `cmd:"" help:"Check repeat-cycle descriptions."`
	Diary    diary.DiaryCmd       `cmd:"" help:"Write and browse diary entries."`
	Media    media.MediaCmd       `cmd:"" help:"Attach images and audio to routines and diary entries."`
	Export   system.ExportCmd     `cmd:"" help:"Export routines to other formats."`
	Remind   system.RemindCmd     `cmd:"" help:"Run the reminder scheduler in the foreground."`
	Notify   system.NotifyCmd     `cmd:"" hidden:"" help:"Send the reminders due this minute (for cron)."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Debugger system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("일상: Korean repeat-cycle routines, reminders and a diary"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.Loader, config.Paths()...),
		kong.Vars{"version": constants.Version},
	)

	command := ctx.Command()
	logCfg := logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: kong.ExpandPath("~/.config/" + constants.AppName),
	}
	if strings.HasPrefix(command, "remind") {
		logCfg.Console = os.Stdout
	}
	if err := logger.Init(logCfg); err != nil {
		logger.InitWriter(os.Stderr, CLI.Debug)
		logger.Warn("Falling back to stderr logging", "error", err)
	}

	value, source := keyring.Resolve(CLI.Config)
	logger.Debug("Resolved database location", "source", source)
	store, err := cli.OpenStore(value, source != keyring.SourceFlag)
	if err != nil {
		ilsangerrors.Fatal(err)
	}
	defer store.Close()

	// init creates the store and keyring commands do not touch it.
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") {
		if err := store.Load(); err != nil {
			ilsangerrors.Fatal(err)
		}
	}

	if err := ctx.Run(cli.NewContext(context.Background(), store)); err != nil {
		store.Close()
		ilsangerrors.Fatal(err)
	}
}
