package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/config"
	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/storage"
	"github.com/julianstephens/ilsang/internal/storage/postgres"
)

type InitCmd struct {
	Force        bool   `help:"Force reset by deleting existing database before initialization."`
	Source       string `help:"Source database path or connection string to copy data from."`
	NoConfigFile bool   `name:"no-config-file" help:"Do not write a starter config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*postgres.Store); ok {
			return fmt.Errorf("--force is not supported for PostgreSQL; drop the schema manually")
		}
		dbPath := ctx.Store.GetConfigPath()
		if abs, err := filepath.Abs(dbPath); err == nil {
			dbPath = abs
		}
		if c.Source != "" {
			if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if !c.NoConfigFile {
		path := config.Paths()[0]
		f := config.File{Config: ctx.Store.GetConfigPath()}
		if _, ok := ctx.Store.(*postgres.Store); ok {
			// Connection strings belong in the keyring, not a plain file.
			f.Config = ""
		}
		written, err := config.WriteDefault(path, f)
		if err != nil {
			return err
		}
		if written {
			ctx.Printf("Wrote config file: %s\n", path)
		}
	}

	if c.Source != "" {
		ctx.Printf("Migrating data from: %s\n", c.Source)
		source, err := cli.OpenStore(c.Source, false)
		if err != nil {
			return fmt.Errorf("invalid source: %w", err)
		}
		if err := c.migrateData(ctx, source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, source storage.Provider) error {
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	bg := ctx.Context()
	dest := ctx.Store

	ctx.Println("  Migrating settings...")
	settings, err := source.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dest.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	ctx.Println("  Migrating routines...")
	routines, err := source.GetAllRoutines(bg)
	if err != nil {
		return fmt.Errorf("failed to get routines from source: %w", err)
	}
	executions := 0
	for _, r := range routines {
		if err := dest.AddRoutine(bg, r); err != nil {
			return fmt.Errorf("failed to add routine %s: %w", r.ID, err)
		}
		execs, err := source.GetExecutions(bg, r.ID, "", "")
		if err != nil {
			return fmt.Errorf("failed to get executions for routine %s: %w", r.ID, err)
		}
		for _, e := range execs {
			if err := dest.SaveExecution(bg, e); err != nil {
				return fmt.Errorf("failed to save execution %s/%s: %w", r.ID, e.Day, err)
			}
		}
		executions += len(execs)
	}
	ctx.Printf("    Migrated %d routines, %d executions\n", len(routines), executions)

	ctx.Println("  Migrating diary...")
	entries, err := source.GetDiaryEntries(bg, "", "", true)
	if err != nil {
		return fmt.Errorf("failed to get diary entries from source: %w", err)
	}
	for _, e := range entries {
		if err := dest.AddDiaryEntry(bg, e); err != nil {
			return fmt.Errorf("failed to add diary entry %s: %w", e.ID, err)
		}
		if e.InTrash() {
			if err := dest.DeleteDiaryEntry(bg, e.ID); err != nil {
				return fmt.Errorf("failed to trash diary entry %s: %w", e.ID, err)
			}
		}
	}
	ctx.Printf("    Migrated %d diary entries\n", len(entries))

	ctx.Println("  Migrating media...")
	media := 0
	copyMedia := func(ownerType constants.MediaOwnerType, ownerID string) error {
		items, err := source.GetMediaForOwner(bg, ownerType, ownerID)
		if err != nil {
			return fmt.Errorf("failed to get media for %s %s: %w", ownerType, ownerID, err)
		}
		for _, m := range items {
			if err := dest.AddMedia(bg, m); err != nil {
				return fmt.Errorf("failed to add media %s: %w", m.ID, err)
			}
		}
		media += len(items)
		return nil
	}
	for _, r := range routines {
		if err := copyMedia(constants.MediaOwnerRoutine, r.ID); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := copyMedia(constants.MediaOwnerDiary, e.ID); err != nil {
			return err
		}
	}
	ctx.Printf("    Migrated %d media references\n", media)

	return nil
}
