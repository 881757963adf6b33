package system

import (
	"fmt"

	"github.com/julianstephens/ilsang/internal/cli"
)

type MigrateCmd struct {
	Check bool `help:"Only report pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		ctx.Println("JSON storage has no schema. Nothing to migrate.")
		return nil
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if c.Check {
		pending, err := m.PendingMigrations(ctx.Context())
		if err != nil {
			return fmt.Errorf("failed to check migrations: %w", err)
		}
		if pending == 0 {
			ctx.Println("Database is up to date.")
		} else {
			ctx.Printf("%d migration(s) pending. Run 'migrate' to apply.\n", pending)
		}
		return nil
	}

	ctx.PerformAutomaticBackup()

	count, err := m.Migrate(ctx.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("Successfully applied %d migration(s).\n", count)
	}
	return nil
}
