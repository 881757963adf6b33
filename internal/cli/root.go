package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ilsang/internal/backup"
	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/routine"
	"github.com/julianstephens/ilsang/internal/storage"
	"github.com/julianstephens/ilsang/internal/storage/postgres"
	"github.com/julianstephens/ilsang/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Store storage.Provider
	Out   io.Writer
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time

	ctx      context.Context
	routines *routine.Service
}

// NewContext wires a command context around store, writing to stdout.
func NewContext(ctx context.Context, store storage.Provider) *Context {
	return &Context{Store: store, Out: os.Stdout, ctx: ctx}
}

// Context returns the request context for storage calls.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Clock returns the current time, honouring Now.
func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Context) Printf(format string, args ...any) {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	fmt.Fprintln(c.Out, args...)
}

// Routines returns the routine service, built on first use with the
// timezone from the stored settings.
func (c *Context) Routines() (*routine.Service, error) {
	if c.routines != nil {
		return c.routines, nil
	}
	settings, err := c.Store.GetSettings(c.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return nil, err
	}
	c.routines = routine.NewService(c.Store, routine.WithLocation(loc), routine.WithClock(c.Clock))
	return c.routines, nil
}

// LoadLocation resolves a timezone setting. Empty and "Local" both mean the
// system zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// PerformAutomaticBackup backs up SQLite stores before destructive commands.
// Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c.Context()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// OpenStore picks a storage backend from a --config value: a PostgreSQL
// URL or key=value DSN, a .json file, or otherwise a SQLite database path.
// Embedded passwords are rejected unless allowCredentials is set, which is
// the case for values read from the keyring or the environment.
func OpenStore(config string, allowCredentials bool) (storage.Provider, error) {
	switch {
	case postgres.IsConnString(config) || strings.Contains(config, "host="):
		if _, err := postgres.ValidateConnString(config); err != nil {
			if !allowCredentials || !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
		}
		return postgres.New(config), nil
	case strings.HasSuffix(strings.ToLower(config), ".json"):
		return storage.NewJSONStore(kong.ExpandPath(config)), nil
	default:
		return sqlite.NewStore(kong.ExpandPath(config)), nil
	}
}

// Migrator is implemented by the SQL stores.
type Migrator interface {
	Migrate(ctx context.Context) (int, error)
	PendingMigrations(ctx context.Context) (int, error)
	CheckSchema(ctx context.Context) error
}

var (
	_ Migrator = (*sqlite.Store)(nil)
	_ Migrator = (*postgres.Store)(nil)
)

// ResolveRoutine finds a routine by full ID, unique ID prefix, or exact name.
func (c *Context) ResolveRoutine(ref string) (models.Routine, error) {
	svc, err := c.Routines()
	if err != nil {
		return models.Routine{}, err
	}
	if r, err := svc.Get(c.Context(), ref); err == nil {
		return r, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Routine{}, err
	}

	routines, err := svc.List(c.Context())
	if err != nil {
		return models.Routine{}, err
	}
	var matches []models.Routine
	for _, r := range routines {
		if r.Name == ref || (len(ref) >= 4 && strings.HasPrefix(r.ID, ref)) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return models.Routine{}, fmt.Errorf("routine %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Routine{}, fmt.Errorf("%q matches %d routines, use a longer ID", ref, len(matches))
	}
}
