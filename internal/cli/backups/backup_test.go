package backups

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/routine"
	"github.com/julianstephens/ilsang/internal/storage"
	"github.com/julianstephens/ilsang/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "ilsang.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store)
	ctx.Out = &out
	return ctx, &out
}

func countRoutines(t *testing.T, path string) int {
	t.Helper()
	store := sqlite.NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()
	routines, err := store.GetAllRoutines(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(routines)
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: ilsang-") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 total, keeping most recent 14") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out := setupTestDB(t)
	dbPath := ctx.Store.GetConfigPath()

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	svc := routine.NewService(ctx.Store, routine.WithLocation(time.UTC))
	if _, err := svc.Create(context.Background(), "분리수거", "매주 수요일", "", nil); err != nil {
		t.Fatal(err)
	}

	old := confirm
	t.Cleanup(func() { confirm = old })

	confirm = func(string, string) (bool, error) { return false, nil }
	if err := (&BackupRestoreCmd{BackupFile: "latest"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("output = %q", out.String())
	}

	asked := false
	confirm = func(string, string) (bool, error) { asked = true; return true, nil }
	if err := (&BackupRestoreCmd{BackupFile: "latest"}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !asked {
		t.Error("restore did not ask for confirmation")
	}
	if got := countRoutines(t, dbPath); got != 0 {
		t.Errorf("routines after restore = %d, want 0", got)
	}
	if !strings.Contains(out.String(), "Previous database saved as") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupRestore_Missing(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&BackupRestoreCmd{BackupFile: "ilsang-19990101-0000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for missing backup")
	}
}

func TestBackup_RequiresSQLite(t *testing.T) {
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore())
	ctx.Out = &bytes.Buffer{}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for non-SQLite store")
	}
}
