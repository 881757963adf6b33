package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/ilsang/internal/constants"
)

// setupTestDB creates a database with two routines and a manager whose clock
// advances one minute per backup.
func setupTestDB(t *testing.T) (string, *Manager) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ilsang.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE routines (id TEXT PRIMARY KEY, name TEXT, repeat_cycle TEXT)`,
		`INSERT INTO routines VALUES ('r1', '분리수거', '매주 수요일')`,
		`INSERT INTO routines VALUES ('r2', '관리비', '매달 20일')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to prepare test database: %v", err)
		}
	}

	mgr := NewManager(dbPath)
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return dbPath, mgr
}

func countRoutines(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM routines").Scan(&count); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return count
}

func TestCreate(t *testing.T) {
	_, mgr := setupTestDB(t)

	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written to %s, want dir %s", path, mgr.Dir())
	}
	if base := filepath.Base(path); base != "ilsang-20250115-0901.db" {
		t.Errorf("backup name = %s", base)
	}
	if got := countRoutines(t, path); got != 2 {
		t.Errorf("expected 2 rows in backup, got %d", got)
	}
}

func TestCreate_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestRotation(t *testing.T) {
	_, mgr := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.Create(ctx); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i].Timestamp.Before(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
	// The five oldest (09:01 through 09:05) were pruned.
	oldest := filepath.Base(backups[len(backups)-1].Path)
	if oldest != "ilsang-20250115-0906.db" {
		t.Errorf("oldest remaining backup = %s", oldest)
	}
}

func TestList(t *testing.T) {
	_, mgr := setupTestDB(t)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
	}
	// Files that do not follow the naming scheme are ignored.
	for _, name := range []string{"notes.txt", "ilsang-garbage.db", "ilsang-20250115-0900-x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"ilsang-20250115-0901.db", "2025-01-15 09:01:00", true},
		{"ilsang-20250115-090130.db", "2025-01-15 09:01:30", true},
		{"ilsang-20250115-090130-2.db", "2025-01-15 09:01:30", true},
		{"ilsang-20250115.db", "", false},
		{"other-20250115-0901.db", "", false},
		{"ilsang-20250115-0901.sqlite", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := parseName(tt.name)
			if ok != tt.ok {
				t.Fatalf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok && ts.Format("2006-01-02 15:04:05") != tt.want {
				t.Errorf("parseName(%q) = %v, want %s", tt.name, ts, tt.want)
			}
		})
	}
}

func TestUniqueNamesWithinAMinute(t *testing.T) {
	_, mgr := setupTestDB(t)
	fixed := time.Date(2025, 1, 15, 9, 0, 30, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		path, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		name := filepath.Base(path)
		if seen[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		seen[name] = true
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 5 {
		t.Errorf("expected all 5 backups to be listed, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	dbPath, mgr := setupTestDB(t)
	ctx := context.Background()

	backupPath, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO routines VALUES ('r3', '물 주기', '3일마다')`); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}
	db.Close()

	previous, err := mgr.Restore(ctx, backupPath)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := countRoutines(t, dbPath); got != 2 {
		t.Errorf("expected 2 rows after restore, got %d", got)
	}
	if previous == "" {
		t.Fatal("expected a pre-restore backup")
	}
	if got := countRoutines(t, previous); got != 3 {
		t.Errorf("pre-restore backup has %d rows, want 3", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestore_InvalidBackup(t *testing.T) {
	_, mgr := setupTestDB(t)
	ctx := context.Background()

	if _, err := mgr.Restore(ctx, filepath.Join(mgr.Dir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	invalid := filepath.Join(mgr.Dir(), "invalid.db")
	if err := os.WriteFile(invalid, []byte("not a database at all, just text padding it out"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := mgr.Restore(ctx, invalid)
	if err == nil || !strings.Contains(err.Error(), "corrupted") {
		t.Errorf("Restore(invalid) error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	_, mgr := setupTestDB(t)
	ctx := context.Background()

	if _, err := mgr.Resolve("latest"); err == nil {
		t.Error("expected error resolving latest with no backups")
	}

	first, _ := mgr.Create(ctx)
	second, _ := mgr.Create(ctx)

	if got, err := mgr.Resolve("latest"); err != nil || got != second {
		t.Errorf("Resolve(latest) = %s, %v; want %s", got, err, second)
	}
	if got, err := mgr.Resolve(filepath.Base(first)); err != nil || got != first {
		t.Errorf("Resolve(name) = %s, %v; want %s", got, err, first)
	}
	if got, err := mgr.Resolve(first); err != nil || got != first {
		t.Errorf("Resolve(path) = %s, %v; want %s", got, err, first)
	}
	if _, err := mgr.Resolve("ilsang-19990101-0000.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
