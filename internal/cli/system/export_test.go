package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

func setupExportContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewMemoryStore()
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(context.Background(), settings); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store)
	ctx.Out = &out
	ctx.Now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) }

	svc, err := ctx.Routines()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx.Context(), "분리수거", "매달 셋째주 수요일", "20:00", nil); err != nil {
		t.Fatal(err)
	}
	created := ctx.Clock()
	broken := models.Routine{ID: "broken-routine", Name: "격주", RepeatCycle: "격주 수요일", CreatedAt: created, UpdatedAt: created}
	if err := store.AddRoutine(ctx.Context(), broken); err != nil {
		t.Fatal(err)
	}
	return ctx, &out
}

func TestExportICSCmd_Stdout(t *testing.T) {
	ctx, out := setupExportContext(t)

	if err := (&ExportICSCmd{Out: "-"}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:분리수거", "RRULE:FREQ=MONTHLY;BYDAY=+3WE"} {
		if !strings.Contains(got, want) {
			t.Errorf("calendar missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "격주") {
		t.Errorf("invalid routine exported:\n%s", got)
	}
	if !hasLine(got, "DTSTART", "20250115") {
		t.Errorf("DTSTART should be the first occurrence, 2025-01-15:\n%s", got)
	}
}

func hasLine(ics, prefix, suffix string) bool {
	for _, line := range strings.Split(ics, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, prefix) && strings.HasSuffix(line, suffix) {
			return true
		}
	}
	return false
}

func TestExportICSCmd_File(t *testing.T) {
	ctx, out := setupExportContext(t)
	path := filepath.Join(t.TempDir(), "routines.ics")

	if err := (&ExportICSCmd{Out: path}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BEGIN:VEVENT") {
		t.Errorf("file content:\n%s", data)
	}
	got := out.String()
	if !strings.Contains(got, "✓ Exported 1 routine(s)") || !strings.Contains(got, "skipped 격주") {
		t.Errorf("output = %q", got)
	}
}

func TestExportICSCmd_UsesSettingsTimezone(t *testing.T) {
	store := storage.NewMemoryStore()
	settings := models.DefaultSettings()
	settings.Timezone = "Asia/Seoul"
	if err := store.SaveSettings(context.Background(), settings); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store)
	ctx.Out = &out
	// 08:30 on the 15th in Seoul, still the 14th in UTC.
	ctx.Now = func() time.Time { return time.Date(2025, 1, 14, 23, 30, 0, 0, time.UTC) }
	if _, err := cli.LoadLocation("Asia/Seoul"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	svc, err := ctx.Routines()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx.Context(), "물주기", "3일마다", "", nil); err != nil {
		t.Fatal(err)
	}

	if err := (&ExportICSCmd{Out: "-"}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	got := out.String()
	if !hasLine(got, "DTSTART", "20250115") {
		t.Errorf("DTSTART should be the Seoul creation day, 2025-01-15:\n%s", got)
	}
	if !strings.Contains(got, "RRULE:FREQ=DAILY;INTERVAL=3") {
		t.Errorf("calendar missing interval rule:\n%s", got)
	}
}
