package system

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/models"
	"github.com/julianstephens/ilsang/internal/storage"
)

// setupReminderContext uses a clock of Wednesday 2025-01-15 20:00 UTC.
func setupReminderContext(t *testing.T, parent context.Context, mutate func(*models.Settings)) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewMemoryStore()
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if mutate != nil {
		mutate(&settings)
	}
	if err := store.SaveSettings(parent, settings); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctx := cli.NewContext(parent, store)
	ctx.Out = &out
	ctx.Now = func() time.Time { return time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC) }

	svc, err := ctx.Routines()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(parent, "분리수거", "매주 수요일", "20:00", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(parent, "약 먹기", "매일", "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(parent, "청소", "매주 목요일", "20:00", nil); err != nil {
		t.Fatal(err)
	}
	return ctx, &out
}

func TestNotifyCmd_DryRun(t *testing.T) {
	ctx, out := setupReminderContext(t, context.Background(), nil)

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "🔔 분리수거 (매주 수요일)") {
		t.Errorf("expected reminder for the due routine: %q", got)
	}
	if strings.Contains(got, "청소") {
		t.Errorf("routine not due today was reminded: %q", got)
	}
	if strings.Contains(got, "약 먹기") {
		t.Errorf("routine using the 08:00 default was reminded at 20:00: %q", got)
	}
	if !strings.Contains(got, "1 reminder(s) due now.") {
		t.Errorf("output = %q", got)
	}
}

func TestNotifyCmd_DefaultReminderTime(t *testing.T) {
	ctx, out := setupReminderContext(t, context.Background(), func(s *models.Settings) {
		s.DefaultReminderTime = "20:00"
	})

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "🔔 약 먹기 (매일)") || !strings.Contains(out.String(), "2 reminder(s)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestNotifyCmd_OneShotIgnoresGracePeriod(t *testing.T) {
	ctx, out := setupReminderContext(t, context.Background(), nil)
	ctx.Now = func() time.Time { return time.Date(2025, 1, 15, 20, 5, 0, 0, time.UTC) }

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "0 reminder(s) due now.") {
		t.Errorf("late one-shot run sent a reminder: %q", out.String())
	}
}

func TestNotifyCmd_Disabled(t *testing.T) {
	ctx, out := setupReminderContext(t, context.Background(), func(s *models.Settings) {
		s.NotificationsEnabled = false
	})

	if err := (&NotifyCmd{DryRun: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Notifications are disabled in settings.") {
		t.Errorf("output = %q", out.String())
	}
	if strings.Contains(out.String(), "🔔") {
		t.Errorf("disabled notifications still sent: %q", out.String())
	}
}

func TestRemindCmd_StopsWithContext(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, out := setupReminderContext(t, parent, nil)
	cancel()

	done := make(chan error, 1)
	go func() { done <- (&RemindCmd{DryRun: true}).Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("remind returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("remind did not stop after the context was cancelled")
	}
	if !strings.Contains(out.String(), "Watching for routine reminders.") {
		t.Errorf("output = %q", out.String())
	}
}
