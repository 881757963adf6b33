package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/notifier"
	"github.com/julianstephens/ilsang/internal/reminder"
)

// NotifyCmd sends the reminders due at the current minute and exits. It is
// meant for an external scheduler (cron, launchd) that runs it every minute.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	s, ok, err := newScheduler(ctx, c.DryRun, false)
	if err != nil || !ok {
		return err
	}

	sent, err := s.Tick(ctx.Context())
	if c.DryRun {
		ctx.Printf("%d reminder(s) due now.\n", sent)
	}
	return err
}

// RemindCmd runs the reminder scheduler in the foreground until interrupted.
type RemindCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	s, ok, err := newScheduler(ctx, c.DryRun, true)
	if err != nil || !ok {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Println("Watching for routine reminders. Press Ctrl+C to stop.")
	if err := s.Start(runCtx); err != nil {
		return err
	}
	s.Stop()
	return nil
}

// newScheduler builds a reminder scheduler from the stored settings. ok is
// false when notifications are disabled. The grace period only applies to
// the long-running scheduler; a one-shot run fires on the exact minute so
// repeated runs never send twice.
func newScheduler(ctx *cli.Context, dryRun, withGrace bool) (*reminder.Scheduler, bool, error) {
	settings, err := ctx.Store.GetSettings(ctx.Context())
	if err != nil {
		return nil, false, fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		ctx.Println("Notifications are disabled in settings.")
		return nil, false, nil
	}

	svc, err := ctx.Routines()
	if err != nil {
		return nil, false, err
	}

	var sender reminder.Sender = notifier.New()
	if dryRun {
		sender = notifier.Writer{W: ctx.Out}
	}

	cfg := reminder.Config{
		Location:            svc.Location(),
		DefaultReminderTime: settings.DefaultReminderTime,
	}
	if withGrace {
		cfg.GracePeriod = time.Duration(settings.ReminderGracePeriodMin) * time.Minute
	}
	s := reminder.New(svc, sender, cfg)
	s.SetClock(ctx.Clock)
	logger.Debug("Reminder scheduler configured", "dry_run", dryRun, "grace", cfg.GracePeriod)
	return s, true, nil
}
