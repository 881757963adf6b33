// Package reminder sends a notification when a routine that is due today
// reaches its reminder time.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/ilsang/internal/constants"
	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/models"
)

type Sender interface {
	Notify(text string) error
}

// RoutineSource lists the routines due on a day. *routine.Service satisfies
// it.
type RoutineSource interface {
	DueOn(ctx context.Context, day time.Time) ([]models.Routine, error)
}

type Config struct {
	Location            *time.Location
	DefaultReminderTime string        // HH:MM for routines without their own time; empty disables them
	GracePeriod         time.Duration // how late a reminder may still go out
}

type Scheduler struct {
	cron     *cron.Cron
	routines RoutineSource
	sender   Sender
	cfg      Config
	now      func() time.Time

	mu      sync.Mutex
	sentDay string
	sent    map[string]bool
}

func New(routines RoutineSource, sender Sender, cfg Config) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = 0
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location)),
		routines: routines,
		sender:   sender,
		cfg:      cfg,
		now:      time.Now,
		sent:     make(map[string]bool),
	}
}

// SetClock replaces time.Now for Tick.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start registers the minute tick and blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(constants.ReminderTickSpec, func() {
		if _, err := s.Tick(ctx); err != nil {
			logger.Error("Reminder tick failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add reminder check: %w", err)
	}

	s.cron.Start()
	logger.Info("Reminder scheduler started", "tz", s.cfg.Location.String(), "default_time", s.cfg.DefaultReminderTime, "grace", s.cfg.GracePeriod)

	<-ctx.Done()
	return nil
}

// Stop halts the cron and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Reminder scheduler stopped")
}

// Tick sends the reminders that are due at the current minute and returns
// how many were sent. A reminder whose send fails is retried on later ticks
// while it is still inside the grace period.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	now := s.now().In(s.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)

	due, err := s.routines.DueOn(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("listing due routines: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dayKey := today.Format(constants.DateFormat)
	if s.sentDay != dayKey {
		s.sentDay = dayKey
		s.sent = make(map[string]bool)
	}

	sent := 0
	var errs []error
	for _, r := range due {
		if s.sent[r.ID] {
			continue
		}
		at, ok := s.reminderAt(r, today)
		if !ok || !s.inWindow(now, at) {
			continue
		}

		if err := s.sender.Notify(Message(r)); err != nil {
			errs = append(errs, fmt.Errorf("routine %s: %w", r.ID, err))
			continue
		}
		s.sent[r.ID] = true
		sent++
		logger.Debug("Reminder sent", "routine", r.ID, "at", at.Format(constants.TimeFormat))
	}

	return sent, errors.Join(errs...)
}

// reminderAt resolves the routine's reminder time on day.
func (s *Scheduler) reminderAt(r models.Routine, day time.Time) (time.Time, bool) {
	hhmm := r.ReminderTime
	if hhmm == "" {
		hhmm = s.cfg.DefaultReminderTime
	}
	if hhmm == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(constants.TimeFormat, hhmm)
	if err != nil {
		logger.Warn("Invalid reminder time", "routine", r.ID, "time", hhmm)
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, s.cfg.Location), true
}

// inWindow is true from the reminder minute until the grace period has
// passed.
func (s *Scheduler) inWindow(now, at time.Time) bool {
	late := now.Sub(at)
	return late >= 0 && late < s.cfg.GracePeriod+time.Minute
}

// Message is the notification text for a routine.
func Message(r models.Routine) string {
	return fmt.Sprintf("%s (%s)", r.Name, r.RepeatCycle)
}
