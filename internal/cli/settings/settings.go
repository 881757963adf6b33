package settings

import (
	"fmt"
	"time"

	"github.com/julianstephens/ilsang/internal/cli"
	"github.com/julianstephens/ilsang/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string `help:"IANA timezone used to decide which day it is (e.g. Asia/Seoul, or Local)."`
	NotificationsEnabled *bool   `help:"Enable or disable routine reminders."`
	DefaultReminderTime  *string `help:"Reminder time (HH:MM) for routines without their own."`
	ReminderGracePeriod  *int    `name:"reminder-grace-period" help:"Minutes a missed reminder may still be sent."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:              %s\n", settings.Timezone)
		ctx.Println("\nReminder Settings:")
		ctx.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		ctx.Printf("  Default Reminder Time: %s\n", settings.DefaultReminderTime)
		ctx.Printf("  Grace Period:          %d min\n", settings.ReminderGracePeriodMin)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if _, err := cli.LoadLocation(*c.Timezone); err != nil {
			return err
		}
		settings.Timezone = *c.Timezone
		if settings.Timezone == "" {
			settings.Timezone = constants.DefaultTimezone
		}
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.DefaultReminderTime != nil {
		if _, err := time.Parse(constants.TimeFormat, *c.DefaultReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time %q (expected HH:MM)", *c.DefaultReminderTime)
		}
		settings.DefaultReminderTime = *c.DefaultReminderTime
		updated = true
	}
	if c.ReminderGracePeriod != nil {
		if *c.ReminderGracePeriod < 0 {
			return fmt.Errorf("grace period cannot be negative")
		}
		settings.ReminderGracePeriodMin = *c.ReminderGracePeriod
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(ctx.Context(), settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
