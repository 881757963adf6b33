package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/ilsang/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Unknown keys are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingDefaultReminderTime:
			settings.DefaultReminderTime = value
		case constants.SettingReminderGracePeriodMin:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingReminderGracePeriodMin, err)
			}
			settings.ReminderGracePeriodMin = n
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:               settings.Timezone,
		constants.SettingNotificationsEnabled:   strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingDefaultReminderTime:    settings.DefaultReminderTime,
		constants.SettingReminderGracePeriodMin: strconv.Itoa(settings.ReminderGracePeriodMin),
	}
}

// DefaultSettings returns the settings written by a fresh init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:               constants.DefaultTimezone,
		NotificationsEnabled:   constants.DefaultNotificationsEnabled,
		DefaultReminderTime:    constants.DefaultReminderTime,
		ReminderGracePeriodMin: constants.DefaultReminderGracePeriodMin,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultReminderTime == "" {
		settings.DefaultReminderTime = constants.DefaultReminderTime
	}
	if settings.ReminderGracePeriodMin < 0 {
		settings.ReminderGracePeriodMin = 0
	}
}
