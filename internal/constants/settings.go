package constants

const (
	// Setting keys
	SettingTimezone               = "timezone"
	SettingNotificationsEnabled   = "notifications_enabled"
	SettingDefaultReminderTime    = "default_reminder_time"
	SettingReminderGracePeriodMin = "reminder_grace_period_min"

	// Default Settings Values
	DefaultTimezone               = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled   = true
	DefaultReminderTime           = "08:00"
	DefaultReminderGracePeriodMin = 10
)
