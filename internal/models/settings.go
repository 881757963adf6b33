package models

// Settings represents application-wide settings
type Settings struct {
	Timezone               string `json:"timezone"`                  // IANA timezone name, or "Local" for the system timezone
	NotificationsEnabled   bool   `json:"notifications_enabled"`     // whether routine reminders are sent
	DefaultReminderTime    string `json:"default_reminder_time"`     // HH:MM used for routines without their own reminder time
	ReminderGracePeriodMin int    `json:"reminder_grace_period_min"` // how late a missed reminder may still be sent
}
