package constants

import "time"

// MediaOwnerType identifies which feature a media row belongs to
type MediaOwnerType string

// MediaKind represents the kind of attached media
type MediaKind string

const (
	AppName            = "ilsang"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/ilsang/ilsang.db"
	DefaultConfigFile  = "~/.config/ilsang/config.yaml"
	Version            = "v0.3.0"

	// Environment variables
	EnvConfig       = "ILSANG_CONFIG"
	EnvDebug        = "ILSANG_DEBUG"
	EnvDBConnection = "ILSANG_DB_CONNECTION"
	EnvConfigFile   = "ILSANG_CONFIG_FILE"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Logging constants
	LogDirName    = "logs"
	LogFileName   = "ilsang.log"
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "ilsang-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyRequestTimeout   = 5 * time.Second
	NotifierLockfileName   = "ilsang-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.ilsang"
	TrayExecutablePrefix   = "ilsang-tray"
	TraySecretHeader       = "X-Ilsang-Secret"

	// Reminder constants
	ReminderTickSpec = "* * * * *"

	// Statistics window: how far back due days are counted
	MaxStatsDays = 3660

	// Media owner types
	MediaOwnerRoutine MediaOwnerType = "routine"
	MediaOwnerDiary   MediaOwnerType = "diary"

	// Media kinds
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
)
