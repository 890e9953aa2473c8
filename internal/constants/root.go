package constants

import "time"

// Frequency represents how often a habit recurs
type Frequency string

// PermissionStatus represents the notification permission state
type PermissionStatus string

const (
	AppName           = "daily-habits"
	Version           = "v0.3.0"
	DefaultConfigPath = "~/.config/daily-habits/habits.db"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Keyring constants
	KeyringAPIKeyUser = "device-api-key"

	// Tray scheduler constants
	TrayLockfileName  = "daily-habits-tray.lock"
	TrayAppIdentifier = "com.coderozzy.daily-habits"
	TrayExecutable    = "daily-habits-tray"

	// Notification constants
	NotificationTitle = "Habit Reminder"
	// StaleEntryMaxAge is how long a persisted schedule entry may sit in the
	// fallback store before startup cleanup discards it.
	StaleEntryMaxAge = 24 * time.Hour
	LocalStoreDirName = "scheduled"

	// Frequency constants
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"

	// Permission states
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
	PermissionUnknown PermissionStatus = "unknown"

	// Habit defaults
	DefaultNotificationTime = "09:00"
	DefaultFrequency        = FrequencyDaily

	// Sync server constants
	DefaultServerAddr = ":3000"
	APIKeyLength      = 32
	APIKeyTTL         = 30 * 24 * time.Hour
)

// WeeklyAnchorDay is the weekday all weekly reminders land on. The anchor is
// fixed and not user-configurable.
const WeeklyAnchorDay = time.Monday
