package models

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled    bool   `json:"notifications_enabled"`     // whether reminder notifications are enabled
	DefaultNotificationTime string `json:"default_notification_time"` // HH:MM substituted when a habit has no time
	DefaultFrequency        string `json:"default_frequency"`         // frequency substituted when a habit has none
	Timezone                string `json:"timezone"`                  // IANA timezone name, or "Local" for system timezone
	ServerURL               string `json:"server_url"`                // base URL of the sync server, empty disables sync
	DeviceID                string `json:"device_id"`                 // stable identifier for this installation
}
