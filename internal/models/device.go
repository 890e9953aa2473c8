package models

import "time"

// Device is a registered client device known to the sync server.
type Device struct {
	DeviceID        string    `json:"deviceId"`
	APIKey          string    `json:"apiKey"`
	APIKeyExpiresAt time.Time `json:"apiKeyExpiresAt"`
	Model           string    `json:"model"`
	OSName          string    `json:"osName"`
	OSVersion       string    `json:"osVersion"`
	CreatedAt       time.Time `json:"createdAt"`
	LastSync        time.Time `json:"lastSync"`
}

// APIKeyExpired reports whether the device's API key is past its expiry.
func (d *Device) APIKeyExpired() bool {
	return time.Now().After(d.APIKeyExpiresAt)
}

// MetricsSnapshot is the per-device habit snapshot stored by the sync server.
type MetricsSnapshot struct {
	DeviceID string    `json:"deviceId"`
	Habits   []Habit   `json:"habits"`
	SyncedAt time.Time `json:"syncedAt"`
}
