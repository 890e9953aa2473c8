package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/models"
)

func (s *Store) SaveDevice(device models.Device) error {
	lastSync := ""
	if !device.LastSync.IsZero() {
		lastSync = device.LastSync.Format(time.RFC3339)
	}

	_, err := s.db.Exec(`
		INSERT INTO devices (device_id, api_key, api_key_expires_at, model,
		                     os_name, os_version, created_at, last_sync)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			api_key = excluded.api_key,
			api_key_expires_at = excluded.api_key_expires_at,
			model = excluded.model,
			os_name = excluded.os_name,
			os_version = excluded.os_version,
			last_sync = excluded.last_sync`,
		device.DeviceID, device.APIKey, device.APIKeyExpiresAt.Format(time.RFC3339),
		device.Model, device.OSName, device.OSVersion,
		device.CreatedAt.Format(time.RFC3339), lastSync)
	return err
}

func (s *Store) GetDevice(deviceID string) (models.Device, error) {
	row := s.db.QueryRow(`
		SELECT device_id, api_key, api_key_expires_at, model, os_name,
		       os_version, created_at, last_sync
		FROM devices WHERE device_id = ?`, deviceID)
	return scanDevice(row)
}

func (s *Store) GetDeviceByAPIKey(apiKey string) (models.Device, error) {
	row := s.db.QueryRow(`
		SELECT device_id, api_key, api_key_expires_at, model, os_name,
		       os_version, created_at, last_sync
		FROM devices WHERE api_key = ?`, apiKey)
	return scanDevice(row)
}

func (s *Store) TouchDeviceSync(deviceID string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE devices SET last_sync = ? WHERE device_id = ?`,
		at.Format(time.RFC3339), deviceID)
	return err
}

func (s *Store) SaveMetrics(snapshot models.MetricsSnapshot) error {
	habits, err := json.Marshal(snapshot.Habits)
	if err != nil {
		return fmt.Errorf("failed to serialize habits: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO metrics (device_id, habits, synced_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			habits = excluded.habits,
			synced_at = excluded.synced_at`,
		snapshot.DeviceID, string(habits), snapshot.SyncedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetMetrics(deviceID string) (models.MetricsSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT device_id, habits, synced_at FROM metrics WHERE device_id = ?`, deviceID)

	var snapshot models.MetricsSnapshot
	var habits, syncedAt string
	if err := row.Scan(&snapshot.DeviceID, &habits, &syncedAt); err != nil {
		return models.MetricsSnapshot{}, err
	}

	if err := json.Unmarshal([]byte(habits), &snapshot.Habits); err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("failed to parse habits: %w", err)
	}
	var err error
	snapshot.SyncedAt, err = time.Parse(time.RFC3339, syncedAt)
	if err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("failed to parse synced_at: %w", err)
	}

	return snapshot, nil
}

func scanDevice(row rowScanner) (models.Device, error) {
	var d models.Device
	var expiresAt, createdAt, lastSync string

	err := row.Scan(&d.DeviceID, &d.APIKey, &expiresAt, &d.Model,
		&d.OSName, &d.OSVersion, &createdAt, &lastSync)
	if err != nil {
		return models.Device{}, err
	}

	d.APIKeyExpiresAt, err = time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return models.Device{}, fmt.Errorf("failed to parse api_key_expires_at: %w", err)
	}
	d.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Device{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lastSync != "" {
		d.LastSync, err = time.Parse(time.RFC3339, lastSync)
		if err != nil {
			return models.Device{}, fmt.Errorf("failed to parse last_sync: %w", err)
		}
	}

	return d, nil
}
