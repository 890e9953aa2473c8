package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/models"
)

func (s *Store) SaveDevice(device models.Device) error {
	var lastSync any
	if !device.LastSync.IsZero() {
		lastSync = device.LastSync
	}

	_, err := s.db.Exec(`
		INSERT INTO devices (device_id, api_key, api_key_expires_at, model,
		                     os_name, os_version, created_at, last_sync)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (device_id) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			api_key_expires_at = EXCLUDED.api_key_expires_at,
			model = EXCLUDED.model,
			os_name = EXCLUDED.os_name,
			os_version = EXCLUDED.os_version,
			last_sync = EXCLUDED.last_sync`,
		device.DeviceID, device.APIKey, device.APIKeyExpiresAt,
		device.Model, device.OSName, device.OSVersion, device.CreatedAt, lastSync)
	return err
}

func (s *Store) GetDevice(deviceID string) (models.Device, error) {
	row := s.db.QueryRow(`
		SELECT device_id, api_key, api_key_expires_at, model, os_name,
		       os_version, created_at, last_sync
		FROM devices WHERE device_id = $1`, deviceID)
	return scanDevice(row)
}

func (s *Store) GetDeviceByAPIKey(apiKey string) (models.Device, error) {
	row := s.db.QueryRow(`
		SELECT device_id, api_key, api_key_expires_at, model, os_name,
		       os_version, created_at, last_sync
		FROM devices WHERE api_key = $1`, apiKey)
	return scanDevice(row)
}

func (s *Store) TouchDeviceSync(deviceID string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE devices SET last_sync = $1 WHERE device_id = $2`,
		at, deviceID)
	return err
}

func (s *Store) SaveMetrics(snapshot models.MetricsSnapshot) error {
	habits, err := json.Marshal(snapshot.Habits)
	if err != nil {
		return fmt.Errorf("failed to serialize habits: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO metrics (device_id, habits, synced_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			habits = EXCLUDED.habits,
			synced_at = EXCLUDED.synced_at`,
		snapshot.DeviceID, string(habits), snapshot.SyncedAt)
	return err
}

func (s *Store) GetMetrics(deviceID string) (models.MetricsSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT device_id, habits, synced_at FROM metrics WHERE device_id = $1`, deviceID)

	var snapshot models.MetricsSnapshot
	var habits string
	if err := row.Scan(&snapshot.DeviceID, &habits, &snapshot.SyncedAt); err != nil {
		return models.MetricsSnapshot{}, err
	}

	if err := json.Unmarshal([]byte(habits), &snapshot.Habits); err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("failed to parse habits: %w", err)
	}
	return snapshot, nil
}

func scanDevice(row rowScanner) (models.Device, error) {
	var d models.Device
	var lastSync sql.NullTime

	err := row.Scan(&d.DeviceID, &d.APIKey, &d.APIKeyExpiresAt, &d.Model,
		&d.OSName, &d.OSVersion, &d.CreatedAt, &lastSync)
	if err != nil {
		return models.Device{}, err
	}

	if lastSync.Valid {
		d.LastSync = lastSync.Time
	}
	return d, nil
}
