package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

type Store struct {
	path string
	db   *sql.DB
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize default settings if not present or incomplete
	settings, err := s.GetSettings()
	if err != nil || settings.DefaultNotificationTime == "" {
		defaults := models.Settings{
			NotificationsEnabled:    true,
			DefaultNotificationTime: constants.DefaultNotificationTime,
			DefaultFrequency:        string(constants.DefaultFrequency),
			Timezone:                "Local",
		}
		if err := s.SaveSettings(defaults); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) createSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			notifications_enabled INTEGER NOT NULL DEFAULT 1,
			default_notification_time TEXT NOT NULL DEFAULT '',
			default_frequency TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT 'Local',
			server_url TEXT NOT NULL DEFAULT '',
			device_id TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			frequency TEXT NOT NULL,
			custom_days TEXT NOT NULL DEFAULT '[]',
			notification_time TEXT NOT NULL,
			completed_dates TEXT NOT NULL DEFAULT '[]',
			streak INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			device_id TEXT PRIMARY KEY,
			api_key TEXT NOT NULL UNIQUE,
			api_key_expires_at TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT 'Unknown',
			os_name TEXT NOT NULL DEFAULT 'Unknown',
			os_version TEXT NOT NULL DEFAULT 'Unknown',
			created_at TEXT NOT NULL,
			last_sync TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			device_id TEXT PRIMARY KEY,
			habits TEXT NOT NULL DEFAULT '[]',
			synced_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetSettings() (models.Settings, error) {
	row := s.db.QueryRow(`
		SELECT notifications_enabled, default_notification_time, default_frequency,
		       timezone, server_url, device_id
		FROM settings WHERE id = 1`)

	var settings models.Settings
	var enabled int
	err := row.Scan(&enabled, &settings.DefaultNotificationTime, &settings.DefaultFrequency,
		&settings.Timezone, &settings.ServerURL, &settings.DeviceID)
	if err != nil {
		return models.Settings{}, err
	}
	settings.NotificationsEnabled = enabled != 0

	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	enabled := 0
	if settings.NotificationsEnabled {
		enabled = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO settings (id, notifications_enabled, default_notification_time,
		                      default_frequency, timezone, server_url, device_id)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			notifications_enabled = excluded.notifications_enabled,
			default_notification_time = excluded.default_notification_time,
			default_frequency = excluded.default_frequency,
			timezone = excluded.timezone,
			server_url = excluded.server_url,
			device_id = excluded.device_id`,
		enabled, settings.DefaultNotificationTime, settings.DefaultFrequency,
		settings.Timezone, settings.ServerURL, settings.DeviceID)
	return err
}
