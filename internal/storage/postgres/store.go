package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	return &Store{connStr: connStr}
}

// validateConnStr rejects connection strings with embedded passwords;
// credentials belong in the environment or .pgpass.
func (s *Store) validateConnStr() error {
	u, err := url.Parse(s.connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}

func (s *Store) open() error {
	if err := s.validateConnStr(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if err := s.createSchema(); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

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
	return s.open()
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
	// Strip any query parameters so the connection string shown in
	// diagnostics stays short.
	if idx := strings.IndexByte(s.connStr, '?'); idx >= 0 {
		return s.connStr[:idx]
	}
	return s.connStr
}

func (s *Store) createSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
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
			custom_days JSONB NOT NULL DEFAULT '[]',
			notification_time TEXT NOT NULL,
			completed_dates JSONB NOT NULL DEFAULT '[]',
			streak INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS devices (
			device_id TEXT PRIMARY KEY,
			api_key TEXT NOT NULL UNIQUE,
			api_key_expires_at TIMESTAMPTZ NOT NULL,
			model TEXT NOT NULL DEFAULT 'Unknown',
			os_name TEXT NOT NULL DEFAULT 'Unknown',
			os_version TEXT NOT NULL DEFAULT 'Unknown',
			created_at TIMESTAMPTZ NOT NULL,
			last_sync TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			device_id TEXT PRIMARY KEY,
			habits JSONB NOT NULL DEFAULT '[]',
			synced_at TIMESTAMPTZ NOT NULL
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
	err := row.Scan(&settings.NotificationsEnabled, &settings.DefaultNotificationTime,
		&settings.DefaultFrequency, &settings.Timezone, &settings.ServerURL, &settings.DeviceID)
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, notifications_enabled, default_notification_time,
		                      default_frequency, timezone, server_url, device_id)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			notifications_enabled = EXCLUDED.notifications_enabled,
			default_notification_time = EXCLUDED.default_notification_time,
			default_frequency = EXCLUDED.default_frequency,
			timezone = EXCLUDED.timezone,
			server_url = EXCLUDED.server_url,
			device_id = EXCLUDED.device_id`,
		settings.NotificationsEnabled, settings.DefaultNotificationTime,
		settings.DefaultFrequency, settings.Timezone, settings.ServerURL, settings.DeviceID)
	return err
}
