package storage

import (
	"time"

	"github.com/coderozzy/daily-habits-final/internal/models"
)

// Provider is the persistence contract shared by the SQLite and PostgreSQL
// stores.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error

	// Devices (sync server)
	SaveDevice(models.Device) error
	GetDevice(deviceID string) (models.Device, error)
	GetDeviceByAPIKey(apiKey string) (models.Device, error)
	TouchDeviceSync(deviceID string, at time.Time) error

	// Metrics (sync server)
	SaveMetrics(models.MetricsSnapshot) error
	GetMetrics(deviceID string) (models.MetricsSnapshot, error)

	// Utils
	GetConfigPath() string
}
