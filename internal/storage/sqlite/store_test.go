package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitSeedsDefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if !settings.NotificationsEnabled {
		t.Error("default settings should enable notifications")
	}
	if settings.DefaultNotificationTime != constants.DefaultNotificationTime {
		t.Errorf("DefaultNotificationTime = %q, want %q",
			settings.DefaultNotificationTime, constants.DefaultNotificationTime)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load() on missing database should fail")
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{
		ID:               "h1",
		Name:             "Read",
		Frequency:        constants.FrequencyCustom,
		CustomDays:       []string{"mon", "wed"},
		NotificationTime: "09:00",
		CompletedDates:   []string{"2024-06-03"},
		Streak:           4,
		CreatedAt:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit() error = %v", err)
	}
	if got.Name != habit.Name || got.Frequency != habit.Frequency ||
		got.NotificationTime != habit.NotificationTime || got.Streak != habit.Streak {
		t.Errorf("GetHabit() = %+v, want %+v", got, habit)
	}
	if len(got.CustomDays) != 2 || got.CustomDays[0] != "mon" {
		t.Errorf("CustomDays = %v, want [mon wed]", got.CustomDays)
	}
	if !got.CreatedAt.Equal(habit.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, habit.CreatedAt)
	}

	byName, err := store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("GetHabitByName() error = %v", err)
	}
	if byName.ID != "h1" {
		t.Errorf("GetHabitByName().ID = %q, want h1", byName.ID)
	}

	got.Streak = 5
	got.CompletedDates = append(got.CompletedDates, "2024-06-04")
	if err := store.UpdateHabit(got); err != nil {
		t.Fatalf("UpdateHabit() error = %v", err)
	}
	updated, _ := store.GetHabit("h1")
	if updated.Streak != 5 || len(updated.CompletedDates) != 2 {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}
	if _, err := store.GetHabit("h1"); err == nil {
		t.Error("GetHabit() after delete should fail")
	}
}

func TestUpdateMissingHabit(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateHabit(models.Habit{ID: "nope", Name: "x", Frequency: constants.FrequencyDaily, NotificationTime: "09:00"})
	if err == nil {
		t.Fatal("UpdateHabit() on missing habit should fail")
	}
}

func TestGetAllHabitsEmpty(t *testing.T) {
	store := setupTestStore(t)

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if habits == nil || len(habits) != 0 {
		t.Errorf("GetAllHabits() = %v, want empty non-nil slice", habits)
	}
}

func TestDeviceRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	device := models.Device{
		DeviceID:        "dev1",
		APIKey:          "key1",
		APIKeyExpiresAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Model:           "Pixel",
		OSName:          "android",
		OSVersion:       "14",
		CreatedAt:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.SaveDevice(device); err != nil {
		t.Fatalf("SaveDevice() error = %v", err)
	}

	got, err := store.GetDevice("dev1")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if got.APIKey != "key1" || !got.APIKeyExpiresAt.Equal(device.APIKeyExpiresAt) {
		t.Errorf("GetDevice() = %+v, want %+v", got, device)
	}
	if !got.LastSync.IsZero() {
		t.Errorf("LastSync = %v, want zero before first sync", got.LastSync)
	}

	byKey, err := store.GetDeviceByAPIKey("key1")
	if err != nil || byKey.DeviceID != "dev1" {
		t.Errorf("GetDeviceByAPIKey() = %+v, %v", byKey, err)
	}

	at := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	if err := store.TouchDeviceSync("dev1", at); err != nil {
		t.Fatalf("TouchDeviceSync() error = %v", err)
	}
	touched, _ := store.GetDevice("dev1")
	if !touched.LastSync.Equal(at) {
		t.Errorf("LastSync = %v, want %v", touched.LastSync, at)
	}

	// Key rotation replaces the stored key.
	device.APIKey = "key2"
	if err := store.SaveDevice(device); err != nil {
		t.Fatalf("SaveDevice() rotation error = %v", err)
	}
	if _, err := store.GetDeviceByAPIKey("key1"); err == nil {
		t.Error("old API key still resolves after rotation")
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	snapshot := models.MetricsSnapshot{
		DeviceID: "dev1",
		Habits: []models.Habit{
			{ID: "h1", Name: "Read", Frequency: constants.FrequencyDaily, NotificationTime: "09:00", Streak: 3},
		},
		SyncedAt: time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
	}
	if err := store.SaveMetrics(snapshot); err != nil {
		t.Fatalf("SaveMetrics() error = %v", err)
	}

	got, err := store.GetMetrics("dev1")
	if err != nil {
		t.Fatalf("GetMetrics() error = %v", err)
	}
	if len(got.Habits) != 1 || got.Habits[0].Streak != 3 {
		t.Errorf("GetMetrics() = %+v, want one habit with streak 3", got)
	}

	// Upsert replaces the snapshot.
	snapshot.Habits = nil
	snapshot.SyncedAt = snapshot.SyncedAt.Add(time.Hour)
	if err := store.SaveMetrics(snapshot); err != nil {
		t.Fatalf("SaveMetrics() upsert error = %v", err)
	}
	updated, _ := store.GetMetrics("dev1")
	if len(updated.Habits) != 0 {
		t.Errorf("upsert kept stale habits: %v", updated.Habits)
	}
}
