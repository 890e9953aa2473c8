package notify

import (
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

// relevantHabit is the projection of a habit onto the fields that affect
// scheduling. Completion history and streaks churn constantly and must never
// appear here; a change to them must not trigger a reschedule.
type relevantHabit struct {
	ID               string
	Name             string
	Frequency        constants.Frequency
	CustomDays       []string
	NotificationTime string
}

// fingerprintHabits hashes the scheduling-relevant projection of the habit
// collection with a stable field order.
func fingerprintHabits(habits []models.Habit) (uint64, error) {
	view := make([]relevantHabit, len(habits))
	for i, h := range habits {
		view[i] = relevantHabit{
			ID:               h.ID,
			Name:             h.Name,
			Frequency:        h.Frequency,
			CustomDays:       h.CustomDays,
			NotificationTime: h.NotificationTime,
		}
	}
	return hashstructure.Hash(view, hashstructure.FormatV2, nil)
}

// PermissionResult is the envelope returned by RequestPermission.
type PermissionResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SyncResult is the envelope returned by the manager's bulk operations.
type SyncResult struct {
	Success bool                `json:"success"`
	Result  *models.BatchResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Manager owns notification state for the application: the permission status
// machine, the last reconcile outcome, and the derived scheduled count. It
// watches the habit collection through OnHabitsChanged and reconciles only
// when scheduling-relevant fields actually changed, so completion toggles
// never cause a reschedule storm.
//
// All operations serialize behind one mutex; no two habits' scheduling ever
// overlaps.
type Manager struct {
	mu        sync.Mutex
	backend   Backend
	scheduler *Scheduler
	enabled   bool

	status         constants.PermissionStatus
	initializing   bool
	lastSync       *models.BatchResult
	totalScheduled int

	fingerprint    uint64
	hasFingerprint bool
}

// NewManager returns a Manager over the given backend. When enabled is
// false, every operation short-circuits with a "not supported" result.
func NewManager(backend Backend, enabled bool, opts ...SchedulerOption) *Manager {
	return &Manager{
		backend:   backend,
		scheduler: NewScheduler(backend, opts...),
		enabled:   enabled,
		status:    constants.PermissionUnknown,
	}
}

// Start initializes the manager: it reads the current permission status and,
// when already granted, performs one full reconcile of the given habits.
func (m *Manager) Start(habits []models.Habit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}

	m.initializing = true
	defer func() { m.initializing = false }()

	m.status = m.backend.Permission()
	if m.status != constants.PermissionGranted {
		logger.Info("Notifications not active at startup", "status", m.status)
		return
	}

	m.reconcileLocked(habits)
}

// OnHabitsChanged reconciles schedules when the habit collection's
// scheduling-relevant fingerprint changed. Permission must be granted and no
// initialization may be in flight; otherwise the change is left for the next
// sync.
func (m *Manager) OnHabitsChanged(habits []models.Habit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}

	if m.status != constants.PermissionGranted || m.initializing {
		return
	}

	fp, err := fingerprintHabits(habits)
	if err != nil {
		logger.Error("Failed to fingerprint habits", "error", err)
		return
	}
	if m.hasFingerprint && fp == m.fingerprint {
		return
	}

	m.reconcileLocked(habits)
}

// reconcileLocked runs setup + full reschedule + count refresh and records
// the resulting fingerprint. Callers hold m.mu.
func (m *Manager) reconcileLocked(habits []models.Habit) {
	if err := m.backend.Setup(); err != nil {
		logger.Error("Notification backend setup failed", "backend", m.backend.Name(), "error", err)
		return
	}

	if len(habits) == 0 {
		m.totalScheduled = 0
	} else {
		result := m.scheduler.ScheduleAll(habits)
		m.lastSync = &result
		m.updateCountLocked(habits)
	}

	if fp, err := fingerprintHabits(habits); err == nil {
		m.fingerprint = fp
		m.hasFingerprint = true
	}
}

// updateCountLocked recomputes how many habits have at least one scheduled
// notification. Callers hold m.mu.
func (m *Manager) updateCountLocked(habits []models.Habit) {
	entries, err := m.backend.List()
	if err != nil {
		logger.Warn("Failed to count scheduled notifications", "error", err)
		return
	}

	byHabit := make(map[string]bool, len(entries))
	for _, entry := range entries {
		byHabit[entry.HabitID] = true
	}

	count := 0
	for _, habit := range habits {
		if byHabit[habit.ID] {
			count++
		}
	}
	m.totalScheduled = count
}

// RequestPermission prompts for notification permission and, when granted,
// performs a full reconcile of the given habits. Once denied, the manager
// never auto-retries; only another explicit call here can move the status
// back toward granted.
func (m *Manager) RequestPermission(habits []models.Habit) PermissionResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return PermissionResult{Error: "Notifications not supported"}
	}

	status, err := m.backend.RequestPermission()
	m.status = status
	if err != nil {
		logger.Error("Failed to request notification permission", "error", err)
		return PermissionResult{Error: err.Error()}
	}

	if status != constants.PermissionGranted {
		return PermissionResult{Success: false}
	}

	if len(habits) > 0 {
		m.reconcileLocked(habits)
	}
	return PermissionResult{
		Success: true,
		Token:   m.backend.Name() + "-notifications-enabled",
	}
}

// SetEnabled turns reminder scheduling on or off at runtime, tracking the
// persisted notifications_enabled setting. Enabling reads the permission
// status and reconciles the given habits when already granted; disabling
// cancels this app's tracked notifications.
func (m *Manager) SetEnabled(enabled bool, habits []models.Habit) SyncResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled == enabled {
		return SyncResult{Success: true}
	}
	m.enabled = enabled

	if !enabled {
		m.lastSync = nil
		m.totalScheduled = 0
		m.hasFingerprint = false

		if len(habits) == 0 {
			return SyncResult{Success: true}
		}
		habitIDs := make([]string, len(habits))
		for i, habit := range habits {
			habitIDs[i] = habit.ID
		}
		result := m.scheduler.CancelAll(habitIDs)
		return SyncResult{Success: true, Result: &result}
	}

	m.status = m.backend.Permission()
	if m.status == constants.PermissionGranted {
		m.reconcileLocked(habits)
	}
	return SyncResult{Success: true}
}

// SyncAll forces a full reconcile regardless of the fingerprint.
func (m *Manager) SyncAll(habits []models.Habit) SyncResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return SyncResult{Error: "Notifications not supported"}
	}

	m.initializing = true
	defer func() { m.initializing = false }()

	if err := m.backend.Setup(); err != nil {
		return SyncResult{Error: err.Error()}
	}

	if len(habits) == 0 {
		m.totalScheduled = 0
		return SyncResult{Success: true, Result: &models.BatchResult{Successful: []string{}, Failed: []models.FailedHabit{}}}
	}

	result := m.scheduler.ScheduleAll(habits)
	m.lastSync = &result
	m.updateCountLocked(habits)

	if fp, err := fingerprintHabits(habits); err == nil {
		m.fingerprint = fp
		m.hasFingerprint = true
	}

	return SyncResult{Success: true, Result: &result}
}

// ClearAll cancels only this app's tracked habit notifications. With no
// habits it falls back to backend setup; the tray backend clears everything,
// while the local backend only purges stale and past-due entries, so
// still-future ones survive there.
func (m *Manager) ClearAll(habits []models.Habit) SyncResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return SyncResult{Error: "Notifications not supported"}
	}

	if len(habits) == 0 {
		if err := m.backend.Setup(); err != nil {
			return SyncResult{Error: err.Error()}
		}
		m.lastSync = nil
		m.totalScheduled = 0
		return SyncResult{Success: true}
	}

	habitIDs := make([]string, len(habits))
	for i, habit := range habits {
		habitIDs[i] = habit.ID
	}

	result := m.scheduler.CancelAll(habitIDs)
	m.lastSync = nil
	m.totalScheduled = 0
	return SyncResult{Success: true, Result: &result}
}

// ClearAllForce delegates to the backend's global cancel-all, clearing
// everything including notifications this app does not track.
func (m *Manager) ClearAllForce() SyncResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return SyncResult{Error: "Notifications not supported"}
	}

	result := m.scheduler.CancelAll(nil)
	m.lastSync = nil
	m.totalScheduled = 0
	return SyncResult{Success: true, Result: &result}
}

// UpdateCount recomputes the derived scheduled-habit count.
func (m *Manager) UpdateCount(habits []models.Habit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}
	m.updateCountLocked(habits)
}

// SendTest schedules an immediate one-shot test notification.
func (m *Manager) SendTest() SyncResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return SyncResult{Error: "Notifications not supported"}
	}

	payload := Payload{
		Title: "Test Notification",
		Body:  "This is a test notification from " + constants.AppName,
	}
	if _, err := m.backend.ScheduleAfter(time.Second, payload, false); err != nil {
		return SyncResult{Error: err.Error()}
	}
	return SyncResult{Success: true}
}

// Status returns the current permission status.
func (m *Manager) Status() constants.PermissionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Initializing reports whether a startup or forced sync is in flight.
func (m *Manager) Initializing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializing
}

// LastSyncResult returns the last bulk reconcile outcome, or nil if none ran.
func (m *Manager) LastSyncResult() *models.BatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSync
}

// TotalScheduled returns the number of habits with at least one scheduled
// notification.
func (m *Manager) TotalScheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalScheduled
}

// Supported reports whether notifications are currently enabled.
func (m *Manager) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}
