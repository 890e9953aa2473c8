// Package notify implements reminder scheduling for habits: computing future
// firing instants, keeping platform notifications in sync with habit data,
// and reconciling idempotently when habits change. Two backends carry the
// platform-specific parts; everything above them is backend-agnostic.
package notify

import (
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
)

// Payload is the displayable content of one notification, tagged with the
// owning habit so later cancellation can filter by it. HabitName is a display
// snapshot carried for backends that persist and replay schedules.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	HabitID   string `json:"habitId"`
	HabitName string `json:"habitName,omitempty"`
}

// notificationBody renders the reminder text for a habit.
func notificationBody(habitName string) string {
	return "Time to work on your habit: " + habitName
}

// Entry identifies one currently scheduled notification on a backend.
type Entry struct {
	ID      string `json:"id"`
	HabitID string `json:"habitId"`
}

// Backend abstracts the platform notification scheduler. The tray backend
// delegates to an OS-level scheduler daemon; the local backend arms
// in-process timers backed by a durable store. Callers never branch on the
// platform themselves; only backend implementations do.
//
// Implementations convert platform failures into returned errors; they never
// panic past their own boundary.
type Backend interface {
	// Name identifies the backend for logs and diagnostics.
	Name() string

	// RequestPermission prompts for notification permission and returns the
	// resulting status.
	RequestPermission() (constants.PermissionStatus, error)

	// Permission returns the current permission status without prompting.
	Permission() constants.PermissionStatus

	// ScheduleAfter schedules one notification to fire after delay. A
	// non-positive delay is a logged no-op and returns an empty id with no
	// error. Backends without a repeating primitive ignore repeats.
	ScheduleAfter(delay time.Duration, payload Payload, repeats bool) (string, error)

	// Cancel removes the scheduled notification with the given backend id.
	// Cancelling an id that no longer exists is not an error.
	Cancel(id string) error

	// List enumerates all currently scheduled notifications.
	List() ([]Entry, error)

	// CancelAll removes every scheduled notification, including ones not
	// owned by any habit.
	CancelAll() error

	// Setup prepares the backend at startup: the tray backend clears any
	// leftover schedules, the local backend purges stale persisted entries
	// and re-arms timers for still-future ones.
	Setup() error
}
