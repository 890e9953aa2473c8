package notify

import (
	"testing"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

func testHabits() []models.Habit {
	return []models.Habit{
		{ID: "h1", Name: "Read", Frequency: constants.FrequencyDaily, NotificationTime: "09:00"},
		{ID: "h2", Name: "Gym", Frequency: constants.FrequencyCustom, CustomDays: []string{"mon", "fri"}, NotificationTime: "07:30"},
	}
}

func newTestManager(backend *fakeBackend) *Manager {
	return NewManager(backend, true, WithSchedulerClock(func() time.Time { return testNow }))
}

func TestManagerStartReconcilesWhenGranted(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)

	m.Start(testHabits())

	if m.Status() != constants.PermissionGranted {
		t.Fatalf("Status() = %v, want granted", m.Status())
	}
	if m.TotalScheduled() != 2 {
		t.Errorf("TotalScheduled() = %d, want 2", m.TotalScheduled())
	}
	if backend.setupCalls != 1 {
		t.Errorf("setup calls = %d, want 1", backend.setupCalls)
	}
}

func TestManagerStartSkipsWithoutPermission(t *testing.T) {
	backend := newFakeBackend(testNow)
	backend.status = constants.PermissionUnknown
	m := newTestManager(backend)

	m.Start(testHabits())

	if len(backend.entries) != 0 {
		t.Errorf("%d notifications scheduled without permission", len(backend.entries))
	}
}

func TestManagerIgnoresCompletionChurn(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)

	habits := testHabits()
	m.Start(habits)
	setupAfterStart := backend.setupCalls

	// Completion history and streaks change; scheduling-relevant fields do not.
	habits[0].CompletedDates = []string{"2024-06-04"}
	habits[0].Streak = 7
	habits[1].CompletedDates = []string{"2024-06-03", "2024-06-04"}
	m.OnHabitsChanged(habits)

	if backend.setupCalls != setupAfterStart {
		t.Errorf("completion churn triggered a reconcile (setup calls %d -> %d)",
			setupAfterStart, backend.setupCalls)
	}
}

func TestManagerReschedulesOnRelevantChange(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)

	habits := testHabits()
	m.Start(habits)
	setupAfterStart := backend.setupCalls

	habits[0].NotificationTime = "21:00"
	m.OnHabitsChanged(habits)

	if backend.setupCalls != setupAfterStart+1 {
		t.Errorf("notification time change did not trigger a reconcile (setup calls %d -> %d)",
			setupAfterStart, backend.setupCalls)
	}
}

func TestManagerPermissionDeniedStaysDenied(t *testing.T) {
	backend := newFakeBackend(testNow)
	backend.status = constants.PermissionDenied
	m := newTestManager(backend)

	res := m.RequestPermission(testHabits())
	if res.Success {
		t.Fatal("RequestPermission() reported success for a denied prompt")
	}
	if m.Status() != constants.PermissionDenied {
		t.Errorf("Status() = %v, want denied", m.Status())
	}

	// Habit changes after a denial must not schedule anything.
	m.OnHabitsChanged(testHabits())
	if len(backend.entries) != 0 {
		t.Errorf("%d notifications scheduled after denial", len(backend.entries))
	}
}

func TestManagerRequestPermissionGrantedReconciles(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)

	res := m.RequestPermission(testHabits())
	if !res.Success {
		t.Fatalf("RequestPermission() failed: %s", res.Error)
	}
	if res.Token == "" {
		t.Error("Token is empty for a granted permission")
	}
	if m.TotalScheduled() != 2 {
		t.Errorf("TotalScheduled() = %d, want 2", m.TotalScheduled())
	}
}

func TestManagerSyncAllEmptyHabits(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)
	m.Start(testHabits())

	res := m.SyncAll(nil)
	if !res.Success {
		t.Fatalf("SyncAll() failed: %s", res.Error)
	}
	if m.TotalScheduled() != 0 {
		t.Errorf("TotalScheduled() = %d, want 0", m.TotalScheduled())
	}
}

func TestManagerClearAllForce(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)
	m.Start(testHabits())

	res := m.ClearAllForce()
	if !res.Success {
		t.Fatalf("ClearAllForce() failed: %s", res.Error)
	}
	if res.Result == nil || len(res.Result.Successful) != 1 || res.Result.Successful[0] != "all" {
		t.Errorf("Result = %+v, want successful [all]", res.Result)
	}
	if len(backend.entries) != 0 {
		t.Errorf("%d notifications remain after force clear", len(backend.entries))
	}
}

func TestManagerDisabled(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := NewManager(backend, false)

	if m.Supported() {
		t.Error("Supported() = true for disabled manager")
	}
	if res := m.SyncAll(testHabits()); res.Error == "" {
		t.Error("SyncAll() on disabled manager returned no error")
	}
	if res := m.RequestPermission(testHabits()); res.Error == "" {
		t.Error("RequestPermission() on disabled manager returned no error")
	}
}

func TestManagerSetEnabledTogglesScheduling(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := NewManager(backend, false, WithSchedulerClock(func() time.Time { return testNow }))
	habits := testHabits()

	// Disabled managers never schedule, no matter how habits change.
	m.OnHabitsChanged(habits)
	if len(backend.entries) != 0 {
		t.Fatalf("%d notifications scheduled while disabled", len(backend.entries))
	}

	res := m.SetEnabled(true, habits)
	if !res.Success {
		t.Fatalf("SetEnabled(true) failed: %s", res.Error)
	}
	if !m.Supported() {
		t.Error("Supported() = false after enabling")
	}
	if m.TotalScheduled() != 2 {
		t.Errorf("TotalScheduled() = %d, want 2 after enabling", m.TotalScheduled())
	}

	res = m.SetEnabled(false, habits)
	if !res.Success {
		t.Fatalf("SetEnabled(false) failed: %s", res.Error)
	}
	if len(backend.entries) != 0 {
		t.Errorf("%d notifications remain after disabling", len(backend.entries))
	}
	if m.TotalScheduled() != 0 {
		t.Errorf("TotalScheduled() = %d, want 0 after disabling", m.TotalScheduled())
	}
	if sync := m.SyncAll(habits); sync.Error == "" {
		t.Error("SyncAll() on a disabled manager returned no error")
	}
}

func TestManagerSetEnabledIsIdempotent(t *testing.T) {
	backend := newFakeBackend(testNow)
	m := newTestManager(backend)
	habits := testHabits()
	m.Start(habits)
	setupAfterStart := backend.setupCalls

	if res := m.SetEnabled(true, habits); !res.Success {
		t.Fatalf("SetEnabled(true) failed: %s", res.Error)
	}
	if backend.setupCalls != setupAfterStart {
		t.Errorf("enabling an enabled manager triggered a reconcile (setup calls %d -> %d)",
			setupAfterStart, backend.setupCalls)
	}
}

func TestManagerLastSyncResultSurfacesFailures(t *testing.T) {
	backend := newFakeBackend(testNow)
	backend.failHabits["h2"] = true
	m := newTestManager(backend)

	m.Start(testHabits())

	result := m.LastSyncResult()
	if result == nil {
		t.Fatal("LastSyncResult() = nil after reconcile")
	}
	if len(result.Failed) != 1 || result.Failed[0].HabitID != "h2" {
		t.Errorf("Failed = %v, want exactly h2", result.Failed)
	}
}
