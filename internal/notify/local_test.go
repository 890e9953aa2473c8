package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
)

func TestLocalBackendScheduleAndList(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))

	payload := Payload{Title: "t", Body: "b", HabitID: "h1", HabitName: "Read"}
	id, err := b.ScheduleAfter(time.Hour, payload, true)
	if err != nil {
		t.Fatalf("ScheduleAfter() error = %v", err)
	}
	if !strings.HasPrefix(id, "h1_") {
		t.Errorf("id = %q, want habit-prefixed key", id)
	}

	entries, err := b.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].HabitID != "h1" {
		t.Errorf("List() = %v, want one h1 entry", entries)
	}
}

func TestLocalBackendPastDelayIsNoOp(t *testing.T) {
	b := NewLocalBackend(t.TempDir(), WithClock(func() time.Time { return testNow }))

	id, err := b.ScheduleAfter(-time.Minute, Payload{HabitID: "h1"}, true)
	if err != nil {
		t.Fatalf("ScheduleAfter() error = %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty for past delay", id)
	}

	entries, _ := b.List()
	if len(entries) != 0 {
		t.Errorf("List() = %v, want empty", entries)
	}
}

func TestLocalBackendCancel(t *testing.T) {
	b := NewLocalBackend(t.TempDir(), WithClock(func() time.Time { return testNow }))

	id, _ := b.ScheduleAfter(time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)
	if err := b.Cancel(id); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	entries, _ := b.List()
	if len(entries) != 0 {
		t.Errorf("entry survived cancel: %v", entries)
	}

	// Cancelling an unknown id is not an error.
	if err := b.Cancel("h9_123"); err != nil {
		t.Errorf("Cancel(unknown) error = %v", err)
	}
}

func TestLocalBackendPermissionLifecycle(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))

	if got := b.Permission(); got != constants.PermissionUnknown {
		t.Fatalf("Permission() = %v before any request, want unknown", got)
	}

	status, err := b.RequestPermission()
	if err != nil {
		t.Fatalf("RequestPermission() error = %v", err)
	}
	if status != constants.PermissionGranted {
		t.Fatalf("RequestPermission() = %v, want granted", status)
	}

	// The decision survives a restart.
	b2 := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))
	if got := b2.Permission(); got != constants.PermissionGranted {
		t.Errorf("Permission() = %v after restart, want granted", got)
	}
}

func TestLocalBackendPermissionMarkerHiddenFromList(t *testing.T) {
	b := NewLocalBackend(t.TempDir(), WithClock(func() time.Time { return testNow }))

	if _, err := b.RequestPermission(); err != nil {
		t.Fatalf("RequestPermission() error = %v", err)
	}
	b.ScheduleAfter(time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)

	entries, err := b.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List() = %v, permission marker leaked into entries", entries)
	}
}

func TestLocalBackendCancelAllKeepsPermission(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))

	b.RequestPermission()
	b.ScheduleAfter(time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)
	b.ScheduleAfter(2*time.Hour, Payload{HabitID: "h2", HabitName: "Gym"}, true)

	if err := b.CancelAll(); err != nil {
		t.Fatalf("CancelAll() error = %v", err)
	}

	entries, _ := b.List()
	if len(entries) != 0 {
		t.Errorf("%d entries remain after CancelAll", len(entries))
	}
	if got := b.Permission(); got != constants.PermissionGranted {
		t.Errorf("Permission() = %v after CancelAll, want granted", got)
	}
}

func TestLocalBackendSetupRestoresFutureEntries(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))

	b.ScheduleAfter(2*time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)
	b.ScheduleAfter(30*time.Minute, Payload{HabitID: "h2", HabitName: "Gym"}, true)

	// Restart an hour later: h2's moment has passed, h1 is still ahead.
	later := testNow.Add(time.Hour)
	b2 := NewLocalBackend(dir, WithClock(func() time.Time { return later }))
	if err := b2.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	entries, err := b2.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].HabitID != "h1" {
		t.Errorf("List() after restart = %v, want only h1", entries)
	}
}

func TestLocalBackendSetupPurgesStaleEntries(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))

	// Far-future firing, but the entry itself will be older than the
	// staleness threshold by restart time.
	b.ScheduleAfter(100*time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)

	later := testNow.Add(constants.StaleEntryMaxAge + time.Hour)
	b2 := NewLocalBackend(dir, WithClock(func() time.Time { return later }))
	if err := b2.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	entries, _ := b2.List()
	if len(entries) != 0 {
		t.Errorf("stale entry survived Setup: %v", entries)
	}
}

func TestLocalBackendCancelAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))
	id, _ := b.ScheduleAfter(2*time.Hour, Payload{HabitID: "h1", HabitName: "Read"}, true)

	// A new process can cancel an entry scheduled by the old one.
	b2 := NewLocalBackend(dir, WithClock(func() time.Time { return testNow }))
	if err := b2.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := b2.Cancel(id); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	entries, _ := b2.List()
	if len(entries) != 0 {
		t.Errorf("entry survived cross-restart cancel: %v", entries)
	}
}

func TestLocalBackendFireHandler(t *testing.T) {
	fired := make(chan Payload, 1)
	b := NewLocalBackend(t.TempDir(), WithFireHandler(func(p Payload) {
		fired <- p
	}))

	if _, err := b.ScheduleAfter(10*time.Millisecond, Payload{HabitID: "h1", HabitName: "Read"}, true); err != nil {
		t.Fatalf("ScheduleAfter() error = %v", err)
	}

	select {
	case p := <-fired:
		if p.HabitID != "h1" {
			t.Errorf("fired payload habit = %q, want h1", p.HabitID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never fired")
	}

	// A fired entry is removed from the durable store.
	deadline := time.Now().Add(time.Second)
	for {
		entries, _ := b.List()
		if len(entries) == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("fired entry still persisted: %v", entries)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
