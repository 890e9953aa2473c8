package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

// permissionKey holds the persisted permission decision in the durable store,
// alongside the schedule entries. It never appears in List output.
const permissionKey = ".permission"

// LocalBackend is the fallback scheduler for environments without a tray
// daemon. Pending schedules live as in-process timers, mirrored into a
// durable key-value store keyed "<habitId>_<epochMillis>" so a process
// restart can re-arm anything still in the future and discard the rest.
//
// There is no repeating-timer primitive here, so the repeats flag is
// ignored: each call arms exactly one firing and callers re-invoke per
// occurrence.
//
// All store access is guarded by one mutex; a read-modify-write sequence
// over the store never has a suspension point in between.
type LocalBackend struct {
	mu     sync.Mutex
	d      *diskv.Diskv
	timers map[string]*time.Timer

	now    func() time.Time
	onFire func(Payload)
}

// LocalOption configures a LocalBackend.
type LocalOption func(*LocalBackend)

// WithClock overrides the backend's clock, used by tests to freeze "now".
func WithClock(now func() time.Time) LocalOption {
	return func(b *LocalBackend) { b.now = now }
}

// WithFireHandler overrides what happens when a timer fires. The default
// handler only logs; embedders hook their display mechanism in here.
func WithFireHandler(fn func(Payload)) LocalOption {
	return func(b *LocalBackend) { b.onFire = fn }
}

// NewLocalBackend returns a backend persisting schedules under baseDir.
func NewLocalBackend(baseDir string, opts ...LocalOption) *LocalBackend {
	b := &LocalBackend{
		d: diskv.New(diskv.Options{
			BasePath:     baseDir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		timers: make(map[string]*time.Timer),
		now:    time.Now,
	}
	b.onFire = func(p Payload) {
		logger.Info("Notification fired", "habitId", p.HabitID, "title", p.Title)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LocalBackend) Name() string { return "local" }

// RequestPermission persists a granted decision. When the durable store is
// not writable at all, the backend reports denied.
func (b *LocalBackend) RequestPermission() (constants.PermissionStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.d.Write(permissionKey, []byte(constants.PermissionGranted)); err != nil {
		return constants.PermissionDenied, fmt.Errorf("notification store unavailable: %w", err)
	}
	return constants.PermissionGranted, nil
}

// Permission reads the persisted decision. A store that cannot be read
// reports denied rather than unknown; an absent decision reports unknown.
func (b *LocalBackend) Permission() constants.PermissionStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.d.Has(permissionKey) {
		// Probe writability so a broken store surfaces as denied.
		if err := b.d.Write(".probe", []byte("ok")); err != nil {
			return constants.PermissionDenied
		}
		_ = b.d.Erase(".probe")
		return constants.PermissionUnknown
	}

	data, err := b.d.Read(permissionKey)
	if err != nil {
		return constants.PermissionDenied
	}
	switch constants.PermissionStatus(data) {
	case constants.PermissionGranted:
		return constants.PermissionGranted
	default:
		return constants.PermissionDenied
	}
}

// ScheduleAfter persists one pending schedule and arms a timer for it.
func (b *LocalBackend) ScheduleAfter(delay time.Duration, payload Payload, repeats bool) (string, error) {
	if delay <= 0 {
		logger.Warn("Scheduled time is in the past, skipping notification", "habitId", payload.HabitID)
		return "", nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	fireAt := now.Add(delay)
	id := fmt.Sprintf("%s_%d", payload.HabitID, fireAt.UnixMilli())

	record := models.ScheduledNotification{
		HabitID:       payload.HabitID,
		HabitName:     payload.HabitName,
		ScheduledTime: fireAt.UnixMilli(),
		Created:       now.UnixMilli(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to serialize scheduled notification: %w", err)
	}
	if err := b.d.Write(id, data); err != nil {
		return "", fmt.Errorf("failed to persist scheduled notification: %w", err)
	}

	b.armLocked(id, payload, delay)

	logger.Debug("Notification scheduled", "habitId", payload.HabitID, "in", delay)
	return id, nil
}

// armLocked registers the in-memory timer for id. Callers hold b.mu.
func (b *LocalBackend) armLocked(id string, payload Payload, delay time.Duration) {
	if t, ok := b.timers[id]; ok {
		t.Stop()
	}
	b.timers[id] = time.AfterFunc(delay, func() { b.fire(id, payload) })
}

// fire delivers one due notification. An entry missing from the store was
// cancelled after the timer was armed; that is a silent no-op, not an error.
func (b *LocalBackend) fire(id string, payload Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.timers, id)
	if !b.d.Has(id) {
		return
	}
	if err := b.d.Erase(id); err != nil {
		logger.Warn("Failed to remove fired notification from store", "id", id, "error", err)
	}

	b.onFire(payload)
}

// Cancel stops the timer and removes the persisted entry for id.
func (b *LocalBackend) Cancel(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.timers[id]; ok {
		t.Stop()
		delete(b.timers, id)
	}
	if b.d.Has(id) {
		if err := b.d.Erase(id); err != nil {
			return fmt.Errorf("failed to remove scheduled notification: %w", err)
		}
	}
	return nil
}

// List enumerates all persisted schedule entries.
func (b *LocalBackend) List() ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := []Entry{}
	for id := range b.d.Keys(nil) {
		if id == permissionKey {
			continue
		}
		record, err := b.readLocked(id)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ID: id, HabitID: record.HabitID})
	}
	return entries, nil
}

// CancelAll stops every timer and wipes all persisted schedule entries. The
// permission decision survives.
func (b *LocalBackend) CancelAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}

	var ids []string
	for id := range b.d.Keys(nil) {
		if id == permissionKey {
			continue
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		if err := b.d.Erase(id); err != nil {
			return fmt.Errorf("failed to clear scheduled notifications: %w", err)
		}
	}

	logger.Info("Cancelled all scheduled notifications", "count", len(ids))
	return nil
}

// Setup recovers backend state after a restart: entries older than the
// staleness threshold are purged, entries still in the future get their
// timers re-armed, and anything due in the past without being stale is
// dropped (its moment has passed).
func (b *LocalBackend) Setup() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	restored, purged := 0, 0

	var ids []string
	for id := range b.d.Keys(nil) {
		if id == permissionKey {
			continue
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		record, err := b.readLocked(id)
		if err != nil {
			_ = b.d.Erase(id)
			purged++
			continue
		}

		if now.Sub(time.UnixMilli(record.Created)) > constants.StaleEntryMaxAge {
			_ = b.d.Erase(id)
			purged++
			continue
		}

		delay := record.ScheduledAt().Sub(now)
		if delay <= 0 {
			_ = b.d.Erase(id)
			purged++
			continue
		}

		payload := Payload{
			Title:     constants.NotificationTitle,
			Body:      notificationBody(record.HabitName),
			HabitID:   record.HabitID,
			HabitName: record.HabitName,
		}
		b.armLocked(id, payload, delay)
		restored++
	}

	logger.Info("Restored scheduled notifications", "restored", restored, "purged", purged)
	return nil
}

func (b *LocalBackend) readLocked(id string) (models.ScheduledNotification, error) {
	data, err := b.d.Read(id)
	if err != nil {
		return models.ScheduledNotification{}, err
	}
	var record models.ScheduledNotification
	if err := json.Unmarshal(data, &record); err != nil {
		return models.ScheduledNotification{}, err
	}
	return record, nil
}
