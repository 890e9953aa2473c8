package notify

import (
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/utils"
)

// Scheduler translates one habit's recurrence into concrete backend
// notifications. Scheduling is idempotent: every pass first cancels the
// habit's existing notifications, then schedules fresh ones, strictly in
// that order.
type Scheduler struct {
	backend Backend
	now     func() time.Time
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock overrides the scheduler's clock for tests.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler returns a Scheduler driving the given backend.
func NewScheduler(backend Backend, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleHabit cancels the habit's existing notifications and schedules its
// next occurrences: one for daily, one Monday-anchored for weekly, one per
// valid weekday for custom. Monthly habits schedule nothing. The per-habit
// result envelope carries failures; this method itself never returns an
// error across the batch boundary.
//
// Fan-out is not transactional: if a later schedule call fails, earlier ones
// in the same pass stay scheduled and the first error is reported.
func (s *Scheduler) ScheduleHabit(habit models.Habit) models.ScheduleResult {
	hour, minute, err := models.ParseNotificationTime(habit.NotificationTime)
	if err != nil {
		logger.Warn("Invalid notification time", "habit", habit.Name, "time", habit.NotificationTime)
		return models.ScheduleResult{
			HabitID: habit.ID,
			Error:   fmt.Sprintf("Invalid notification time: %s", habit.NotificationTime),
		}
	}

	// Cancel before scheduling, never after: reordering would let an
	// in-flight cancel remove the fresh schedules.
	if _, err := s.CancelHabit(habit.ID); err != nil {
		logger.Warn("Failed to cancel existing notifications", "habit", habit.Name, "error", err)
	}

	now := s.now()
	var instants []time.Time

	switch habit.Frequency {
	case constants.FrequencyDaily:
		instants = append(instants, utils.NextOccurrence(now, hour, minute, 0))
	case constants.FrequencyWeekly:
		instants = append(instants, utils.NextWeekdayOccurrence(now, constants.WeeklyAnchorDay, hour, minute))
	case constants.FrequencyCustom:
		for _, day := range habit.CustomDays {
			weekday, err := models.ParseWeekday(day)
			if err != nil {
				logger.Warn("Invalid custom day, skipping", "habit", habit.Name, "day", day)
				continue
			}
			instants = append(instants, utils.NextWeekdayOccurrence(now, weekday, hour, minute))
		}
	default:
		// Monthly habits are accepted upstream but currently produce no
		// schedule. Zero notifications is a valid terminal state.
	}

	payload := Payload{
		Title:     constants.NotificationTitle,
		Body:      notificationBody(habit.Name),
		HabitID:   habit.ID,
		HabitName: habit.Name,
	}

	scheduled := 0
	for _, instant := range instants {
		id, err := s.backend.ScheduleAfter(instant.Sub(now), payload, true)
		if err != nil {
			logger.Error("Failed to schedule notification", "habit", habit.Name, "error", err)
			return models.ScheduleResult{
				HabitID:   habit.ID,
				Scheduled: scheduled,
				Error:     err.Error(),
			}
		}
		if id != "" {
			scheduled++
		}
	}

	return models.ScheduleResult{HabitID: habit.ID, Success: true, Scheduled: scheduled}
}

// CancelHabit removes every backend notification tagged with habitID and
// returns how many were cancelled.
func (s *Scheduler) CancelHabit(habitID string) (int, error) {
	entries, err := s.backend.List()
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, entry := range entries {
		if entry.HabitID != habitID {
			continue
		}
		if err := s.backend.Cancel(entry.ID); err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

// HasScheduled reports whether at least one backend notification is tagged
// with habitID.
func (s *Scheduler) HasScheduled(habitID string) (bool, error) {
	n, err := s.Count(habitID)
	return n > 0, err
}

// Count returns the number of backend notifications tagged with habitID.
func (s *Scheduler) Count(habitID string) (int, error) {
	entries, err := s.backend.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if entry.HabitID == habitID {
			n++
		}
	}
	return n, nil
}

// ScheduleAll reconciles every habit in turn, sequentially so cancellation
// and scheduling stay ordered per habit. One habit's failure is recorded and
// the batch moves on.
func (s *Scheduler) ScheduleAll(habits []models.Habit) models.BatchResult {
	result := models.BatchResult{Successful: []string{}, Failed: []models.FailedHabit{}}

	for _, habit := range habits {
		res := s.ScheduleHabit(habit)
		if res.Success {
			result.Successful = append(result.Successful, habit.ID)
		} else {
			errMsg := res.Error
			if errMsg == "" {
				errMsg = "Unknown error"
			}
			result.Failed = append(result.Failed, models.FailedHabit{HabitID: habit.ID, Error: errMsg})
		}
	}

	return result
}

// CancelAll cancels notifications for the given habits. An empty habitIDs
// delegates to the backend's global cancel-all, clearing everything
// including non-habit notifications.
func (s *Scheduler) CancelAll(habitIDs []string) models.BatchResult {
	result := models.BatchResult{Successful: []string{}, Failed: []models.FailedHabit{}}

	if len(habitIDs) == 0 {
		if err := s.backend.CancelAll(); err != nil {
			result.Failed = append(result.Failed, models.FailedHabit{HabitID: "all", Error: err.Error()})
			return result
		}
		result.Successful = append(result.Successful, "all")
		return result
	}

	for _, habitID := range habitIDs {
		if _, err := s.CancelHabit(habitID); err != nil {
			result.Failed = append(result.Failed, models.FailedHabit{HabitID: habitID, Error: err.Error()})
			continue
		}
		result.Successful = append(result.Successful, habitID)
	}

	return result
}
