package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
)

// notificationTimePattern matches 24-hour HH:MM strings. A single-digit hour
// is allowed ("9:00"), matching what the time pickers upstream produce.
var notificationTimePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Habit represents a recurring practice to track
type Habit struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Frequency        constants.Frequency `json:"frequency"`
	CustomDays       []string            `json:"customDays,omitempty"`
	NotificationTime string              `json:"notificationTime"` // HH:MM format
	CompletedDates   []string            `json:"completedDates,omitempty"`
	Streak           int                 `json:"streak"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Validate checks the habit's fields for consistency before storage.
func (h *Habit) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("habit name cannot be empty")
	}

	switch h.Frequency {
	case constants.FrequencyDaily, constants.FrequencyWeekly,
		constants.FrequencyMonthly, constants.FrequencyCustom:
	default:
		return fmt.Errorf("unknown frequency %q", h.Frequency)
	}

	if !ValidNotificationTime(h.NotificationTime) {
		return fmt.Errorf("invalid notification time (expected HH:MM): %s", h.NotificationTime)
	}

	if h.Frequency == constants.FrequencyCustom {
		for _, day := range h.CustomDays {
			if _, err := ParseWeekday(day); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidNotificationTime reports whether s is a well-formed 24-hour HH:MM string.
func ValidNotificationTime(s string) bool {
	return notificationTimePattern.MatchString(s)
}

// ParseNotificationTime splits a validated HH:MM string into its components.
func ParseNotificationTime(s string) (hour, minute int, err error) {
	if !ValidNotificationTime(s) {
		return 0, 0, fmt.Errorf("invalid notification time format: %s", s)
	}
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid notification time format: %s", s)
	}
	return hour, minute, nil
}

// ParseWeekday resolves a weekday name ("Monday", "mon", ...) to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := wd.String()
		if strings.EqualFold(name, full) || strings.EqualFold(name, full[:3]) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday: %s", name)
}

// IsCompletedOn reports whether the habit was marked done on the given day
// (YYYY-MM-DD).
func (h *Habit) IsCompletedOn(day string) bool {
	for _, d := range h.CompletedDates {
		if d == day {
			return true
		}
	}
	return false
}

// ToggleCompletion marks or unmarks the habit for the given day and adjusts
// the streak counter, never letting it go negative.
func (h *Habit) ToggleCompletion(day string) {
	for i, d := range h.CompletedDates {
		if d == day {
			h.CompletedDates = append(h.CompletedDates[:i], h.CompletedDates[i+1:]...)
			if h.Streak > 0 {
				h.Streak--
			}
			return
		}
	}
	h.CompletedDates = append(h.CompletedDates, day)
	h.Streak++
}
