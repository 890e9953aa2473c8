package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/notify"
	"github.com/coderozzy/daily-habits-final/internal/storage"
	"github.com/coderozzy/daily-habits-final/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Manager *notify.Manager
}

// ReconcileNotifications reloads the habit list and lets the notification
// manager decide whether schedules need to change. Called after any habit
// mutation; errors are returned so commands can surface them.
func (c *Context) ReconcileNotifications() error {
	habits, err := c.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to reload habits: %w", err)
	}
	c.Manager.OnHabitsChanged(habits)
	return nil
}

// Today returns today's date (YYYY-MM-DD) in the configured timezone,
// falling back to the system clock when settings are unavailable.
func (c *Context) Today() string {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return utils.Today(time.Now())
	}
	now, err := utils.NowInTimezone(settings.Timezone)
	if err != nil {
		now = time.Now()
	}
	return utils.Today(now)
}

// ParseFrequency resolves a frequency flag value.
func ParseFrequency(s string) (constants.Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return constants.FrequencyDaily, nil
	case "weekly":
		return constants.FrequencyWeekly, nil
	case "monthly":
		return constants.FrequencyMonthly, nil
	case "custom":
		return constants.FrequencyCustom, nil
	default:
		return "", fmt.Errorf("invalid frequency: %s (expected daily|weekly|monthly|custom)", s)
	}
}

// ParseCustomDays splits a comma-separated weekday list and validates each
// entry.
func ParseCustomDays(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if _, err := models.ParseWeekday(part); err != nil {
			return nil, err
		}
		days = append(days, part)
	}
	return days, nil
}

// FormatFrequency renders a habit's cadence for list output.
func FormatFrequency(habit models.Habit) string {
	switch habit.Frequency {
	case constants.FrequencyCustom:
		if len(habit.CustomDays) > 0 {
			return fmt.Sprintf("custom on %s", strings.Join(habit.CustomDays, ","))
		}
		return "custom"
	default:
		return string(habit.Frequency)
	}
}
