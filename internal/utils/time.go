package utils

import (
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
)

// NextOccurrence returns the next wall-clock instant for hour:minute relative
// to now. With daysToAdd == 0, a time already past today rolls to tomorrow;
// an explicit offset is trusted as-is and never rolled.
func NextOccurrence(now time.Time, hour, minute, daysToAdd int) time.Time {
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	scheduled = scheduled.AddDate(0, 0, daysToAdd)

	if daysToAdd == 0 && !scheduled.After(now) {
		scheduled = scheduled.AddDate(0, 0, 1)
	}

	return scheduled
}

// NextWeekdayOccurrence returns the next instant at hour:minute that falls on
// the target weekday and is strictly after now. The result is at most 13 days
// out: up to one rolled day plus up to 6 days to reach the weekday, plus one
// extra week when the candidate still lands in the past.
func NextWeekdayOccurrence(now time.Time, target time.Weekday, hour, minute int) time.Time {
	scheduled := NextOccurrence(now, hour, minute, 0)

	daysUntilNext := (int(target) - int(scheduled.Weekday()) + 7) % 7
	scheduled = scheduled.AddDate(0, 0, daysUntilNext)

	if !scheduled.After(now) {
		scheduled = scheduled.AddDate(0, 0, 7)
	}

	return scheduled
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// Today returns today's date string (YYYY-MM-DD) for the given instant.
func Today(now time.Time) string {
	return now.Format(constants.DateFormat)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
