package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/utils"
)

// IssueType represents the type of validation issue
type IssueType string

const (
	IssueMissingName          IssueType = "missing_name"
	IssueDuplicateName        IssueType = "duplicate_name"
	IssueInvalidFrequency     IssueType = "invalid_frequency"
	IssueInvalidTime          IssueType = "invalid_time"
	IssueInvalidCustomDay     IssueType = "invalid_custom_day"
	IssueEmptyCustomDays      IssueType = "empty_custom_days"
	IssueInvalidTimezone      IssueType = "invalid_timezone"
	IssueInvalidCompletedDate IssueType = "invalid_completed_date"
)

// Issue represents a detected problem in a habit or settings value
type Issue struct {
	Type        IssueType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []string // IDs of habits involved
}

// ValidationResult contains all detected issues
type ValidationResult struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (vr *ValidationResult) HasIssues() bool {
	return len(vr.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasIssues() {
		return "No issues detected."
	}

	report := "Issues detected:\n"
	for _, issue := range vr.Issues {
		report += fmt.Sprintf("- %s\n", issue.Description)
	}
	return report
}

// Validator validates habits and settings
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabit checks a single habit for problems.
func (v *Validator) ValidateHabit(habit models.Habit) ValidationResult {
	result := ValidationResult{Issues: []Issue{}}

	if strings.TrimSpace(habit.Name) == "" {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueMissingName,
			Description: "Habit name cannot be empty",
			HabitIDs:    []string{habit.ID},
		})
	}

	switch habit.Frequency {
	case constants.FrequencyDaily, constants.FrequencyWeekly,
		constants.FrequencyMonthly, constants.FrequencyCustom:
	default:
		result.Issues = append(result.Issues, Issue{
			Type:        IssueInvalidFrequency,
			Description: fmt.Sprintf("Habit \"%s\" has invalid frequency: %s", habit.Name, habit.Frequency),
			Items:       []string{habit.Name},
			HabitIDs:    []string{habit.ID},
		})
	}

	if habit.NotificationTime != "" && !models.ValidNotificationTime(habit.NotificationTime) {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueInvalidTime,
			Description: fmt.Sprintf("Habit \"%s\" has invalid notification time: %s", habit.Name, habit.NotificationTime),
			Items:       []string{habit.Name},
			HabitIDs:    []string{habit.ID},
		})
	}

	if habit.Frequency == constants.FrequencyCustom {
		if len(habit.CustomDays) == 0 {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueEmptyCustomDays,
				Description: fmt.Sprintf("Habit \"%s\" is custom but lists no days", habit.Name),
				Items:       []string{habit.Name},
				HabitIDs:    []string{habit.ID},
			})
		}
		for _, day := range habit.CustomDays {
			if _, err := models.ParseWeekday(day); err != nil {
				result.Issues = append(result.Issues, Issue{
					Type:        IssueInvalidCustomDay,
					Description: fmt.Sprintf("Habit \"%s\" has unrecognized day: %s", habit.Name, day),
					Items:       []string{habit.Name},
					HabitIDs:    []string{habit.ID},
				})
			}
		}
	}

	for _, date := range habit.CompletedDates {
		if _, err := time.Parse(constants.DateFormat, date); err != nil {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueInvalidCompletedDate,
				Description: fmt.Sprintf("Habit \"%s\" has malformed completion date: %s", habit.Name, date),
				Items:       []string{habit.Name},
				HabitIDs:    []string{habit.ID},
			})
		}
	}

	return result
}

// ValidateHabits checks a collection of habits, including cross-habit
// problems like duplicate names.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Issues: []Issue{}}

	nameCount := make(map[string][]string)
	for _, habit := range habits {
		if habit.Name == "" {
			continue
		}
		nameCount[habit.Name] = append(nameCount[habit.Name], habit.ID)
	}
	for name, ids := range nameCount {
		if len(ids) > 1 {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueDuplicateName,
				Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", name, ids),
				Items:       []string{name},
				HabitIDs:    ids,
			})
		}
	}

	for _, habit := range habits {
		single := v.ValidateHabit(habit)
		result.Issues = append(result.Issues, single.Issues...)
	}

	return result
}

// ValidateSettings checks application settings for problems.
func (v *Validator) ValidateSettings(settings models.Settings) ValidationResult {
	result := ValidationResult{Issues: []Issue{}}

	if settings.DefaultNotificationTime != "" && !models.ValidNotificationTime(settings.DefaultNotificationTime) {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueInvalidTime,
			Description: fmt.Sprintf("Invalid default notification time: %s", settings.DefaultNotificationTime),
		})
	}

	if !utils.ValidateTimezone(settings.Timezone) {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueInvalidTimezone,
			Description: fmt.Sprintf("Invalid timezone: %s", settings.Timezone),
		})
	}

	return result
}
