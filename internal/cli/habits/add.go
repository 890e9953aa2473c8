package habits

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

type AddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Frequency string `short:"f" help:"Frequency (daily|weekly|monthly|custom)." default:"daily"`
	Days      string `short:"d" help:"Comma-separated weekdays for custom frequency (e.g. 'mon,wed,fri')."`
	Time      string `short:"t" help:"Reminder time (HH:MM)." default:"09:00"`
}

func (c *AddCmd) Validate() error {
	if _, err := cli.ParseFrequency(c.Frequency); err != nil {
		return err
	}
	if !models.ValidNotificationTime(c.Time) {
		return fmt.Errorf("invalid time format (expected HH:MM): %s", c.Time)
	}
	if _, err := cli.ParseCustomDays(c.Days); err != nil {
		return err
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	frequency, err := cli.ParseFrequency(c.Frequency)
	if err != nil {
		return err
	}
	days, err := cli.ParseCustomDays(c.Days)
	if err != nil {
		return err
	}

	if _, err := ctx.Store.GetHabitByName(c.Name); err == nil {
		return fmt.Errorf("a habit named %q already exists", c.Name)
	}

	habit := models.Habit{
		ID:               uuid.New().String(),
		Name:             c.Name,
		Frequency:        frequency,
		CustomDays:       days,
		NotificationTime: c.Time,
		CompletedDates:   []string{},
		CreatedAt:        time.Now(),
	}

	if err := habit.Validate(); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}

	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (ID: %s)\n", c.Name, habit.ID)
	return ctx.ReconcileNotifications()
}
