package habits

import (
	"fmt"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

type EditCmd struct {
	Name      string `arg:"" help:"Name of the habit to edit."`
	NewName   string `help:"New habit name."`
	Frequency string `short:"f" help:"New frequency (daily|weekly|monthly|custom)."`
	Days      string `short:"d" help:"New comma-separated weekdays for custom frequency."`
	Time      string `short:"t" help:"New reminder time (HH:MM)."`
}

func (c *EditCmd) Validate() error {
	if c.Frequency != "" {
		if _, err := cli.ParseFrequency(c.Frequency); err != nil {
			return err
		}
	}
	if c.Time != "" && !models.ValidNotificationTime(c.Time) {
		return fmt.Errorf("invalid time format (expected HH:MM): %s", c.Time)
	}
	if _, err := cli.ParseCustomDays(c.Days); err != nil {
		return err
	}
	return nil
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if c.NewName != "" {
		habit.Name = c.NewName
	}
	if c.Frequency != "" {
		frequency, err := cli.ParseFrequency(c.Frequency)
		if err != nil {
			return err
		}
		habit.Frequency = frequency
	}
	if c.Days != "" {
		days, err := cli.ParseCustomDays(c.Days)
		if err != nil {
			return err
		}
		habit.CustomDays = days
	}
	if c.Time != "" {
		habit.NotificationTime = c.Time
	}

	if err := habit.Validate(); err != nil {
		return fmt.Errorf("invalid habit: %w", err)
	}

	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s\n", habit.Name)
	return ctx.ReconcileNotifications()
}
