package habits

import (
	"fmt"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/constants"
)

type DoneCmd struct {
	Name string `arg:"" help:"Name of the habit to toggle."`
	Date string `help:"Day to toggle (YYYY-MM-DD), defaults to today."`
}

func (c *DoneCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	day := c.Date
	if day == "" {
		day = ctx.Today()
	} else if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return fmt.Errorf("invalid date (expected YYYY-MM-DD): %s", c.Date)
	}

	habit.ToggleCompletion(day)
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	if habit.IsCompletedOn(day) {
		fmt.Printf("Marked %s done for %s (streak: %d)\n", habit.Name, day, habit.Streak)
	} else {
		fmt.Printf("Unmarked %s for %s (streak: %d)\n", habit.Name, day, habit.Streak)
	}

	// The manager's fingerprint ignores completion history, so this never
	// triggers a reschedule.
	return ctx.ReconcileNotifications()
}
