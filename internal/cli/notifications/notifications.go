package notifications

import (
	"fmt"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/notify"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	if !ctx.Manager.Supported() {
		fmt.Println("Notifications: disabled")
		return nil
	}

	fmt.Printf("Permission: %s\n", ctx.Manager.Status())
	fmt.Printf("Habits with reminders: %d\n", ctx.Manager.TotalScheduled())

	if result := ctx.Manager.LastSyncResult(); result != nil {
		fmt.Printf("Last sync: %d scheduled, %d failed\n",
			len(result.Successful), len(result.Failed))
		for _, failed := range result.Failed {
			fmt.Printf("  failed %s: %s\n", failed.HabitID, failed.Error)
		}
	}
	return nil
}

type EnableCmd struct{}

func (c *EnableCmd) Run(ctx *cli.Context) error {
	return setNotificationsEnabled(ctx, true)
}

type DisableCmd struct{}

func (c *DisableCmd) Run(ctx *cli.Context) error {
	return setNotificationsEnabled(ctx, false)
}

func setNotificationsEnabled(ctx *cli.Context, enabled bool) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.NotificationsEnabled = enabled
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if result := ctx.Manager.SetEnabled(enabled, habits); result.Error != "" {
		return fmt.Errorf("failed to apply notification setting: %s", result.Error)
	}

	if enabled {
		fmt.Println("Notifications enabled")
	} else {
		fmt.Println("Notifications disabled, scheduled reminders cancelled")
	}
	return nil
}

type RequestCmd struct{}

func (c *RequestCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}

	result := ctx.Manager.RequestPermission(habits)
	if result.Error != "" {
		return fmt.Errorf("permission request failed: %s", result.Error)
	}
	if !result.Success {
		fmt.Println("Notification permission denied")
		return nil
	}
	fmt.Println("Notification permission granted")
	return nil
}

type SyncCmd struct{}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}

	result := ctx.Manager.SyncAll(habits)
	if result.Error != "" {
		return fmt.Errorf("sync failed: %s", result.Error)
	}
	printBatch(result.Result)
	return nil
}

type ClearCmd struct {
	Force bool `help:"Also clear notifications this app does not track."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	var result notify.SyncResult
	if c.Force {
		result = ctx.Manager.ClearAllForce()
	} else {
		habits, err := ctx.Store.GetAllHabits()
		if err != nil {
			return err
		}
		result = ctx.Manager.ClearAll(habits)
	}

	if result.Error != "" {
		return fmt.Errorf("clear failed: %s", result.Error)
	}
	fmt.Println("Cleared scheduled notifications")
	return nil
}

type TestCmd struct{}

func (c *TestCmd) Run(ctx *cli.Context) error {
	result := ctx.Manager.SendTest()
	if result.Error != "" {
		return fmt.Errorf("test notification failed: %s", result.Error)
	}
	fmt.Println("Test notification scheduled")
	return nil
}

func printBatch(result *models.BatchResult) {
	if result == nil {
		fmt.Println("Nothing to schedule")
		return
	}
	if result.OK() {
		fmt.Printf("Scheduled reminders for %d habits\n", len(result.Successful))
		return
	}
	fmt.Printf("Scheduled: %d, failed: %d\n", len(result.Successful), len(result.Failed))
	for _, failed := range result.Failed {
		fmt.Printf("  failed %s: %s\n", failed.HabitID, failed.Error)
	}
}
