package habits

import (
	"fmt"

	"github.com/coderozzy/daily-habits-final/internal/cli"
)

type ListCmd struct {
	ShowIDs bool `help:"Show habit IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	today := ctx.Today()

	fmt.Println("Habits:")
	for _, habit := range habits {
		mark := " "
		if habit.IsCompletedOn(today) {
			mark = "x"
		}

		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", habit.ID)
		}

		fmt.Printf("  [%s] %s%s - %s at %s (streak: %d)\n",
			mark, habit.Name, idStr, cli.FormatFrequency(habit), habit.NotificationTime, habit.Streak)
	}

	return nil
}
