package habits

import (
	"fmt"

	"github.com/coderozzy/daily-habits-final/internal/cli"
)

type DeleteCmd struct {
	Name string `arg:"" help:"Name of the habit to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return ctx.ReconcileNotifications()
}
