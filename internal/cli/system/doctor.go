package system

import (
	"fmt"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/validation"
)

type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	v := validation.New()
	result := v.ValidateHabits(habits)
	settingsResult := v.ValidateSettings(settings)
	result.Issues = append(result.Issues, settingsResult.Issues...)

	fmt.Println(result.FormatReport())
	if result.HasIssues() {
		return fmt.Errorf("%d issue(s) detected", len(result.Issues))
	}
	return nil
}
