package system

import (
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/keyring"
	"github.com/coderozzy/daily-habits-final/internal/syncer"
)

type RegisterCmd struct {
	Server string `help:"Sync server base URL (e.g. http://localhost:3000)." required:""`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available, cannot store the API key")
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if settings.DeviceID == "" {
		settings.DeviceID = uuid.New().String()
	}
	settings.ServerURL = c.Server

	client := syncer.NewClient(c.Server, syncer.DeviceInfo{
		DeviceID:  settings.DeviceID,
		Model:     runtime.GOARCH,
		OSName:    runtime.GOOS,
		OSVersion: runtime.Version(),
	})
	if err := client.Register(); err != nil {
		return err
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Printf("Registered device %s with %s\n", settings.DeviceID, c.Server)
	return nil
}

type SyncMetricsCmd struct{}

func (c *SyncMetricsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.ServerURL == "" || settings.DeviceID == "" {
		return fmt.Errorf("device is not registered, run '%s register' first", constants.AppName)
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}

	client := syncer.NewClient(settings.ServerURL, syncer.DeviceInfo{
		DeviceID:  settings.DeviceID,
		Model:     runtime.GOARCH,
		OSName:    runtime.GOOS,
		OSVersion: runtime.Version(),
	})
	if err := client.PushMetrics(habits); err != nil {
		return err
	}

	fmt.Printf("Pushed %d habits at %s\n", len(habits), time.Now().Format(time.RFC3339))
	return nil
}
