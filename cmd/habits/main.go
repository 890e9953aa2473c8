package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/cli/habits"
	"github.com/coderozzy/daily-habits-final/internal/cli/notifications"
	"github.com/coderozzy/daily-habits-final/internal/cli/system"
	"github.com/coderozzy/daily-habits-final/internal/constants"
	apperrors "github.com/coderozzy/daily-habits-final/internal/errors"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/notify"
	"github.com/coderozzy/daily-habits-final/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string." type:"string" default:"~/.config/daily-habits/habits.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init system.InitCmd `cmd:"" help:"Initialize habit storage."`
	Tui  system.TuiCmd  `cmd:"" help:"Launch the interactive TUI." default:"1"`

	Add    habits.AddCmd    `cmd:"" help:"Add a new habit."`
	List   habits.ListCmd   `cmd:"" help:"List all habits."`
	Edit   habits.EditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete habits.DeleteCmd `cmd:"" help:"Delete a habit."`
	Done   habits.DoneCmd   `cmd:"" help:"Toggle a habit's completion for a day."`

	Notifications struct {
		Status  notifications.StatusCmd  `cmd:"" help:"Show notification status." default:"1"`
		Enable  notifications.EnableCmd  `cmd:"" help:"Enable reminder notifications."`
		Disable notifications.DisableCmd `cmd:"" help:"Disable reminders and cancel scheduled ones."`
		Request notifications.RequestCmd `cmd:"" help:"Request notification permission."`
		Sync    notifications.SyncCmd    `cmd:"" help:"Reschedule all habit reminders."`
		Clear   notifications.ClearCmd   `cmd:"" help:"Cancel scheduled reminders."`
		Test    notifications.TestCmd    `cmd:"" help:"Send a test notification."`
	} `cmd:"" help:"Manage habit reminders."`

	Doctor   system.DoctorCmd      `cmd:"" help:"Check stored habits and settings for problems."`
	Serve    system.ServeCmd       `cmd:"" help:"Run the device sync server."`
	Register system.RegisterCmd    `cmd:"" help:"Register this device with a sync server."`
	Push     system.SyncMetricsCmd `cmd:"" help:"Push habit metrics to the sync server."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with scheduled reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configPath := storage.ExpandPath(CLI.Config)
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store := storage.NewProvider(CLI.Config)
	appCtx := &cli.Context{Store: store}

	// Load the store before running the command; the init and serve commands
	// handle their own storage.
	loaded := false
	if ctx.Selected() != nil {
		switch ctx.Selected().Name {
		case "init", "serve":
		default:
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
			loaded = true
		}
	}

	// The persisted notifications_enabled setting gates all scheduling.
	enabled := true
	if loaded {
		if settings, err := store.GetSettings(); err == nil {
			enabled = settings.NotificationsEnabled
		}
	}
	appCtx.Manager = notify.NewManager(newBackend(configPath), enabled)

	if loaded {
		if habitsList, err := store.GetAllHabits(); err == nil {
			appCtx.Manager.Start(habitsList)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}

// newBackend prefers the tray daemon, which can raise real OS notifications.
// Without one, reminders fall back to in-process timers backed by a durable
// on-disk store.
func newBackend(configPath string) notify.Backend {
	if notify.TrayAvailable() {
		return notify.NewTrayBackend()
	}
	return notify.NewLocalBackend(filepath.Join(filepath.Dir(configPath), constants.LocalStoreDirName))
}
