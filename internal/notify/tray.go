package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// TrayBackend schedules notifications through the system tray daemon, which
// owns the OS-level notification lifecycle. The daemon is discovered through
// a lockfile ("port|pid|secret") and validated against the process table
// before any call.
type TrayBackend struct {
	client *http.Client
}

// NewTrayBackend returns a backend that talks to the local tray daemon.
func NewTrayBackend() *TrayBackend {
	return &TrayBackend{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *TrayBackend) Name() string { return "tray" }

// GetTrayConfigDir returns the configuration directory used by the tray daemon.
func GetTrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// Check for settings.json to see if a custom lockfile dir is set
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

// TrayAvailable reports whether a validated tray daemon is reachable.
func TrayAvailable() bool {
	trayConfigDir, err := GetTrayConfigDir()
	if err != nil {
		return false
	}
	_, _, err = findAndValidateTrayProcess(filepath.Join(trayConfigDir, constants.TrayLockfileName))
	return err == nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("tray daemon is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("tray daemon process not running")
	}

	if !strings.HasPrefix(process.Executable(), constants.TrayExecutable) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutable, process.Executable())
	}

	return port, secret, nil
}

// call performs one authenticated request against the tray daemon API and
// decodes the JSON response body into out when out is non-nil.
func (b *TrayBackend) call(method, path string, body any, out any) error {
	trayConfigDir, err := GetTrayConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayConfigDir, constants.TrayLockfileName))
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	url := fmt.Sprintf("http://127.0.0.1:%s%s", port, path)
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Habits-Secret", secret)

	res, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("tray daemon returned status %d: %s", res.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode tray daemon response: %w", err)
		}
	}

	return nil
}

// RequestPermission asks the tray daemon to raise the OS permission prompt.
func (b *TrayBackend) RequestPermission() (constants.PermissionStatus, error) {
	var res struct {
		Status constants.PermissionStatus `json:"status"`
	}
	if err := b.call(http.MethodPost, "/permission/request", nil, &res); err != nil {
		return constants.PermissionDenied, err
	}
	return res.Status, nil
}

// Permission queries the current OS permission status. Any failure to reach
// the daemon reports "unknown" rather than guessing.
func (b *TrayBackend) Permission() constants.PermissionStatus {
	var res struct {
		Status constants.PermissionStatus `json:"status"`
	}
	if err := b.call(http.MethodGet, "/permission", nil, &res); err != nil {
		logger.Warn("Failed to get notification permission status", "error", err)
		return constants.PermissionUnknown
	}
	return res.Status
}

// ScheduleAfter registers one notification with the tray daemon. The daemon
// owns the record lifecycle from here; a non-positive delay is a logged
// no-op.
func (b *TrayBackend) ScheduleAfter(delay time.Duration, payload Payload, repeats bool) (string, error) {
	delaySeconds := int64(delay / time.Second)
	if delaySeconds <= 0 {
		logger.Warn("Scheduled time is in the past, skipping notification", "habitId", payload.HabitID)
		return "", nil
	}

	req := struct {
		Payload
		DelaySeconds int64 `json:"delaySeconds"`
		Repeats      bool  `json:"repeats"`
	}{Payload: payload, DelaySeconds: delaySeconds, Repeats: repeats}

	var res struct {
		ID string `json:"id"`
	}
	if err := b.call(http.MethodPost, "/notifications", req, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// Cancel removes one scheduled notification by its daemon-assigned id.
func (b *TrayBackend) Cancel(id string) error {
	return b.call(http.MethodDelete, "/notifications/"+id, nil, nil)
}

// List enumerates every notification currently scheduled with the daemon.
func (b *TrayBackend) List() ([]Entry, error) {
	var res struct {
		Notifications []Entry `json:"notifications"`
	}
	if err := b.call(http.MethodGet, "/notifications", nil, &res); err != nil {
		return nil, err
	}
	return res.Notifications, nil
}

// CancelAll clears every scheduled notification, habit-owned or not.
func (b *TrayBackend) CancelAll() error {
	return b.call(http.MethodDelete, "/notifications", nil, nil)
}

// Setup clears leftover schedules so a full reconcile starts from a clean
// slate.
func (b *TrayBackend) Setup() error {
	return b.CancelAll()
}
