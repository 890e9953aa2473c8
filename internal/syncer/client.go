// Package syncer is the client side of the device sync API. It registers
// the device, keeps the issued API key in the OS keyring, and pushes habit
// snapshots to the server.
package syncer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	keyringpkg "github.com/coderozzy/daily-habits-final/internal/keyring"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/models"
)

// ErrNotRegistered is returned when a push is attempted before the device
// has registered and no API key is stored.
var ErrNotRegistered = errors.New("device is not registered with the sync server")

// DeviceInfo describes the local device for registration.
type DeviceInfo struct {
	DeviceID  string `json:"deviceId"`
	Model     string `json:"model"`
	OSName    string `json:"osName"`
	OSVersion string `json:"osVersion"`
}

type serverResponse struct {
	Success bool   `json:"success"`
	APIKey  string `json:"apiKey"`
	Message string `json:"message"`
}

// Client talks to a sync server on behalf of one device.
type Client struct {
	baseURL string
	device  DeviceInfo
	http    *http.Client

	getKey    func() (string, error)
	setKey    func(string) error
	deleteKey func() error
}

type Option func(*Client)

// WithKeyStore replaces the OS keyring with custom key persistence.
func WithKeyStore(get func() (string, error), set func(string) error, del func() error) Option {
	return func(c *Client) {
		c.getKey = get
		c.setKey = set
		c.deleteKey = del
	}
}

func NewClient(baseURL string, device DeviceInfo, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		device:  device,
		http:    &http.Client{Timeout: 10 * time.Second},

		getKey:    keyringpkg.GetAPIKey,
		setKey:    keyringpkg.SetAPIKey,
		deleteKey: keyringpkg.DeleteAPIKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register obtains an API key from the server and stores it. Safe to call
// repeatedly; the server returns the existing key for a known device.
func (c *Client) Register() error {
	body, err := json.Marshal(c.device)
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.baseURL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	var out serverResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode registration response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return fmt.Errorf("registration rejected: %s", out.Message)
	}

	if err := c.setKey(out.APIKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	logger.Info("device registered with sync server", "device", c.device.DeviceID)
	return nil
}

// PushMetrics uploads the current habit list. A 401 response triggers one
// re-registration attempt before giving up, covering expired keys.
func (c *Client) PushMetrics(habits []models.Habit) error {
	status, err := c.pushOnce(habits)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		logger.Warn("API key rejected, re-registering", "device", c.device.DeviceID)
		if err := c.deleteKey(); err != nil && !errors.Is(err, keyringpkg.ErrNotFound) {
			logger.Warn("failed to discard stale API key", "error", err)
		}
		if err := c.Register(); err != nil {
			return err
		}
		status, err = c.pushOnce(habits)
		if err != nil {
			return err
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("metrics push failed with status %d", status)
	}
	return nil
}

func (c *Client) pushOnce(habits []models.Habit) (int, error) {
	apiKey, err := c.getKey()
	if err != nil {
		if errors.Is(err, keyringpkg.ErrNotFound) {
			return 0, ErrNotRegistered
		}
		return 0, err
	}

	if habits == nil {
		habits = []models.Habit{}
	}
	body, err := json.Marshal(habits)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/metrics", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("metrics push failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// FetchMetrics retrieves the server's stored snapshot for this device.
func (c *Client) FetchMetrics() (models.MetricsSnapshot, error) {
	apiKey, err := c.getKey()
	if err != nil {
		if errors.Is(err, keyringpkg.ErrNotFound) {
			return models.MetricsSnapshot{}, ErrNotRegistered
		}
		return models.MetricsSnapshot{}, err
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/metrics/"+c.device.DeviceID, nil)
	if err != nil {
		return models.MetricsSnapshot{}, err
	}
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("metrics fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.MetricsSnapshot{}, fmt.Errorf("metrics fetch failed with status %d", resp.StatusCode)
	}

	var snapshot models.MetricsSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return models.MetricsSnapshot{}, fmt.Errorf("failed to decode metrics: %w", err)
	}
	return snapshot, nil
}
