package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	store := sqlite.New(filepath.Join(t.TempDir(), "server.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(store)
}

func register(t *testing.T, srv *Server, deviceID string) string {
	t.Helper()
	body, _ := json.Marshal(registerRequest{DeviceID: deviceID, Model: "Pixel", OSName: "android", OSVersion: "14"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("register returned status %d: %s", rec.Code, rec.Body.String())
	}
	var res registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if !res.Success || res.APIKey == "" {
		t.Fatalf("register response = %+v, want success with key", res)
	}
	return res.APIKey
}

func TestRegisterIssuesKey(t *testing.T) {
	srv := setupTestServer(t)

	key := register(t, srv, "dev1")
	if len(key) != constants.APIKeyLength*2 {
		t.Errorf("key length = %d, want %d hex chars", len(key), constants.APIKeyLength*2)
	}
}

func TestRegisterIsIdempotentWhileKeyLives(t *testing.T) {
	srv := setupTestServer(t)

	first := register(t, srv, "dev1")
	second := register(t, srv, "dev1")
	if first != second {
		t.Error("re-registration rotated a live key")
	}
}

func TestRegisterRotatesExpiredKey(t *testing.T) {
	srv := setupTestServer(t)

	first := register(t, srv, "dev1")

	srv.now = func() time.Time { return time.Now().Add(constants.APIKeyTTL + time.Hour) }
	second := register(t, srv, "dev1")
	if first == second {
		t.Error("expired key was not rotated on re-registration")
	}
}

func TestRegisterRejectsMissingDeviceID(t *testing.T) {
	srv := setupTestServer(t)

	body, _ := json.Marshal(registerRequest{Model: "Pixel"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMetricsRequireAPIKey(t *testing.T) {
	srv := setupTestServer(t)
	register(t, srv, "dev1")

	habits, _ := json.Marshal([]models.Habit{})

	req := httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(habits))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(habits))
	req.Header.Set("x-api-key", "bogus")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad key: status = %d, want 401", rec.Code)
	}
}

func TestExpiredKeyIsRejected(t *testing.T) {
	srv := setupTestServer(t)
	key := register(t, srv, "dev1")

	srv.now = func() time.Time { return time.Now().Add(constants.APIKeyTTL + time.Hour) }

	habits, _ := json.Marshal([]models.Habit{})
	req := httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(habits))
	req.Header.Set("x-api-key", key)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired key", rec.Code)
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	srv := setupTestServer(t)
	key := register(t, srv, "dev1")

	habits := []models.Habit{
		{ID: "h1", Name: "Read", Frequency: constants.FrequencyDaily, NotificationTime: "09:00", Streak: 2},
	}
	body, _ := json.Marshal(habits)

	req := httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(body))
	req.Header.Set("x-api-key", key)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("push status = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/metrics/dev1", nil)
	req.Header.Set("x-api-key", key)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch status = %d: %s", rec.Code, rec.Body.String())
	}

	var snapshot models.MetricsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snapshot.DeviceID != "dev1" || len(snapshot.Habits) != 1 || snapshot.Habits[0].Streak != 2 {
		t.Errorf("snapshot = %+v, want dev1 with one habit", snapshot)
	}
}

func TestMetricsForbiddenForOtherDevice(t *testing.T) {
	srv := setupTestServer(t)
	key := register(t, srv, "dev1")
	register(t, srv, "dev2")

	req := httptest.NewRequest(http.MethodGet, "/api/metrics/dev2", nil)
	req.Header.Set("x-api-key", key)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRefreshKeyRotates(t *testing.T) {
	srv := setupTestServer(t)
	key := register(t, srv, "dev1")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh-key", nil)
	req.Header.Set("x-api-key", key)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rec.Code, rec.Body.String())
	}
	var res registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode refresh response: %v", err)
	}
	if res.APIKey == "" || res.APIKey == key {
		t.Error("refresh did not rotate the key")
	}

	// Old key is dead, new key works.
	habits, _ := json.Marshal([]models.Habit{})
	req = httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(habits))
	req.Header.Set("x-api-key", key)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old key still accepted: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/metrics", bytes.NewReader(habits))
	req.Header.Set("x-api-key", res.APIKey)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("new key rejected: status = %d", rec.Code)
	}
}
