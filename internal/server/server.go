package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/constants"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/models"
	"github.com/coderozzy/daily-habits-final/internal/storage"
)

// Server is the device sync API. Devices register to obtain an API key,
// then push habit metric snapshots under that key.
type Server struct {
	store  storage.Provider
	router *http.ServeMux
	now    func() time.Time
}

func NewServer(store storage.Provider) *Server {
	s := &Server{
		store:  store,
		router: http.NewServeMux(),
		now:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Public routes
	s.router.HandleFunc("POST /api/auth/register", s.handleRegister)

	// Protected routes
	s.router.HandleFunc("POST /api/auth/refresh-key", s.authMiddleware(s.handleRefreshKey))
	s.router.HandleFunc("POST /api/metrics", s.authMiddleware(s.handleSaveMetrics))
	s.router.HandleFunc("GET /api/metrics/{deviceId}", s.authMiddleware(s.handleGetMetrics))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type registerRequest struct {
	DeviceID  string `json:"deviceId"`
	Model     string `json:"model"`
	OSName    string `json:"osName"`
	OSVersion string `json:"osVersion"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	APIKey  string `json:"apiKey,omitempty"`
	Message string `json:"message,omitempty"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Middleware

// authMiddleware resolves the x-api-key header to a registered device and
// rejects expired or unknown keys.
func (s *Server) authMiddleware(next func(http.ResponseWriter, *http.Request, models.Device)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("x-api-key")
		if apiKey == "" {
			writeJSON(w, http.StatusUnauthorized, statusResponse{Message: "missing API key"})
			return
		}

		device, err := s.store.GetDeviceByAPIKey(apiKey)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, statusResponse{Message: "invalid API key"})
			return
		}
		if s.now().After(device.APIKeyExpiresAt) {
			writeJSON(w, http.StatusUnauthorized, statusResponse{Message: "API key expired"})
			return
		}

		next(w, r, device)
	}
}

// Handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, registerResponse{Message: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeJSON(w, http.StatusBadRequest, registerResponse{Message: "deviceId is required"})
		return
	}

	// Re-registration of a known device with a live key returns the
	// existing key; an expired key is rotated.
	if existing, err := s.store.GetDevice(req.DeviceID); err == nil {
		if !s.now().After(existing.APIKeyExpiresAt) {
			writeJSON(w, http.StatusOK, registerResponse{Success: true, APIKey: existing.APIKey, Message: "already registered"})
			return
		}
		if err := s.rotateKey(&existing); err != nil {
			logger.Error("failed to rotate expired key", "device", req.DeviceID, "error", err)
			writeJSON(w, http.StatusInternalServerError, registerResponse{Message: "failed to issue API key"})
			return
		}
		writeJSON(w, http.StatusOK, registerResponse{Success: true, APIKey: existing.APIKey, Message: "key renewed"})
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, registerResponse{Message: "failed to issue API key"})
		return
	}

	device := models.Device{
		DeviceID:        req.DeviceID,
		APIKey:          apiKey,
		APIKeyExpiresAt: s.now().Add(constants.APIKeyTTL),
		Model:           orUnknown(req.Model),
		OSName:          orUnknown(req.OSName),
		OSVersion:       orUnknown(req.OSVersion),
		CreatedAt:       s.now(),
	}
	if err := s.store.SaveDevice(device); err != nil {
		logger.Error("failed to save device", "device", req.DeviceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, registerResponse{Message: "failed to register device"})
		return
	}

	logger.Info("device registered", "device", req.DeviceID, "model", device.Model)
	writeJSON(w, http.StatusOK, registerResponse{Success: true, APIKey: apiKey, Message: "registered"})
}

func (s *Server) handleRefreshKey(w http.ResponseWriter, r *http.Request, device models.Device) {
	if err := s.rotateKey(&device); err != nil {
		logger.Error("failed to refresh key", "device", device.DeviceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, registerResponse{Message: "failed to refresh API key"})
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{Success: true, APIKey: device.APIKey, Message: "key refreshed"})
}

func (s *Server) handleSaveMetrics(w http.ResponseWriter, r *http.Request, device models.Device) {
	var habits []models.Habit
	if err := json.NewDecoder(r.Body).Decode(&habits); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "invalid request body"})
		return
	}

	snapshot := models.MetricsSnapshot{
		DeviceID: device.DeviceID,
		Habits:   habits,
		SyncedAt: s.now(),
	}
	if err := s.store.SaveMetrics(snapshot); err != nil {
		logger.Error("failed to save metrics", "device", device.DeviceID, "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Message: "failed to save metrics"})
		return
	}
	if err := s.store.TouchDeviceSync(device.DeviceID, snapshot.SyncedAt); err != nil {
		logger.Warn("failed to update last sync", "device", device.DeviceID, "error", err)
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "metrics saved"})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request, device models.Device) {
	deviceID := r.PathValue("deviceId")
	if deviceID != device.DeviceID {
		writeJSON(w, http.StatusForbidden, statusResponse{Message: "metrics belong to another device"})
		return
	}

	snapshot, err := s.store.GetMetrics(deviceID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, statusResponse{Message: "no metrics for device"})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) rotateKey(device *models.Device) error {
	apiKey, err := generateAPIKey()
	if err != nil {
		return err
	}
	device.APIKey = apiKey
	device.APIKeyExpiresAt = s.now().Add(constants.APIKeyTTL)
	return s.store.SaveDevice(*device)
}

func generateAPIKey() (string, error) {
	buf := make([]byte, constants.APIKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
