package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/masquerade/internal/config"
	"github.com/jwebster45206/masquerade/internal/session"
	"github.com/jwebster45206/masquerade/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedHealth string
		expectedRedis  string
	}{
		{
			name:           "all healthy",
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedRedis:  "healthy",
		},
		{
			name:           "unhealthy redis",
			pingErr:        errors.New("connection failed"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedRedis:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			if tt.pingErr != nil {
				store.SetPingError(tt.pingErr)
			}
			mgr := session.NewManager(config.DefaultGame(), 1, logger)
			if _, err := mgr.Create(0, 0); err != nil {
				t.Fatalf("Failed to create session: %v", err)
			}
			handler := NewHealthHandler(store, mgr, logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "masquerade" {
				t.Errorf("Expected service 'masquerade', got '%s'", response.Service)
			}
			if got := response.Components["redis"]; got != tt.expectedRedis {
				t.Errorf("Expected redis status '%s', got '%v'", tt.expectedRedis, got)
			}

			sessions, ok := response.Components["sessions"].(map[string]interface{})
			if !ok {
				t.Fatalf("Expected sessions component to be a map, got %T", response.Components["sessions"])
			}
			if sessions["live"] != float64(1) {
				t.Errorf("Expected 1 live session, got %v", sessions["live"])
			}
		})
	}
}
