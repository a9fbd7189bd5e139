package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePinger reports a fixed ping result.
type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

type fakeSizer int

func (s fakeSizer) Len() int { return int(s) }

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(&fakePinger{err: errors.New("down")}, fakeSizer(0), "test")
	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		postal         Sizer
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "ready with database connected",
			db:             &fakePinger{},
			postal:         fakeSizer(12),
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: "connected", PostalCodes: 12},
		},
		{
			name:           "ready without database",
			db:             nil,
			postal:         fakeSizer(3),
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: "not_configured", PostalCodes: 3},
		},
		{
			name:           "not ready when database is unreachable",
			db:             &fakePinger{err: errors.New("connection refused")},
			postal:         fakeSizer(12),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "disconnected", PostalCodes: 12},
		},
		{
			name:           "not ready with empty postal index",
			db:             nil,
			postal:         fakeSizer(0),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "not_configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, tt.postal, "test")
			router := setupTestRouter()
			router.GET("/health/ready", handler.Ready)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestHealthHandler_Ready_PingsOncePerRequest(t *testing.T) {
	db := &fakePinger{}
	handler := NewHealthHandler(db, fakeSizer(1), "test")
	router := setupTestRouter()
	router.GET("/health/ready", handler.Ready)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, db.calls)
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		startTime time.Time
		uptime    string
	}{
		{
			name:      "development environment",
			env:       "development",
			startTime: time.Now().Add(-2*time.Hour - time.Second),
			uptime:    "2h 0m 1s",
		},
		{
			name:      "production environment",
			env:       "production",
			startTime: time.Now().Add(-25*time.Hour - time.Second),
			uptime:    "1d 1h 0m 1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &HealthHandler{startTime: tt.startTime, env: tt.env}
			router := setupTestRouter()
			router.GET("/api/v1/info", handler.Info)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			assert.Equal(t, tt.uptime, response.Uptime)
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds only", 45 * time.Second, "0h 0m 45s"},
		{"minutes and seconds", 5*time.Minute + 30*time.Second, "0h 5m 30s"},
		{"hours", 2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{"days", 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
		{"exactly one day", 24 * time.Hour, "1d 0h 0m 0s"},
		{"zero", 0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestReadyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(ReadyResponse{Status: "ready", Database: "connected", PostalCodes: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ready","database":"connected","postal_codes":4}`, string(data))
}

func BenchmarkHealthHandler_Health(b *testing.B) {
	handler := NewHealthHandler(nil, fakeSizer(1), "test")
	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
}
