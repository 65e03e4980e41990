package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedep/internal/config"
	"bedep/internal/middleware"
	"bedep/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Path = testutil.WriteSampleWorkbook(t)
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	application, err := NewApplicationWithLogger(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { application.shutdownTelemetry(context.Background()) })
	return application
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewApplication_LoadsWorkbook(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	assert.True(t, application.Services.Dashboard.Loaded())
	stats, err := application.Services.Dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Records)
	assert.Equal(t, 2, stats.Schools)
}

func TestNewApplication_MissingWorkbookIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Path = t.TempDir() + "/missing.xlsx"
	logger, logs := testutil.NewTestLogger(t)

	_, err := NewApplicationWithLogger(cfg, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.xlsx")
	assert.True(t, logs.ContainsMessage("Failed to locate assessment workbook"))
}

func TestNewApplication_DatasetDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Path = filepath.Dir(cfg.Dataset.Path)

	application := newTestApp(t, cfg)

	stats, err := application.Services.Dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(stats.Source))
}

func TestNewApplication_BadTelemetryConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "otlp"
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewApplicationWithLogger(cfg, logger)
	assert.Error(t, err)
}

func TestRouter_DashboardEndToEnd(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	rec := get(t, application.Router, "/api/dashboard?area=reading&school=Cumhuriyet+Lisesi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body struct {
		Data struct {
			School      string `json:"school"`
			Excluded    int    `json:"excluded"`
			SchoolPanel struct {
				Total int `json:"total"`
			} `json:"school_panel"`
			Branches struct {
				Branches []struct {
					Branch string `json:"branch"`
				} `json:"branches"`
			} `json:"branches"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cumhuriyet Lisesi", body.Data.School)
	assert.Equal(t, 1, body.Data.Excluded)
	assert.Equal(t, 3, body.Data.SchoolPanel.Total)
	require.Len(t, body.Data.Branches.Branches, 2)
	assert.Equal(t, "10-A", body.Data.Branches.Branches[0].Branch)
}

func TestRouter_Endpoints(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/health", http.StatusOK},
		{"/api/health/ready", http.StatusOK},
		{"/api/health/live", http.StatusOK},
		{"/api/version", http.StatusOK},
		{"/api/metrics/runtime", http.StatusOK},
		{"/api/areas", http.StatusOK},
		{"/api/levels", http.StatusOK},
		{"/api/schools", http.StatusOK},
		{"/api/schools/Atat%C3%BCrk%20Lisesi/branches", http.StatusOK},
		{"/api/dataset", http.StatusOK},
		{"/api/dashboard/export.csv?area=science_literacy", http.StatusOK},
		{"/api/dashboard?area=history", http.StatusBadRequest},
		{"/api/nope", http.StatusNotFound},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, application.Router, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_MetricsScrape(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	require.Equal(t, http.StatusOK, get(t, application.Router, "/api/dashboard?chart=pie").Code)

	rec := get(t, application.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "dashboard_renders_total")
}

func TestRouter_RateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}
	application := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, application.Router, "/api/areas").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, application.Router, "/api/areas").Code)
}

func TestApplication_ServeStopsOnCancel(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
