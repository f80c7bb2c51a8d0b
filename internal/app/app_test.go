package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twxcli/internal/config"
	"twxcli/internal/services"
	"twxcli/internal/shared/testutil"
	"twxcli/pkg/contracts/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Server.RateLimit.Enabled = false
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "prometheus"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, WithLogger(logger), WithRegistry(promclient.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func get(t *testing.T, app *Application, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	assert.DirExists(t, app.Paths.ExportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, cfg.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Reports)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Services.Exporter)
	assert.NotNil(t, app.Services.Engine)
	assert.NotNil(t, app.Services.Fetcher)
}

func TestNewRejectsUnknownExporter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "carrier-pigeon"
	logger, _ := testutil.NewTestLogger(t)

	_, err := New(cfg, WithLogger(logger), WithRegistry(promclient.NewRegistry()))

	assert.Error(t, err)
}

func TestBuildServices(t *testing.T) {
	cfg := testConfig(t)
	paths, err := config.ResolvePaths(cfg.Paths)
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)

	container := BuildServices(cfg, paths, logger)

	assert.Nil(t, container.Health)
	assert.ElementsMatch(t, domain.AllReportKinds(), container.Reports.Kinds())
}

func TestBuildServicesUsesConfiguredEndpoints(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/rwd/zh/afterTrading/MI_INDEX", r.URL.Path)
		_, _ = w.Write([]byte(`{"stat":"OK","tables":[]}`))
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Scraper.TWSEURL = upstream.URL
	paths, err := config.ResolvePaths(cfg.Paths)
	require.NoError(t, err)
	logger, _ := testutil.NewTestLogger(t)

	container := BuildServices(cfg, paths, logger)
	table, err := container.Fetcher.Fetch(context.Background(), domain.KindTWSEMarketBreadth, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, table.IsEmpty())
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestRouter(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, app, "/healthz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.StatusOK, decode(t, rec)["status"])
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("readiness", func(t *testing.T) {
		rec := get(t, app, "/api/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.StatusReady, decode(t, rec)["status"])
	})

	t.Run("liveness carries runtime stats", func(t *testing.T) {
		rec := get(t, app, "/api/health/live")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, decode(t, rec), "runtime")
	})

	t.Run("version", func(t *testing.T) {
		rec := get(t, app, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Version, decode(t, rec)["version"])
	})

	t.Run("report kinds", func(t *testing.T) {
		rec := get(t, app, "/api/reports")
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "success", body["status"])
		assert.EqualValues(t, len(domain.AllReportKinds()), body["count"])
	})

	t.Run("trailing slash", func(t *testing.T) {
		rec := get(t, app, "/api/reports/")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("weekend has no data", func(t *testing.T) {
		rec := get(t, app, "/api/reports/twse-market-trades/2024-01-06")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "/errors/data/not-found", decode(t, rec)["type"])
	})

	t.Run("bad kind is a validation problem", func(t *testing.T) {
		rec := get(t, app, "/api/reports/bogus/2024-01-02")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "/errors/validation", decode(t, rec)["type"])
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := get(t, app, "/api/nowhere")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "/errors/not-found", decode(t, rec)["type"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/version", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/reports", nil)
		req.Header.Set("Origin", "https://example.org")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(t, app, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "http_requests_total")
		assert.Contains(t, string(body), "decompositions_total")
	})
}

func TestRouterMetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "none"
	app := newTestApp(t, cfg)

	rec := get(t, app, "/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.5, Burst: 1}
	app := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, app, "/api/version").Code)
	rec := get(t, app, "/api/version")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	// health checks outside /api are never limited
	assert.Equal(t, http.StatusOK, get(t, app, "/healthz").Code)
}

func TestStartStop(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err())
}
