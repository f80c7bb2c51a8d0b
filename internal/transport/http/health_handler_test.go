package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twxcli/internal/config"
	apierrors "twxcli/internal/errors"
	"twxcli/internal/services"
	"twxcli/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, exportsDir string) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService(services.BuildInfo{Version: "1.0.0"},
		&config.Paths{ExportsDir: exportsDir}, services.StaticRuntime{}, logger)
	h := NewHealthHandler(svc, logger)

	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	r := newHealthRouter(t, t.TempDir())

	tests := []struct {
		path   string
		status string
	}{
		{"/api/health", services.StatusOK},
		{"/api/health/live", services.StatusAlive},
		{"/api/health/ready", services.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body["status"])
			assert.Equal(t, "1.0.0", body["version"])
		})
	}

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"go_version"`)
	})
}

func TestHealthHandlerNotReady(t *testing.T) {
	r := newHealthRouter(t, filepath.Join(t.TempDir(), "absent"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), services.StatusNotReady)
}

func TestMetricsHandler(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(nil, false)

	t.Run("disabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMetricsHandler(nil, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delegates", func(t *testing.T) {
		exposition := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("twxcli_decompositions_total 3\n"))
		})
		rec := httptest.NewRecorder()
		NewMetricsHandler(exposition, errorHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, "twxcli_decompositions_total 3\n", rec.Body.String())
	})
}
