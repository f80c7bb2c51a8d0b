package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"twxcli/internal/infrastructure"
	"twxcli/internal/services"
)

// HealthHandler serves the liveness, readiness and version endpoints.
type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  infrastructure.WithComponent(logger, "health_handler"),
	}
}

// Routes returns the health endpoints, mounted under /api/health.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	return r
}

// HealthCheck handles GET /healthz and GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondStatus(w, r, h.checker.HealthCheck, services.StatusOK)
}

// ReadinessCheck handles GET /api/health/ready. It answers 503 until the
// exports directory is writable.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	h.respondStatus(w, r, h.checker.ReadinessCheck, services.StatusReady)
}

// LivenessCheck handles GET /api/health/live.
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	h.respondStatus(w, r, h.checker.LivenessCheck, services.StatusAlive)
}

// Version handles GET /api/version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.checker.Version())
}

func (h *HealthHandler) respondStatus(w http.ResponseWriter, r *http.Request, check func(context.Context) services.HealthStatus, healthy string) {
	status := check(r.Context())
	if status.Status != healthy {
		h.logger.DebugContext(r.Context(), "Health check failed",
			slog.String("path", r.URL.Path),
			slog.String("status", status.Status),
			slog.Any("checks", status.Checks))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}
