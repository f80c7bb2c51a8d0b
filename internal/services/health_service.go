package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"twxcli/internal/config"
	"twxcli/internal/infrastructure"
)

// RuntimeSnapshotter reports Go runtime statistics.
type RuntimeSnapshotter interface {
	Snapshot() infrastructure.RuntimeStats
}

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	BuildTime string
	Commit    string
}

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	paths     *config.Paths
	runtime   RuntimeSnapshotter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth     `json:"checks,omitempty"`
}

// ServiceHealth represents individual component health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// NewHealthService creates a health service. paths and rt may be nil; readiness
// then skips the directory check and liveness omits runtime statistics.
func NewHealthService(build BuildInfo, paths *config.Paths, rt RuntimeSnapshotter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		build:     build,
		paths:     paths,
		runtime:   rt,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "Health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.build.Version,
	}
}

// LivenessCheck returns liveness status with runtime statistics
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.build.Version,
	}
	if hs.runtime != nil {
		stats := hs.runtime.Snapshot()
		status.Runtime = &stats
	}
	return status
}

// ReadinessCheck reports whether exports can be written.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Checks:    make(map[string]ServiceHealth),
	}

	if hs.paths != nil {
		status.Checks["exports"] = checkDirectory(hs.paths.ExportsDir)
	}

	for name, check := range status.Checks {
		if check.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("message", check.Message))
		}
	}

	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.build.Version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}

	if hs.build.BuildTime != "" {
		result["build_time"] = hs.build.BuildTime
	}
	if hs.build.Commit != "" {
		result["commit"] = hs.build.Commit
	}

	return result
}

// checkDirectory verifies dir exists and accepts new files.
func checkDirectory(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("directory unavailable: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	tmp, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("directory not writable: %v", err)}
	}
	tmp.Close()
	os.Remove(tmp.Name())

	return ServiceHealth{Status: StatusReady}
}
