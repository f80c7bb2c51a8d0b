package http

import (
	"context"
	"io"
	"time"

	"twxcli/internal/exporter"
	"twxcli/internal/services"
	"twxcli/pkg/contracts/domain"
)

// ReportService defines the report operations the API exposes.
type ReportService interface {
	Kinds() []domain.ReportKind
	Decompose(ctx context.Context, kind domain.ReportKind, date time.Time) (*domain.OutputRecord, error)
	DecomposeRange(ctx context.Context, kind domain.ReportKind, from, to time.Time) ([]*domain.OutputRecord, error)
	ListedStocks(ctx context.Context, market string) ([]domain.ListedStock, error)
}

// RecordWriter encodes records as a downloadable file.
type RecordWriter interface {
	Write(w io.Writer, records []*domain.OutputRecord, format exporter.Format, kind domain.ReportKind) error
}

// HealthChecker answers the health checks mounted under /api/health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
