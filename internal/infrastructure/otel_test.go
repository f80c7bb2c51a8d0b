package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"twxcli/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testOTelConfig isolates each test on its own Prometheus registry.
func testOTelConfig(traceExporter, metricExporter string) *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.Environment = "test"
	cfg.TraceExporter = traceExporter
	cfg.MetricExporter = metricExporter
	cfg.Registerer = promclient.NewRegistry()
	return cfg
}

func shutdown(t *testing.T, providers *OTelProviders) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		Environment:    "production",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    0.25,
	})

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, ServiceVersion, cfg.ServiceVersion)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "none", cfg.MetricExporter)
	assert.Equal(t, 0.25, cfg.SampleRatio)
	assert.Nil(t, cfg.Registerer)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		config      *OTelConfig
		wantTracing bool
		wantMetrics bool
		wantErr     bool
	}{
		{name: "tracing and metrics", config: testOTelConfig("stdout", "prometheus"), wantTracing: true, wantMetrics: true},
		{name: "metrics only", config: testOTelConfig("none", "prometheus"), wantMetrics: true},
		{name: "tracing only", config: testOTelConfig("stdout", "none"), wantTracing: true},
		{name: "everything disabled", config: testOTelConfig("none", "none")},
		{name: "unknown trace exporter", config: testOTelConfig("otlp", "none"), wantErr: true},
		{name: "unknown metric exporter", config: testOTelConfig("none", "statsd"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer shutdown(t, providers)

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("stdout", "none"), testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	ctx = WithTraceID(ctx, traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))

	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestTracePropagation(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("stdout", "none"), testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	tracer := otel.Tracer("propagation-test")

	ctx, parent := tracer.Start(context.Background(), "parent-operation")
	defer parent.End()
	_, child := tracer.Start(ctx, "child-operation")
	defer child.End()

	assert.Equal(t, parent.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.NotEqual(t, parent.SpanContext().SpanID(), child.SpanContext().SpanID())
}

func TestRecordErrorOnSpan(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("stdout", "none"), testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	ctx, span := providers.Tracer.Start(context.Background(), "failing")
	defer span.End()

	assert.NotPanics(t, func() {
		RecordError(ctx, errors.New("boom"))
		RecordError(context.Background(), errors.New("no span"))
	})
}

func TestBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(testOTelConfig("none", "prometheus"), testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	RecordDecomposition(ctx, metrics, "twse-market-trades", ResultOK, 120*time.Millisecond)
	RecordDecomposition(ctx, metrics, "twse-market-trades", ResultError, time.Millisecond)
	RecordFetch(ctx, metrics, "TWSE", "twse-market-trades", 80*time.Millisecond, nil)
	RecordRangeDays(ctx, metrics, "twse-market-trades", 5)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"decompositions_total",
		"decomposition_duration_seconds",
		"exchange_fetches_total",
		"range_days_total",
		"system_errors_total",
	} {
		assert.Contains(t, body.String(), name)
	}
	assert.Contains(t, body.String(), "twse-market-trades")
}

func TestRecordHelpersWithoutMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDecomposition(ctx, nil, "k", ResultOK, time.Second)
		RecordFetch(ctx, nil, "TWSE", "k", time.Second, errors.New("x"))
		RecordRangeDays(ctx, nil, "k", 1)
	})

	noop := NoopBusinessMetrics()
	require.NotNil(t, noop)
	assert.NotPanics(t, func() {
		RecordDecomposition(ctx, noop, "k", ResultNoData, time.Second)
	})
}
