package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the Go runtime.
type RuntimeStats struct {
	Goroutines  int           `json:"goroutines"`
	HeapAlloc   uint64        `json:"heap_alloc_bytes"`
	HeapSys     uint64        `json:"heap_sys_bytes"`
	GCCount     uint32        `json:"gc_count"`
	LastGCPause time.Duration `json:"last_gc_pause_ns"`
	Uptime      time.Duration `json:"uptime_ns"`
}

// RuntimeCollector periodically records runtime gauges.
type RuntimeCollector struct {
	startTime  time.Time
	interval   time.Duration
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
	lastGC     uint32
}

// NewRuntimeCollector creates the runtime gauges on meter.
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	c := &RuntimeCollector{startTime: time.Now(), interval: interval}
	var err error

	if c.goroutines, err = meter.Int64Gauge("runtime_goroutines",
		metric.WithDescription("Number of active goroutines")); err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}
	if c.heapAlloc, err = meter.Int64Gauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"), metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create heap gauge: %w", err)
	}
	if c.heapSys, err = meter.Int64Gauge("runtime_heap_sys_bytes",
		metric.WithDescription("Heap memory obtained from the OS"), metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create heap sys gauge: %w", err)
	}
	if c.gcPause, err = meter.Float64Histogram("runtime_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create gc histogram: %w", err)
	}
	if c.uptime, err = meter.Float64Gauge("process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return c, nil
}

// Snapshot reads the runtime without recording anything.
func (c *RuntimeCollector) Snapshot() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   mem.HeapAlloc,
		HeapSys:     mem.HeapSys,
		GCCount:     mem.NumGC,
		LastGCPause: time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		Uptime:      time.Since(c.startTime),
	}
}

// Collect records one snapshot.
func (c *RuntimeCollector) Collect(ctx context.Context) RuntimeStats {
	stats := c.Snapshot()

	c.goroutines.Record(ctx, int64(stats.Goroutines))
	c.heapAlloc.Record(ctx, int64(stats.HeapAlloc))
	c.heapSys.Record(ctx, int64(stats.HeapSys))
	c.uptime.Record(ctx, stats.Uptime.Seconds())

	if stats.GCCount != c.lastGC && stats.LastGCPause > 0 {
		c.gcPause.Record(ctx, stats.LastGCPause.Seconds())
		c.lastGC = stats.GCCount
	}

	return stats
}

// Run collects every interval until ctx is done.
func (c *RuntimeCollector) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Collect(ctx)
		}
	}
}
