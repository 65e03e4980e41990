package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of process resource usage.
type RuntimeStats struct {
	Goroutines    int64         `json:"goroutines"`
	MemoryInUse   int64         `json:"memory_in_use_bytes"`
	MemorySystem  int64         `json:"memory_system_bytes"`
	GCCount       uint32        `json:"gc_count"`
	CPUCount      int           `json:"cpu_count"`
	ProcessUptime time.Duration `json:"uptime"`
	Timestamp     time.Time     `json:"timestamp"`
}

// RuntimeMetrics records Go runtime gauges on a fixed interval.
type RuntimeMetrics struct {
	goroutines   metric.Int64Gauge
	memoryInUse  metric.Int64Gauge
	memorySystem metric.Int64Gauge
	uptime       metric.Float64Gauge

	startTime time.Time
	interval  time.Duration
}

// NewRuntimeMetrics creates the runtime gauges on meter.
func NewRuntimeMetrics(meter metric.Meter, interval time.Duration) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	memoryInUse, err := meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memorySystem, err := meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &RuntimeMetrics{
		goroutines:   goroutines,
		memoryInUse:  memoryInUse,
		memorySystem: memorySystem,
		uptime:       uptime,
		startTime:    time.Now(),
		interval:     interval,
	}, nil
}

// Collect takes a snapshot and records it.
func (rm *RuntimeMetrics) Collect(ctx context.Context) *RuntimeStats {
	stats := CurrentRuntimeStats(rm.startTime)

	rm.goroutines.Record(ctx, stats.Goroutines)
	rm.memoryInUse.Record(ctx, stats.MemoryInUse)
	rm.memorySystem.Record(ctx, stats.MemorySystem)
	rm.uptime.Record(ctx, stats.ProcessUptime.Seconds())

	return stats
}

// Run collects until ctx is cancelled.
func (rm *RuntimeMetrics) Run(ctx context.Context) error {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	rm.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			rm.Collect(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// CurrentRuntimeStats reads the runtime counters without recording them.
func CurrentRuntimeStats(startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeStats{
		Goroutines:    int64(runtime.NumGoroutine()),
		MemoryInUse:   int64(memStats.Alloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(startTime),
		Timestamp:     time.Now(),
	}
}
