package services

import (
	"context"
	"log/slog"
	"time"

	"bedep/internal/infrastructure"
	"bedep/pkg/contracts"
	"bedep/pkg/contracts/domain"
)

// DatasetStatus is what the health checks need to know about the dataset.
type DatasetStatus interface {
	Loaded() bool
	Stats(ctx context.Context) (*domain.DatasetStats, error)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   DatasetStatus
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth     `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, dataset DatasetStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(ctx),
		},
	}
	if status.Services["dataset"].Status != "ready" {
		status.Status = "degraded"
	}
	return status
}

// ReadinessCheck reports ready once the dataset is installed.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(ctx),
		},
	}

	for name, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   infrastructure.CurrentRuntimeStats(hs.startTime),
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	info := contracts.GetVersionInfo()
	if hs.version != "" {
		info.Version = hs.version
	}
	return info
}

// IsReady reports whether the service can answer dashboard requests.
func (hs *HealthService) IsReady(ctx context.Context) bool {
	return hs.ReadinessCheck(ctx).Status == "ready"
}

func (hs *HealthService) checkDataset(ctx context.Context) ServiceHealth {
	if hs.dataset == nil || !hs.dataset.Loaded() {
		return ServiceHealth{Status: "not_ready", Message: ErrDatasetNotLoaded.Error()}
	}
	stats, err := hs.dataset.Stats(ctx)
	if err != nil {
		return ServiceHealth{Status: "error", Message: err.Error()}
	}
	if stats.Records == 0 {
		return ServiceHealth{Status: "ready", Message: "dataset is empty"}
	}
	return ServiceHealth{Status: "ready"}
}
