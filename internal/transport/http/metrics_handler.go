package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	apierrors "bedep/internal/errors"
	"bedep/internal/infrastructure"
)

// MetricsHandler serves the Prometheus scrape endpoint and a JSON runtime
// snapshot.
type MetricsHandler struct {
	scrape       http.Handler
	startTime    time.Time
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a new metrics handler. scrape is nil when the
// metric exporter is disabled.
func NewMetricsHandler(scrape http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{
		scrape:       scrape,
		startTime:    time.Now(),
		errorHandler: errorHandler,
	}
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.scrape == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.scrape.ServeHTTP(w, r)
}

// GetRuntime handles GET /api/metrics/runtime
func (h *MetricsHandler) GetRuntime(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   infrastructure.CurrentRuntimeStats(h.startTime),
	})
}
