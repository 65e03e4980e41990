package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"bedep/internal/assessment"
	apierrors "bedep/internal/errors"
	"bedep/internal/exporter"
	bedepmw "bedep/internal/middleware"
	"bedep/internal/services"
	api "bedep/pkg/contracts/api/v1"
)

var chartKinds = []string{string(assessment.ChartBar), string(assessment.ChartPie)}

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	query        *bedepmw.QueryParamValidator
	exporter     *exporter.DashboardExporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		query:        bedepmw.NewQueryParamValidator(logger, errorHandler),
		exporter:     exporter.NewDashboardExporter(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes registers the dashboard routes on r
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/areas", h.GetAreas)
	r.Get("/levels", h.GetLevels)
	r.Get("/dataset", h.GetDataset)

	r.Get("/schools", h.GetSchools)
	r.Route("/schools/{school}", func(r chi.Router) {
		r.Use(h.SchoolCtx)
		r.Get("/branches", h.GetBranches)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.GetDashboard)
		r.Get("/export.csv", h.ExportCSV)
	})
}

type schoolCtxKey struct{}

func contextWithSchool(ctx context.Context, school string) context.Context {
	return context.WithValue(ctx, schoolCtxKey{}, school)
}

func schoolFromContext(ctx context.Context) string {
	school, _ := ctx.Value(schoolCtxKey{}).(string)
	return school
}

// SchoolCtx decodes the {school} path parameter. School names carry spaces
// and Turkish letters, so clients send them percent-encoded.
func (h *DashboardHandler) SchoolCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "school")
		school, err := url.PathUnescape(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("school", "School name is not a valid path segment"))
			return
		}
		school = strings.TrimSpace(school)
		if school == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("school", "School name is required"))
			return
		}

		ctx := contextWithSchool(r.Context(), school)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAreas handles GET /api/areas
func (h *DashboardHandler) GetAreas(w http.ResponseWriter, r *http.Request) {
	areas := h.service.Areas()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   areas,
		"count":  len(areas),
	})
}

// GetLevels handles GET /api/levels
func (h *DashboardHandler) GetLevels(w http.ResponseWriter, r *http.Request) {
	levels := h.service.Levels()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   levels,
		"count":  len(levels),
	})
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// GetSchools handles GET /api/schools
func (h *DashboardHandler) GetSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.service.Schools(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   schools,
		"count":  len(schools.Schools),
	})
}

// GetBranches handles GET /api/schools/{school}/branches
func (h *DashboardHandler) GetBranches(w http.ResponseWriter, r *http.Request) {
	school := schoolFromContext(r.Context())

	branches, err := h.service.Branches(r.Context(), school)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   branches,
		"count":  len(branches.Branches),
	})
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseDashboardRequest(w, r)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "rendering dashboard",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("area", req.Area),
		slog.String("school", req.School),
		slog.String("branch", req.Branch))

	view, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ExportCSV handles GET /api/dashboard/export.csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseDashboardRequest(w, r)
	if !ok {
		return
	}

	view, err := h.service.Render(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportCSV(&buf, view, true); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("export dashboard: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dashboard-%s.csv"`, view.Area))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write csv export",
			slog.String("error", err.Error()))
	}
}

// parseDashboardRequest reads the dropdown state from the query string.
// On failure the problem response has already been written.
func (h *DashboardHandler) parseDashboardRequest(w http.ResponseWriter, r *http.Request) (api.DashboardRequest, bool) {
	q := r.URL.Query()
	req := api.DashboardRequest{
		Area:   strings.TrimSpace(q.Get("area")),
		School: strings.TrimSpace(q.Get("school")),
		Branch: strings.TrimSpace(q.Get("branch")),
	}

	chart, ok := h.query.ValidateEnum(w, r, "chart", chartKinds, "")
	if !ok {
		return req, false
	}
	req.Chart = chart

	if q.Has("guides") {
		guides, ok := h.query.ValidateBool(w, r, "guides", true)
		if !ok {
			return req, false
		}
		req.Guides = &guides
	}
	return req, true
}

// handleServiceError maps service sentinels onto API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusServiceUnavailable,
			"DATASET_NOT_LOADED",
			"No assessment dataset is loaded",
		))
	case errors.Is(err, services.ErrUnknownArea):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("area", "area must be one of: "+areaList()))
	case errors.Is(err, services.ErrInvalidSelection):
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.errorHandler.HandleError(w, r, apierrors.FromValidator(verrs))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func areaList() string {
	areas := assessment.AllAreas()
	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
