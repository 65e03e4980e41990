package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bedep/internal/assessment"
	"bedep/internal/config"
	"bedep/internal/infrastructure"
	"bedep/internal/workbook"
	api "bedep/pkg/contracts/api/v1"
	"bedep/pkg/contracts/domain"
)

// loadedDataset is the immutable state installed by SetDataset.
type loadedDataset struct {
	records assessment.Dataset
	stats   domain.DatasetStats
}

// DashboardService answers dashboard interactions against the dataset
// loaded at startup. It is safe for concurrent use.
type DashboardService struct {
	data     atomic.Pointer[loadedDataset]
	defaults config.DashboardConfig
	dataset  config.DatasetConfig
	validate *validator.Validate
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service. A nil metrics falls back
// to no-op instruments.
func NewDashboardService(cfg *config.Config, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	return &DashboardService{
		defaults: cfg.Dashboard,
		dataset:  cfg.Dataset,
		validate: validator.New(),
		tracer:   otel.Tracer(infrastructure.InstrumentationName),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "dashboard_service")),
		now:      time.Now,
	}
}

// SetDataset installs the result of a workbook load. source names where the
// workbook came from.
func (s *DashboardService) SetDataset(ctx context.Context, res *workbook.LoadResult, source string) {
	missing := make([]string, 0, len(res.MissingAreas))
	for _, a := range res.MissingAreas {
		missing = append(missing, string(a))
	}

	loaded := &loadedDataset{
		records: res.Dataset,
		stats: domain.DatasetStats{
			Source:       source,
			Sheet:        res.Sheet,
			Records:      len(res.Dataset),
			Schools:      len(assessment.Schools(res.Dataset)),
			RowsSkipped:  res.RowsSkipped,
			MissingAreas: missing,
			LoadedAt:     s.now(),
		},
	}

	var previous int
	if old := s.data.Swap(loaded); old != nil {
		previous = len(old.records)
	}
	s.metrics.DatasetRecordsLoaded.Add(ctx, int64(len(res.Dataset)-previous))
	if res.RowsSkipped > 0 {
		s.metrics.DatasetRowsSkipped.Add(ctx, int64(res.RowsSkipped))
	}

	s.logger.InfoContext(ctx, "dataset installed",
		slog.String("source", source),
		slog.Int("records", loaded.stats.Records),
		slog.Int("schools", loaded.stats.Schools),
		slog.Int("rows_skipped", res.RowsSkipped))
}

// Loaded reports whether a dataset is installed.
func (s *DashboardService) Loaded() bool {
	return s.data.Load() != nil
}

func (s *DashboardService) current() (*loadedDataset, error) {
	d := s.data.Load()
	if d == nil {
		return nil, ErrDatasetNotLoaded
	}
	return d, nil
}

// Render computes the three dashboard panels for req.
func (s *DashboardService) Render(ctx context.Context, req api.DashboardRequest) (*domain.DashboardView, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "dashboard.render")
	defer span.End()

	data, err := s.current()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sel, opts, err := s.resolve(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid selection")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("dashboard.area", string(sel.Area)),
		attribute.String("dashboard.school", sel.School),
		attribute.String("dashboard.branch", sel.Branch),
		attribute.String("dashboard.chart", string(opts.ChartKind)),
	)

	summary := assessment.NewAggregator(opts).Summarize(data.records, sel)
	view := s.buildView(summary)

	areaAttr := attribute.String("area", string(sel.Area))
	s.metrics.DashboardRendersTotal.Add(ctx, 1,
		metric.WithAttributes(areaAttr, attribute.String("chart", string(opts.ChartKind))))
	s.metrics.DashboardRenderDuration.Record(ctx, s.now().Sub(start).Seconds(),
		metric.WithAttributes(areaAttr))
	if summary.Excluded > 0 {
		s.metrics.RecordsExcludedTotal.Add(ctx, int64(summary.Excluded), metric.WithAttributes(areaAttr))
	}

	s.logger.DebugContext(ctx, "dashboard rendered",
		slog.String("area", string(sel.Area)),
		slog.String("school", sel.School),
		slog.String("branch", sel.Branch),
		slog.Int("considered", summary.Considered),
		slog.Int("excluded", summary.Excluded))

	return view, nil
}

// Summarize runs the aggregation for req without building the view.
func (s *DashboardService) Summarize(ctx context.Context, req api.DashboardRequest) (assessment.Summary, error) {
	data, err := s.current()
	if err != nil {
		return assessment.Summary{}, err
	}
	sel, opts, err := s.resolve(req)
	if err != nil {
		return assessment.Summary{}, err
	}
	return assessment.NewAggregator(opts).Summarize(data.records, sel), nil
}

// resolve validates req and fills in the configured defaults.
func (s *DashboardService) resolve(req api.DashboardRequest) (assessment.Selection, assessment.Options, error) {
	if err := s.validate.Struct(req); err != nil {
		return assessment.Selection{}, assessment.Options{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	areaName := req.Area
	if areaName == "" {
		areaName = s.defaults.DefaultArea
	}
	area, ok := assessment.ParseArea(areaName)
	if !ok {
		return assessment.Selection{}, assessment.Options{}, fmt.Errorf("%w: %q", ErrUnknownArea, areaName)
	}

	chart := assessment.ChartKind(req.Chart)
	if chart == "" {
		chart = assessment.ChartKind(s.defaults.DefaultChart)
	}
	guides := s.defaults.GuideLines
	if req.Guides != nil {
		guides = *req.Guides
	}

	school := req.School
	if school == "" || school == s.dataset.AllSchoolsLabel {
		school = assessment.AllSchools
	}

	sel := assessment.Selection{Area: area, School: school, Branch: req.Branch}
	return sel, assessment.Options{ChartKind: chart, IncludeGuideLines: guides}, nil
}

func (s *DashboardService) buildView(sum assessment.Summary) *domain.DashboardView {
	area := sum.Selection.Area
	view := &domain.DashboardView{
		Area:       string(area),
		AreaName:   area.DisplayName(),
		School:     sum.Selection.School,
		Branch:     sum.Selection.Branch,
		Chart:      string(sum.Options.ChartKind),
		GuideLines: sum.Guides != nil,
		General: domain.Panel{
			Title:  "Overall Proficiency Distribution",
			Total:  sum.Overall.Total,
			Shares: toLevelShares(sum.Overall),
			Guides: sum.Guides,
		},
		Considered:  sum.Considered,
		Excluded:    sum.Excluded,
		GeneratedAt: s.now().UTC(),
	}

	if sum.School == nil {
		view.SchoolPanel = domain.Panel{
			Title:       "No School Selected",
			Placeholder: domain.PlaceholderSelectSchool,
		}
		view.Branches = domain.BranchPanel{
			Title:       "No Branch Data",
			Placeholder: domain.PlaceholderNoBranchData,
		}
		return view
	}

	school := sum.Selection.School
	view.SchoolPanel = domain.Panel{
		Title:  school + " Proficiency Distribution",
		Total:  sum.School.Total,
		Shares: toLevelShares(*sum.School),
		Guides: sum.Guides,
	}

	view.Branches = domain.BranchPanel{
		Title:  school + " Branch Proficiency Distribution",
		Guides: sum.Guides,
	}
	for _, b := range sum.Branches {
		view.Branches.Branches = append(view.Branches.Branches, domain.BranchSeries{
			Branch: b.Branch,
			Total:  b.Distribution.Total,
			Shares: toLevelShares(b.Distribution),
		})
	}
	if len(view.Branches.Branches) == 0 {
		view.Branches.Placeholder = domain.PlaceholderNoBranchData
	}
	return view
}

func toLevelShares(d assessment.Distribution) []domain.LevelShare {
	shares := d.Shares()
	out := make([]domain.LevelShare, 0, len(shares))
	for _, sh := range shares {
		out = append(out, domain.LevelShare{
			Level:   sh.Level.String(),
			Index:   int(sh.Level),
			Color:   sh.Level.Color(),
			Count:   sh.Count,
			Percent: sh.Percent,
		})
	}
	return out
}

// Areas lists the subject areas with their spreadsheet headers.
func (s *DashboardService) Areas() []domain.AreaInfo {
	columns := workbook.LayoutFromConfig(s.dataset).AreaColumns
	areas := make([]domain.AreaInfo, 0, len(assessment.AllAreas()))
	for _, a := range assessment.AllAreas() {
		areas = append(areas, domain.AreaInfo{
			ID:     string(a),
			Name:   a.DisplayName(),
			Column: columns[a],
		})
	}
	return areas
}

// Levels lists the proficiency levels in display order.
func (s *DashboardService) Levels() []domain.LevelInfo {
	levels := make([]domain.LevelInfo, 0, assessment.LevelCount)
	for _, l := range assessment.AllLevels() {
		levels = append(levels, domain.LevelInfo{Index: int(l), Name: l.String(), Color: l.Color()})
	}
	return levels
}

// Schools returns the school dropdown source.
func (s *DashboardService) Schools(ctx context.Context) (*domain.SchoolList, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	return &domain.SchoolList{
		AllValue: assessment.AllSchools,
		AllLabel: s.dataset.AllSchoolsLabel,
		Schools:  assessment.Schools(data.records),
	}, nil
}

// Branches returns the branches of school. An unknown school has none.
func (s *DashboardService) Branches(ctx context.Context, school string) (*domain.BranchList, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(api.BranchesRequest{School: school}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return &domain.BranchList{
		School:   school,
		Branches: assessment.Branches(data.records, school),
	}, nil
}

// Stats describes the installed dataset.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DatasetStats, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	stats := data.stats
	return &stats, nil
}
