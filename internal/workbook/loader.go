// Package workbook reads student assessment results from an .xlsx workbook
// into an assessment.Dataset.
package workbook

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"bedep/internal/assessment"
	"bedep/internal/config"
	apierrors "bedep/internal/errors"
)

// headerScanRows bounds how far down a sheet the header row may sit.
const headerScanRows = 10

// Layout names the sheet and the header text of each column the loader reads.
type Layout struct {
	Sheet          string
	SchoolColumn   string
	BranchColumn   string
	AreaColumns    map[assessment.Area]string
	NotTakenMarker string
}

// DefaultLayout matches the workbook exported by the assessment system.
func DefaultLayout() Layout {
	return LayoutFromConfig(config.Default().Dataset)
}

// LayoutFromConfig builds a Layout from the dataset section of the config.
func LayoutFromConfig(cfg config.DatasetConfig) Layout {
	return Layout{
		Sheet:        cfg.Sheet,
		SchoolColumn: cfg.SchoolColumn,
		BranchColumn: cfg.BranchColumn,
		AreaColumns: map[assessment.Area]string{
			assessment.AreaReading:           cfg.Columns.Reading,
			assessment.AreaScienceLiteracy:   cfg.Columns.ScienceLiteracy,
			assessment.AreaMathLiteracy:      cfg.Columns.MathLiteracy,
			assessment.AreaProblemSolving:    cfg.Columns.ProblemSolving,
			assessment.AreaFinancialLiteracy: cfg.Columns.FinancialLiteracy,
		},
		NotTakenMarker: cfg.NotTakenMarker,
	}
}

// LoadResult is a loaded dataset plus what the loader saw on the way.
type LoadResult struct {
	Dataset      assessment.Dataset
	Sheet        string
	HeaderRow    int
	RowsRead     int
	RowsSkipped  int
	MissingAreas []assessment.Area
}

// Loader reads workbooks laid out as its Layout describes.
type Loader struct {
	layout Layout
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(layout Layout, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		layout: layout,
		logger: logger.With(slog.String("component", "workbook_loader")),
	}
}

// Load opens the workbook at path and reads it.
func (l *Loader) Load(ctx context.Context, path string) (*LoadResult, error) {
	ctx, span := otel.Tracer("bedep/workbook").Start(ctx, "workbook.load")
	defer span.End()
	span.SetAttributes(attribute.String("workbook.path", path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, apierrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	res, err := l.read(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("workbook.sheet", res.Sheet),
		attribute.Int("workbook.records", len(res.Dataset)),
		attribute.Int("workbook.rows_skipped", res.RowsSkipped),
	)
	return res, nil
}

// Read parses a workbook from r.
func (l *Loader) Read(ctx context.Context, r io.Reader) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to parse workbook", err)
	}
	defer f.Close()

	return l.read(ctx, f)
}

func (l *Loader) read(ctx context.Context, f *excelize.File) (*LoadResult, error) {
	layout := l.layout
	if layout.SchoolColumn == "" || layout.BranchColumn == "" {
		return nil, apierrors.NewConfigError("layout needs school and branch column headers", nil)
	}

	sheet, rows, headerIdx, err := l.findSheet(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns := mapColumns(rows[headerIdx])
	schoolCol := columns[normalizeHeader(layout.SchoolColumn)]
	branchCol, ok := columns[normalizeHeader(layout.BranchColumn)]
	if !ok {
		return nil, apierrors.NewMissingColumnError(sheet, layout.BranchColumn)
	}

	res := &LoadResult{Sheet: sheet, HeaderRow: headerIdx + 1}

	areaCols := make(map[assessment.Area]int, len(layout.AreaColumns))
	for _, area := range assessment.AllAreas() {
		header, configured := layout.AreaColumns[area]
		idx, found := columns[normalizeHeader(header)]
		if !configured || !found {
			res.MissingAreas = append(res.MissingAreas, area)
			l.logger.WarnContext(ctx, "subject column not found",
				slog.String("area", string(area)),
				slog.String("header", header),
				slog.String("sheet", sheet))
			continue
		}
		areaCols[area] = idx
	}

	marker := strings.TrimSpace(layout.NotTakenMarker)
	if marker == "" {
		marker = assessment.NotTaken
	}

	res.Dataset = make(assessment.Dataset, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if blankRow(row) {
			continue
		}
		res.RowsRead++

		school := cell(row, schoolCol)
		if school == "" {
			res.RowsSkipped++
			continue
		}

		rec := assessment.StudentRecord{
			School:  school,
			Branch:  cell(row, branchCol),
			Markers: make(map[assessment.Area]string, len(areaCols)),
		}
		for area, idx := range areaCols {
			v := cell(row, idx)
			if strings.EqualFold(v, marker) {
				v = assessment.NotTaken
			}
			rec.Markers[area] = v
		}
		res.Dataset = append(res.Dataset, rec)
	}

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("sheet", sheet),
		slog.Int("header_row", res.HeaderRow),
		slog.Int("rows_read", res.RowsRead),
		slog.Int("rows_skipped", res.RowsSkipped),
		slog.Int("records", len(res.Dataset)))

	return res, nil
}

// findSheet returns the configured sheet if it has a header row, otherwise
// the first sheet that does.
func (l *Loader) findSheet(ctx context.Context, f *excelize.File) (string, [][]string, int, error) {
	layout := l.layout
	candidates := make([]string, 0, len(f.GetSheetList())+1)
	if layout.Sheet != "" {
		candidates = append(candidates, layout.Sheet)
	}
	for _, name := range f.GetSheetList() {
		if name != layout.Sheet {
			candidates = append(candidates, name)
		}
	}

	for _, name := range candidates {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if idx := findHeaderRow(rows, layout.SchoolColumn); idx >= 0 {
			if name != layout.Sheet {
				l.logger.WarnContext(ctx, "configured sheet has no header row, using fallback",
					slog.String("configured", layout.Sheet),
					slog.String("sheet", name))
			}
			return name, rows, idx, nil
		}
	}

	return "", nil, -1, apierrors.NewMissingColumnError("", layout.SchoolColumn)
}

func findHeaderRow(rows [][]string, schoolHeader string) int {
	want := normalizeHeader(schoolHeader)
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		for _, c := range rows[i] {
			if normalizeHeader(c) == want {
				return i
			}
		}
	}
	return -1
}

// mapColumns indexes a header row by normalized header text. The first
// occurrence of a duplicated header wins.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	return columns
}

// normalizeHeader folds case with Turkish-aware lowering so "ŞUBE" and
// "Şube" match.
func normalizeHeader(s string) string {
	return strings.ToLowerSpecial(unicode.TurkishCase, strings.Join(strings.Fields(s), " "))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
