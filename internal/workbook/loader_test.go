package workbook

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bedep/internal/assessment"
	apierrors "bedep/internal/errors"
	"bedep/internal/shared/testutil"
)

func newTestLoader(t *testing.T, layout Layout) *Loader {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewLoader(layout, logger)
}

func TestLoad_SampleWorkbook(t *testing.T) {
	path := testutil.WriteSampleWorkbook(t)

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, testutil.SampleSheet, res.Sheet)
	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, len(testutil.SampleRows), res.RowsRead)
	assert.Zero(t, res.RowsSkipped)
	assert.Empty(t, res.MissingAreas)
	assert.Equal(t, testutil.SampleDataset(), res.Dataset)
}

func TestLoad_FeedsAggregator(t *testing.T) {
	path := testutil.WriteSampleWorkbook(t)

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	rows := assessment.LabelLevels(assessment.Clean(res.Dataset, assessment.AreaReading))
	d := assessment.ComputeDistribution(rows)

	assert.Equal(t, 7, d.Total)
	assert.Equal(t, [assessment.LevelCount]int{1, 1, 2, 1, 2}, d.Counts)
}

func TestLoad_HeaderBelowTitleRows(t *testing.T) {
	rows := append([][]string{
		{"Beceri Değerlendirme Raporu"},
		{},
		testutil.SampleHeader,
	}, testutil.SampleRows[:2]...)
	path := testutil.WriteWorkbook(t, "Sayfa1", []string{"2024-2025"}, rows)

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 4, res.HeaderRow)
	assert.Len(t, res.Dataset, 2)
}

func TestLoad_FallsBackToSheetWithHeader(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Results", testutil.SampleHeader, testutil.SampleRows)

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Results", res.Sheet)
	assert.Len(t, res.Dataset, len(testutil.SampleRows))
}

func TestLoad_HeaderMatchingIgnoresCaseAndSpacing(t *testing.T) {
	header := []string{"  OKUL ", "ŞUBE", "okuma   becerileri"}
	path := testutil.WriteWorkbook(t, "Sayfa1", header, [][]string{{"Atatürk Lisesi", "9-A", "3"}})

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, res.Dataset, 1)
	marker, ok := res.Dataset[0].Marker(assessment.AreaReading)
	assert.True(t, ok)
	assert.Equal(t, "3", marker)
}

func TestLoad_MissingSubjectColumnIsNotFatal(t *testing.T) {
	header := []string{"Okul", "Şube", "Okuma Becerileri"}
	path := testutil.WriteWorkbook(t, "Sayfa1", header, [][]string{{"A", "9-A", "2"}})

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.ElementsMatch(t, []assessment.Area{
		assessment.AreaScienceLiteracy,
		assessment.AreaMathLiteracy,
		assessment.AreaProblemSolving,
		assessment.AreaFinancialLiteracy,
	}, res.MissingAreas)

	_, ok := res.Dataset[0].Marker(assessment.AreaMathLiteracy)
	assert.False(t, ok)
	assert.Empty(t, assessment.Clean(res.Dataset, assessment.AreaMathLiteracy))
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		column string
	}{
		{"no school column", []string{"Şube", "Okuma Becerileri"}, "Okul"},
		{"no branch column", []string{"Okul", "Okuma Becerileri"}, "Şube"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteWorkbook(t, "Sayfa1", tt.header, [][]string{{"x", "1"}})

			_, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
			require.Error(t, err)

			var appErr *apierrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apierrors.ErrTypeParsing, appErr.Type)
			assert.Equal(t, tt.column, appErr.Context["column"])
		})
	}
}

func TestLoad_SkipsRowsWithoutSchool(t *testing.T) {
	rows := [][]string{
		{"A", "9-A", "1"},
		{"", "9-A", "2"},
		{},
		{"B", "9-B", "3"},
	}
	path := testutil.WriteWorkbook(t, "Sayfa1", []string{"Okul", "Şube", "Okuma Becerileri"}, rows)

	res, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.RowsRead, "blank rows are not counted")
	assert.Equal(t, 1, res.RowsSkipped)
	assert.Len(t, res.Dataset, 2)
}

func TestLoad_CustomNotTakenMarker(t *testing.T) {
	layout := DefaultLayout()
	layout.NotTakenMarker = "GİRMEDİ"

	rows := [][]string{{"A", "9-A", "GİRMEDİ"}, {"A", "9-A", "2"}}
	path := testutil.WriteWorkbook(t, "Sayfa1", []string{"Okul", "Şube", "Okuma Becerileri"}, rows)

	res, err := newTestLoader(t, layout).Load(context.Background(), path)
	require.NoError(t, err)

	marker, _ := res.Dataset[0].Marker(assessment.AreaReading)
	assert.Equal(t, assessment.NotTaken, marker)
	assert.Len(t, assessment.Clean(res.Dataset, assessment.AreaReading), 1)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), "does-not-exist.xlsx")

		var appErr *apierrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := t.TempDir() + "/broken.xlsx"
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

		_, err := newTestLoader(t, DefaultLayout()).Load(context.Background(), path)
		assert.Error(t, err)
	})
}

func TestLoad_CancelledContext(t *testing.T) {
	path := testutil.WriteSampleWorkbook(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t, DefaultLayout()).Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_FromReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Okul", "Şube", "Okuma Becerileri"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"A", "9-A", 3.0}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	res, err := newTestLoader(t, DefaultLayout()).Read(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", res.Sheet)
	rows := assessment.Clean(res.Dataset, assessment.AreaReading)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Score)
}

func TestLoader_LogsThroughInjectedLogger(t *testing.T) {
	path := testutil.WriteWorkbook(t, "Results", []string{"Okul", "Şube", "Okuma Becerileri"}, [][]string{{"A", "9-A", "2"}})
	logger, logs := testutil.NewTestLogger(t)

	_, err := NewLoader(DefaultLayout(), logger).Load(context.Background(), path)
	require.NoError(t, err)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "workbook loaded")
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "configured sheet has no header row, using fallback")
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "subject column not found")
	assert.True(t, logs.ContainsAttr("component", "workbook_loader"))
}

func TestLayoutFromConfig(t *testing.T) {
	layout := DefaultLayout()

	assert.Equal(t, "Sayfa1", layout.Sheet)
	assert.Equal(t, "Okul", layout.SchoolColumn)
	assert.Equal(t, "Şube", layout.BranchColumn)
	assert.Equal(t, "Finansal Okuryazarlık", layout.AreaColumns[assessment.AreaFinancialLiteracy])
	assert.Len(t, layout.AreaColumns, len(assessment.AllAreas()))
}
