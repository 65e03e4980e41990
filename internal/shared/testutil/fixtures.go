package testutil

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bedep/internal/assessment"
)

// SampleSheet is the worksheet name used by the sample workbook.
const SampleSheet = "Sayfa1"

// SampleHeader is the header row of the sample workbook.
var SampleHeader = []string{
	"Okul",
	"Şube",
	"Okuma Becerileri",
	"Fen Okuryazarlığı",
	"Matematik Okuryazarlığı",
	"Problem Çözme Becerileri",
	"Finansal Okuryazarlık",
}

// SampleRows holds eight students across two schools and four branches.
//
// Reading scores are 0,1,2,3 at Atatürk (9-A: 0,1; 9-B: 2,3) and 4,G,4,2
// at Cumhuriyet, so the overall reading distribution over seven leveled
// records is 1/1/2/1/2.
var SampleRows = [][]string{
	{"Atatürk Lisesi", "9-A", "0", "1", "2", "3", "4"},
	{"Atatürk Lisesi", "9-A", "1", "G", "2", "3", "4"},
	{"Atatürk Lisesi", "9-B", "2", "2", "G", "3", "4"},
	{"Atatürk Lisesi", "9-B", "3", "3", "3", "G", "4"},
	{"Cumhuriyet Lisesi", "10-A", "4", "4", "4", "4", "G"},
	{"Cumhuriyet Lisesi", "10-A", "G", "0", "0", "0", "0"},
	{"Cumhuriyet Lisesi", "10-B", "4", "1", "1", "1", "1"},
	{"Cumhuriyet Lisesi", "10-B", "2", "3", "2", "2", "2"},
}

// SampleDataset returns SampleRows as an in-memory dataset.
func SampleDataset() assessment.Dataset {
	areas := assessment.AllAreas()
	ds := make(assessment.Dataset, 0, len(SampleRows))
	for _, row := range SampleRows {
		rec := assessment.StudentRecord{
			School:  row[0],
			Branch:  row[1],
			Markers: make(map[assessment.Area]string, len(areas)),
		}
		for i, area := range areas {
			rec.Markers[area] = row[2+i]
		}
		ds = append(ds, rec)
	}
	return ds
}

// WriteWorkbook writes header and rows to a new .xlsx file under t.TempDir
// and returns its path. Cells that parse as integers are stored as numbers.
func WriteWorkbook(t *testing.T, sheet string, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}

	writeRow := func(rowNum int, values []string) {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			if n, err := strconv.Atoi(v); err == nil {
				cells[i] = n
			} else {
				cells[i] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	writeRow(1, header)
	for i, row := range rows {
		writeRow(i+2, row)
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteSampleWorkbook writes SampleHeader and SampleRows to a workbook.
func WriteSampleWorkbook(t *testing.T) string {
	t.Helper()
	return WriteWorkbook(t, SampleSheet, SampleHeader, SampleRows)
}
