package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"bedep/internal/assessment"
	"bedep/pkg/contracts/domain"
)

// Panel identifiers used in the first export column.
const (
	PanelGeneral = "general"
	PanelSchool  = "school"
	PanelBranch  = "branch"
	PanelGuide   = "guide"
)

// DashboardExporter flattens dashboard views for export
type DashboardExporter struct{}

// NewDashboardExporter creates a new dashboard exporter
func NewDashboardExporter() *DashboardExporter {
	return &DashboardExporter{}
}

// ExportCSV writes view to w as CSV.
func (d *DashboardExporter) ExportCSV(w io.Writer, view *domain.DashboardView, bom bool) error {
	rows := d.viewToRows(view)

	slog.Debug("Writing dashboard CSV",
		slog.String("area", view.Area),
		slog.String("school", view.School),
		slog.Int("record_count", len(rows)))

	return NewCSVWriter(w).WriteCSV(WriteOptions{
		Headers:   d.getHeaders(),
		Records:   rows,
		BOMPrefix: bom,
	})
}

// ExportTable writes view to w as an aligned text table.
func (d *DashboardExporter) ExportTable(w io.Writer, view *domain.DashboardView) error {
	fmt.Fprintf(w, "%s | school: %s", view.AreaName, view.School)
	if view.Branch != "" {
		fmt.Fprintf(w, " | branch: %s", view.Branch)
	}
	fmt.Fprintf(w, " | considered: %d, excluded: %d\n\n", view.Considered, view.Excluded)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(tw, strings.Join(d.getHeaders(), "\t")+"\t")
	for _, row := range d.viewToRows(view) {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, p := range []string{view.SchoolPanel.Placeholder, view.Branches.Placeholder} {
		if p != "" {
			fmt.Fprintf(w, "\n%s", p)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (d *DashboardExporter) getHeaders() []string {
	return []string{"Panel", "Series", "Level", "Count", "Percent"}
}

// viewToRows emits one row per level of every populated panel, then one
// row per guide checkpoint labelled with the level it closes.
func (d *DashboardExporter) viewToRows(view *domain.DashboardView) [][]string {
	rows := make([][]string, 0, 4*assessment.LevelCount)

	rows = appendShares(rows, PanelGeneral, assessment.AllSchools, view.General.Shares)
	if view.SchoolPanel.Placeholder == "" {
		rows = appendShares(rows, PanelSchool, view.School, view.SchoolPanel.Shares)
	}
	for _, b := range view.Branches.Branches {
		rows = appendShares(rows, PanelBranch, b.Branch, b.Shares)
	}

	levels := assessment.AllLevels()
	for i, g := range view.General.Guides {
		if i >= len(levels) {
			break
		}
		rows = append(rows, []string{PanelGuide, "", levels[i].String(), "", formatFloat(g)})
	}
	return rows
}

func appendShares(rows [][]string, panel, series string, shares []domain.LevelShare) [][]string {
	for _, s := range shares {
		rows = append(rows, []string{panel, series, s.Level, formatInt(s.Count), formatFloat(s.Percent)})
	}
	return rows
}
