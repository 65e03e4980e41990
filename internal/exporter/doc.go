// Package exporter writes dashboard views as CSV or as aligned text tables.
//
// CSVWriter is the low level writer with optional UTF-8 BOM for spreadsheet
// compatibility. DashboardExporter flattens a domain.DashboardView into one
// row per panel, series and level, followed by the guide line checkpoints.
//
// Example usage:
//
//	exp := exporter.NewDashboardExporter()
//	err := exp.ExportCSV(w, view, true)
package exporter
