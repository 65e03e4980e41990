// Package domain holds the JSON shapes served by the dashboard API.
package domain

import "time"

// Panel placeholders shown when no school is selected.
const (
	PlaceholderSelectSchool = "Please select a school"
	PlaceholderNoBranchData = "No branch data"
)

// DashboardView is the response of one dashboard refresh: the general,
// school and branch panels of the selected subject area.
type DashboardView struct {
	Area        string      `json:"area"`
	AreaName    string      `json:"area_name"`
	School      string      `json:"school"`
	Branch      string      `json:"branch,omitempty"`
	Chart       string      `json:"chart"`
	GuideLines  bool        `json:"guide_lines"`
	General     Panel       `json:"general"`
	SchoolPanel Panel       `json:"school_panel"`
	Branches    BranchPanel `json:"branches"`
	Considered  int         `json:"considered"`
	Excluded    int         `json:"excluded"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Panel is one distribution chart. A panel with a Placeholder has no data.
type Panel struct {
	Title       string       `json:"title"`
	Total       int          `json:"total"`
	Shares      []LevelShare `json:"shares,omitempty"`
	Guides      []float64    `json:"guides,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// BranchPanel stacks one series per branch of the selected school.
type BranchPanel struct {
	Title       string         `json:"title"`
	Branches    []BranchSeries `json:"branches,omitempty"`
	Guides      []float64      `json:"guides,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
}

// BranchSeries is the distribution of one branch.
type BranchSeries struct {
	Branch string       `json:"branch"`
	Total  int          `json:"total"`
	Shares []LevelShare `json:"shares"`
}

// LevelShare is a level's slice of a distribution.
type LevelShare struct {
	Level   string  `json:"level"`
	Index   int     `json:"index"`
	Color   string  `json:"color"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// AreaInfo describes a subject area and the spreadsheet column it is read from.
type AreaInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Column string `json:"column"`
}

// LevelInfo describes a proficiency level.
type LevelInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SchoolList is the school dropdown source. AllValue selects every school
// and AllLabel is how it is shown.
type SchoolList struct {
	AllValue string   `json:"all_value"`
	AllLabel string   `json:"all_label"`
	Schools  []string `json:"schools"`
}

// BranchList holds the branches of one school.
type BranchList struct {
	School   string   `json:"school"`
	Branches []string `json:"branches"`
}

// DatasetStats summarizes the loaded workbook.
type DatasetStats struct {
	Source       string    `json:"source"`
	Sheet        string    `json:"sheet"`
	Records      int       `json:"records"`
	Schools      int       `json:"schools"`
	RowsSkipped  int       `json:"rows_skipped"`
	MissingAreas []string  `json:"missing_areas,omitempty"`
	LoadedAt     time.Time `json:"loaded_at"`
}
