// Package api contains request contracts of the dashboard JSON API.
package api

// DashboardRequest is the dropdown state of one dashboard refresh. Empty
// fields take the configured defaults.
type DashboardRequest struct {
	Area   string `json:"area" query:"area" validate:"omitempty,max=64"`
	School string `json:"school" query:"school" validate:"omitempty,max=200"`
	Branch string `json:"branch" query:"branch" validate:"omitempty,max=100"`
	Chart  string `json:"chart" query:"chart" validate:"omitempty,oneof=bar pie"`
	// Guides is nil when the caller left the toggle out.
	Guides *bool `json:"guides,omitempty" query:"guides"`
}

// BranchesRequest selects the branches of one school.
type BranchesRequest struct {
	School string `json:"school" param:"school" validate:"required,max=200"`
}
