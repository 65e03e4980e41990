// Package services implements the business logic between the HTTP handlers
// and the assessment aggregation core.
//
// # Services
//
// DashboardService holds the dataset loaded at startup and answers every
// dashboard interaction: the three-panel view, the school and branch
// dropdown lists, the subject-area and level enumerations and the dataset
// statistics. The dataset is immutable once installed; SetDataset swaps it
// atomically, so the service is safe for concurrent requests.
//
// HealthService reports liveness, readiness and version. Readiness
// depends on a dataset being installed.
//
// # Errors
//
// Services return sentinel errors that handlers map to problem responses:
//
//	ErrDatasetNotLoaded  -> 503
//	ErrUnknownArea       -> 400
//	ErrInvalidSelection  -> 400 (wraps validator.ValidationErrors)
//
// # Observability
//
// Render runs under a "dashboard.render" span and records the
// dashboard_renders_total, dashboard_render_duration_seconds and
// dashboard_records_excluded_total instruments from infrastructure.BusinessMetrics.
package services
