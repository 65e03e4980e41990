// Package http implements the HTTP handlers of the dashboard service.
//
// Handlers stay thin: they parse query and path parameters, call the
// dashboard or health service and render the result with go-chi/render.
// Service errors are mapped to RFC 7807 problems through the shared
// errors.ErrorHandler.
//
// Routes registered by DashboardHandler:
//
//	GET /areas
//	GET /levels
//	GET /schools
//	GET /schools/{school}/branches
//	GET /dataset
//	GET /dashboard?area=&school=&branch=&chart=&guides=
//	GET /dashboard/export.csv?area=&school=&branch=&chart=&guides=
package http
