// Package app wires the dashboard service together and runs it.
//
// NewApplication loads nothing from the environment itself: the caller
// passes a validated config.Config. Startup then proceeds as
//
//	1. Initialize logging and OpenTelemetry
//	2. Create business and runtime metrics
//	3. Load the assessment workbook (a failure aborts startup)
//	4. Build services, handlers and the chi router
//	5. Create the HTTP server
//
// Run serves until SIGINT/SIGTERM or context cancellation, then shuts the
// server and telemetry down gracefully.
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
