package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"bedep/internal/config"
	apierrors "bedep/internal/errors"
	"bedep/internal/files"
	"bedep/internal/infrastructure"
	customMiddleware "bedep/internal/middleware"
	"bedep/internal/services"
	handlers "bedep/internal/transport/http"
	"bedep/internal/workbook"
	"bedep/pkg/contracts"
)

// AppName is the human readable application name
const AppName = "BEDEP Proficiency Dashboard"

// compressLevel is the gzip level applied to JSON and CSV responses.
const compressLevel = 5

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	Services       *ServiceContainer
	ErrorHandler   *apierrors.ErrorHandler
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.BusinessMetrics
	RuntimeMetrics *infrastructure.RuntimeMetrics
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication creates the application with the global logger described
// by cfg.Logging.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return NewApplicationWithLogger(cfg, logger)
}

// NewApplicationWithLogger creates the application with an injected logger.
// The workbook is loaded before it returns; a load failure is fatal.
func NewApplicationWithLogger(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("dataset", cfg.Dataset.Path))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
		OTelProviders: otelProviders,
	}

	if err := app.initializeMetrics(); err != nil {
		app.shutdownTelemetry(context.Background())
		return nil, err
	}

	app.initializeServices()

	if err := app.loadDataset(context.Background()); err != nil {
		app.shutdownTelemetry(context.Background())
		return nil, err
	}

	if err := app.setupRouter(); err != nil {
		app.shutdownTelemetry(context.Background())
		return nil, err
	}
	app.createServer()

	return app, nil
}

func (a *Application) initializeMetrics() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(a.OTelProviders.Meter, 0)
	if err != nil {
		return fmt.Errorf("failed to create runtime metrics: %w", err)
	}
	a.RuntimeMetrics = runtimeMetrics
	return nil
}

func (a *Application) initializeServices() {
	dashboard := services.NewDashboardService(a.Config, a.Metrics, a.Logger)
	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    services.NewHealthService(contracts.Version, dashboard, a.Logger),
	}
}

// loadDataset reads the configured workbook into the dashboard service. A
// directory path resolves to its newest workbook.
func (a *Application) loadDataset(ctx context.Context) error {
	path, err := files.NewDiscovery("").ResolveWorkbook(a.Config.Dataset.Path)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Failed to locate assessment workbook",
			slog.String("path", a.Config.Dataset.Path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to load dataset %s: %w", a.Config.Dataset.Path, err)
	}

	res, err := workbook.NewLoader(workbook.LayoutFromConfig(a.Config.Dataset), a.Logger).Load(ctx, path)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Failed to load assessment workbook",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	a.Services.Dashboard.SetDataset(ctx, res, path)
	return nil
}

// setupRouter builds the router. Middleware order:
// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS →
// Compress → RateLimit → Timeout.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler)

	// Scrapes stay outside the instrumented group.
	r.Get("/metrics", metricsHandler.GetMetrics)

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		r.Use(customMiddleware.Compress(compressLevel))

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))

			if a.Config.Security.RateLimit.Enabled {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Security.RateLimit.RPS,
					a.Config.Security.RateLimit.Burst,
					a.Logger,
				).Handler)
			}
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
			r.Get("/metrics/runtime", metricsHandler.GetRuntime)

			dashboardHandler.Routes(r)
		})

		r.NotFound(a.ErrorHandler.NotFound)
		r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)
	})

	a.Router = r
	return nil
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
	}
	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run listens on the configured port and serves until ctx is cancelled or
// SIGINT/SIGTERM arrives.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln together with the runtime metrics
// collector, then shuts down gracefully once ctx is done or either fails.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Application started",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.RuntimeMetrics.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown requested")
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.shutdownTelemetry(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}
