package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	promclient "github.com/prometheus/client_golang/prometheus"

	"twxcli/internal/config"
	"twxcli/internal/dataprocessing"
	apperrors "twxcli/internal/errors"
	"twxcli/internal/exporter"
	"twxcli/internal/infrastructure"
	customMiddleware "twxcli/internal/middleware"
	"twxcli/internal/scraper"
	"twxcli/internal/services"
	httpHandlers "twxcli/internal/transport/http"
)

const (
	// AppName is the application name
	AppName = "twxcli"

	runtimeInterval = 15 * time.Second
)

// Set at build time with -ldflags "-X twxcli/internal/app.Version=..."
var (
	Version   = "dev"
	BuildTime = ""
	Commit    = ""
)

// Application represents the main application
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeCollector
	Services      *ServiceContainer

	errorHandler *apperrors.ErrorHandler
	validator    *customMiddleware.RequestValidator
}

// ServiceContainer holds the wired services shared by the server and the CLI.
type ServiceContainer struct {
	Reports  *services.ReportService
	Health   *services.HealthService
	Exporter *exporter.Exporter
	Fetcher  *scraper.Fetcher
	Engine   *dataprocessing.Engine
}

// Option customizes New.
type Option func(*options)

type options struct {
	console    io.Writer
	logger     *slog.Logger
	registerer *promclient.Registry
}

// WithConsole sends console logs to w instead of stdout.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithLogger uses logger instead of building one from the logging config.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry registers metrics on reg instead of the default registry.
func WithRegistry(reg *promclient.Registry) Option {
	return func(o *options) { o.registerer = reg }
}

// New wires every component for cfg.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	o := options{console: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logCfg := cfg.Logging
		logCfg.FilePath = paths.LogFile(logCfg.FilePath)
		if logger, err = infrastructure.InitializeLoggerWithConsole(logCfg, o.console); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.ServiceVersion = Version
	otelCfg.Registerer = o.registerer
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	collector, err := infrastructure.NewRuntimeCollector(providers.Meter, runtimeInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime collector: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Runtime:       collector,
		errorHandler:  apperrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
		validator:     customMiddleware.NewRequestValidator(),
	}

	app.Services = BuildServices(cfg, paths, logger,
		services.WithMetrics(metrics),
		services.WithTracer(providers.Tracer))
	app.Services.Health = services.NewHealthService(
		services.BuildInfo{Version: Version, BuildTime: BuildTime, Commit: Commit},
		paths, collector, logger)

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	logger.Info("Application initialized",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("base_dir", paths.BaseDir))
	return app, nil
}

// BuildServices wires the scraper, engine, report service and exporter. The
// health service is left nil; it needs a running server's runtime collector.
func BuildServices(cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts ...services.ReportServiceOption) *ServiceContainer {
	clientCfg := scraper.DefaultClientConfig()
	clientCfg.Timeout = cfg.Scraper.Timeout
	clientCfg.UserAgent = cfg.Scraper.UserAgent
	clientCfg.RequestsPerSec = cfg.Scraper.RequestsPerSec
	clientCfg.Burst = cfg.Scraper.Burst
	clientCfg.MaxRetries = cfg.Scraper.MaxRetries
	clientCfg.RetryBaseDelay = cfg.Scraper.RetryBaseDelay

	endpoints := scraper.Endpoints{
		TAIFEX: cfg.Scraper.TAIFEXURL,
		TWSE:   cfg.Scraper.TWSEURL,
		TPEx:   cfg.Scraper.TPExURL,
		ISIN:   cfg.Scraper.ISINURL,
	}

	fetcher := scraper.NewFetcher(scraper.NewClient(clientCfg, logger), endpoints, logger)
	engine := dataprocessing.NewEngine(dataprocessing.DefaultCatalog(), dataprocessing.WithLogger(logger))

	opts = append([]services.ReportServiceOption{services.WithServiceLogger(logger)}, opts...)
	return &ServiceContainer{
		Reports:  services.NewReportService(fetcher, engine, cfg.Range, opts...),
		Exporter: exporter.New(paths, cfg.Export, logger),
		Fetcher:  fetcher,
		Engine:   engine,
	}
}

// setupRouter configures the HTTP router with all routes and middleware
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(otelMiddleware.Handler)
	r.Use(apperrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
	r.Use(apperrors.RecoveryMiddleware(a.errorHandler))
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{}))

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	healthHandler := httpHandlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Handle("/metrics", httpHandlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.errorHandler))

	r.Route("/api", func(r chi.Router) {
		a.setupAPIRoutes(r, healthHandler)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API routes
func (a *Application) setupAPIRoutes(r chi.Router, healthHandler *httpHandlers.HealthHandler) {
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		limiter := customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger)
		r.Use(limiter.Handler)
	}
	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

	reportHandler := httpHandlers.NewReportHandler(
		a.Services.Reports,
		a.Services.Exporter,
		a.validator,
		a.errorHandler,
		a.Logger,
	)

	r.Mount("/reports", reportHandler.Routes())
	r.Get("/stocks", reportHandler.ListStocks)
	r.Mount("/health", healthHandler.Routes())
	r.Get("/version", healthHandler.Version)
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

// Start starts the HTTP server and background collectors. A listen failure
// calls cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("base_dir", a.Paths.BaseDir),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("exports_dir", a.Paths.ExportsDir),
		slog.String("logs_dir", a.Paths.LogsDir))

	go a.Runtime.Run(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if status := a.Services.Health.ReadinessCheck(ctx); status.Status != services.StatusReady {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.Any("checks", status.Checks))
	} else {
		a.Logger.InfoContext(ctx, "Startup health check passed")
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
