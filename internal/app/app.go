// Package app is the application bootstrap and dependency injection root.
// It creates the calendar registry and shared infrastructure (DB pool, Redis
// client, metrics registry, Echo instance) and wires the plugins together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/config"
	"github.com/keyxmakerx/almanac/internal/middleware"
	"github.com/keyxmakerx/almanac/internal/plugins/customcal"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once per process; the CLI builds one without DB or Redis.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB pool. Nil when storage is disabled.
	DB *sql.DB

	// Redis caches definitions. Nil when storage is disabled.
	Redis *redis.Client

	// Registry resolves calendar identifiers for every handler and command.
	Registry *calendar.Registry

	// Definitions manages custom calendars and keeps Registry in sync.
	Definitions customcal.DefinitionService

	// Metrics is the Prometheus registry served on /metrics.
	Metrics *prometheus.Registry

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	sync *cron.Cron
}

// New creates an App. db and rdb may be nil, in which case definitions live
// in memory for the life of the process.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*App, error) {
	resolver, err := timezone.NewLocationResolver(cfg.Calendar.UserTimezone)
	if err != nil {
		return nil, fmt.Errorf("user timezone: %w", err)
	}
	registry, err := calendar.NewRegistry(calendar.RegistryConfig{
		Resolver:                 resolver,
		GregorianStartingWeekday: cfg.Calendar.StartWeekday,
	})
	if err != nil {
		return nil, fmt.Errorf("calendar registry: %w", err)
	}

	repo := customcal.NewMemoryRepository()
	if db != nil {
		repo = customcal.NewDefinitionRepository(db)
	}
	var cache customcal.DefinitionCache
	if rdb != nil {
		cache = customcal.NewRedisCache(rdb, cfg.Storage.CacheTTL)
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	if err := middleware.TrustedProxies(e, cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		Registry:    registry,
		Definitions: customcal.NewDefinitionService(repo, cache, registry),
		Metrics:     metrics,
		Echo:        e,
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	e.HTTPErrorHandler = app.errorHandler

	return app, nil
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: recovery is outermost so it catches panics from the rest.
func (a *App) setupMiddleware() error {
	httpMetrics, err := middleware.NewHTTPMetrics(a.Metrics)
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}

	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(httpMetrics.Middleware())
	a.Echo.Use(middleware.SecurityHeaders())
	if len(a.Config.HTTP.CORSOrigins) > 0 {
		a.Echo.Use(middleware.CORS(a.Config.HTTP.CORSOrigins))
	}
	return nil
}

// LoadDefinitions seeds definitions from the configured file, registers
// every stored definition and then checks that the default calendar
// resolves. An unresolvable default is fatal.
func (a *App) LoadDefinitions(ctx context.Context) error {
	if path := a.Config.Storage.DefinitionsFile; path != "" {
		inputs, err := customcal.LoadFile(path)
		if err != nil {
			return err
		}
		if err := a.Definitions.Seed(ctx, inputs); err != nil {
			return err
		}
		slog.Info("seeded calendar definitions", slog.String("file", path), slog.Int("count", len(inputs)))
	}

	n, err := a.Definitions.LoadAll(ctx)
	if err != nil {
		return err
	}
	slog.Debug("custom calendars registered", slog.Int("count", n))

	if _, err := a.Registry.Resolve(a.Config.Calendar.Default); err != nil {
		return fmt.Errorf("CALENDAR_TYPE %q: %w", a.Config.Calendar.Default, err)
	}
	return nil
}

// StartSync reloads definitions on the configured cron schedule so writes
// made through other instances reach this registry. No-op without storage.
func (a *App) StartSync() error {
	spec := a.Config.Storage.SyncSchedule
	if a.DB == nil || spec == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := a.Definitions.LoadAll(ctx)
		if err != nil {
			slog.Error("definition sync failed", slog.Any("error", err))
			return
		}
		slog.Debug("definitions synced", slog.Int("count", n))
	})
	if err != nil {
		return fmt.Errorf("sync schedule: %w", err)
	}
	c.Start()
	a.sync = c
	slog.Info("definition sync scheduled", slog.String("schedule", spec))
	return nil
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to JSON responses with their status code and safe message.
// Internal causes are logged, never sent.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errType := apperror.TypeInternal
	message := "an unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code, errType, message = appErr.Code, appErr.Type, appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Router errors such as 404 and 405.
		code = echoErr.Code
		errType = strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "_"))
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	body := map[string]string{
		"error":   errType,
		"message": message,
	}
	if id, ok := c.Get("request_id").(string); ok {
		body["request_id"] = id
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Almanac server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("calendar", a.Config.Calendar.Default),
	)
	return a.Echo.Start(addr)
}

// Shutdown stops the sync schedule and drains in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	if a.sync != nil {
		<-a.sync.Stop().Done()
	}
	return a.Echo.Shutdown(ctx)
}
