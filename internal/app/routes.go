// Package app — routes.go mounts every plugin on the Echo router and serves
// the health and metrics endpoints.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keyxmakerx/almanac/internal/middleware"
	"github.com/keyxmakerx/almanac/internal/plugins/calendarapi"
	"github.com/keyxmakerx/almanac/internal/plugins/customcal"
)

// RegisterRoutes sets up all application routes. Call after LoadDefinitions
// so the default calendar resolves.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// --- Operational Routes ---

	e.GET("/healthz", a.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(a.Metrics, promhttp.HandlerOpts{})))

	// --- API Routes ---
	api := e.Group("/api/v1")

	calMetrics, err := calendarapi.NewMetrics(a.Metrics)
	if err != nil {
		return err
	}
	calHandler, err := calendarapi.NewHandler(a.Registry, a.Config.Calendar.Default, a.Config.Calendar.SelectorStep, calMetrics)
	if err != nil {
		return err
	}
	calendarapi.RegisterRoutes(api, calHandler)

	customcal.RegisterRoutes(api, customcal.NewHandler(a.Definitions),
		middleware.RateLimit(a.Config.HTTP.WriteRateLimit, time.Minute))

	return nil
}

// healthz reports whether the stores this instance depends on answer.
// Without storage there is nothing to check.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		status["status"] = "degraded"
	}
	return c.JSON(code, status)
}
