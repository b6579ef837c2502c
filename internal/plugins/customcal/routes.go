package customcal

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the definition endpoints on g (the /api/v1 group).
// writeMW wraps only the mutating routes, e.g. a rate limiter.
func RegisterRoutes(g *echo.Group, h *Handler, writeMW ...echo.MiddlewareFunc) {
	g.GET("/definitions", h.List)
	g.GET("/definitions/:slug", h.Get)
	g.GET("/definitions/:slug/export", h.Export)

	g.POST("/definitions", h.Create, writeMW...)
	g.POST("/definitions/import", h.Import, writeMW...)
	g.PUT("/definitions/:slug", h.Update, writeMW...)
	g.DELETE("/definitions/:slug", h.Delete, writeMW...)
}
