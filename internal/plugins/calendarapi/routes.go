// Package calendarapi — routes.go registers the calendar endpoints.
package calendarapi

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the calendar endpoints on g (the /api/v1 group).
// ":type" is a registered calendar name or "default".
func RegisterRoutes(g *echo.Group, h *Handler) {
	g.GET("/calendars", h.ListCalendars)

	cg := g.Group("/calendars/:type")
	cg.GET("", h.GetCalendar)
	cg.GET("/canonical", h.Canonical)
	cg.GET("/date", h.Date)
	cg.GET("/format", h.Format)
	cg.GET("/month", h.Month)
	cg.GET("/gregorian", h.Gregorian)
	cg.GET("/from-gregorian", h.FromGregorian)
	cg.GET("/ics", h.ICS)
	cg.POST("/selector/decode", h.DecodeSelector)
	cg.POST("/selector/encode", h.EncodeSelector)
}
