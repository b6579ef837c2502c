// Package middleware provides HTTP middleware for Almanac.
// cors.go allows browser clients from configured origins to call the API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{
		"Content-Type", "If-None-Match", RequestIDHeader, "HX-Request", "HX-Target", "HX-Trigger",
	}, ", ")
	corsExposed = strings.Join([]string{"ETag", RequestIDHeader}, ", ")
)

// CORS lets browser clients on allowedOrigins call the API. "*" allows any
// origin. The API keeps no cookies, so credentials are never allowed.
// Requests from other origins pass through without CORS headers and the
// browser blocks the response.
func CORS(allowedOrigins []string) echo.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			origin := req.Header.Get("Origin")
			if origin == "" || !(allowAll || allowed[origin]) {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")

			if req.Method == http.MethodOptions && req.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", "3600")
				return c.NoContent(http.StatusNoContent)
			}

			h.Set("Access-Control-Expose-Headers", corsExposed)
			return next(c)
		}
	}
}
