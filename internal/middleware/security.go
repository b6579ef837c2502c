// Package middleware provides HTTP middleware for Almanac.
// security.go sets the standard security response headers.
package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for an API whose only HTML output
// is fragments swapped into another page. Nothing here is meant to be
// framed or to load subresources.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			return next(c)
		}
	}
}
