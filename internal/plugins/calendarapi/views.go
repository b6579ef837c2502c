// Package calendarapi — views.go holds helpers for the templ components in
// views.templ. Run `templ generate` after editing the .templ file.
package calendarapi

import (
	"fmt"
	"net/url"

	"github.com/keyxmakerx/almanac/internal/calendar"
)

// monthLink is the HTMX URL of another month of the same calendar.
func monthLink(calName string, year, month int) string {
	return fmt.Sprintf("/api/v1/calendars/%s/month?year=%d&month=%d", url.PathEscape(calName), year, month)
}

func monthClass(g calendar.Grid) string {
	if g.Intercalary {
		return "almanac-month almanac-month--intercalary"
	}
	return "almanac-month"
}
