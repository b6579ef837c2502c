// Package calendarapi — ics.go renders a year of month starts as an
// iCalendar feed so calendar clients can show the calendar's months.
package calendarapi

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/keyxmakerx/almanac/internal/calendar"
)

// MonthStartsICS builds an iCalendar feed with one all-day event on the
// Gregorian date each month of year begins in t. Subscribing to the feed
// shows the calendar's month boundaries in an ordinary calendar client.
func MonthStartsICS(t calendar.Type, year int, stamp time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//almanac//" + t.Name() + "//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s %d", t.Name(), year))

	months := t.Months()
	for m := 1; m <= len(months); m++ {
		start, err := t.ConvertToGregorian(year, m, 1, 0, 0)
		if err != nil {
			return "", err
		}
		n, err := t.DaysInMonth(year, m)
		if err != nil {
			return "", err
		}

		first := time.Date(start.Year, time.Month(start.Month), start.Day, 0, 0, 0, 0, time.UTC)
		ev := cal.AddEvent(fmt.Sprintf("%s-%d-%d@almanac", t.Name(), year, m))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(fmt.Sprintf("1 %s %d", months[m-1], year))
		ev.SetDescription(fmt.Sprintf("%s has %d days", months[m-1], n))
		ev.SetAllDayStartAt(first)
		ev.SetAllDayEndAt(first.AddDate(0, 0, 1))
	}
	return cal.Serialize(), nil
}
