package calendarapi

import (
	"net/http"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/calendar"
)

func TestMonthStartsICS_Hijri(t *testing.T) {
	h, err := calendar.NewHijri()
	require.NoError(t, err)

	feed, err := MonthStartsICS(h, 1445, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(feed))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 12)

	first := events[0]
	assert.Equal(t, "1 Muharram 1445", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20230719", first.GetProperty(ical.ComponentPropertyDtStart).Value)

	ramadan := events[8]
	assert.Equal(t, "1 Ramadan 1445", ramadan.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "20240311", ramadan.GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Equal(t, "hijri-1445-9@almanac", ramadan.GetProperty(ical.ComponentPropertyUniqueId).Value)
}

func TestMonthStartsICS_InvalidYear(t *testing.T) {
	g, err := calendar.NewGregorian()
	require.NoError(t, err)
	_, err = MonthStartsICS(g, 2_000_000, time.Now())
	assert.Error(t, err)
}

func TestICSHandler(t *testing.T) {
	s := newTestServer(t, "gregorian")

	rec := s.do(http.MethodGet, "/api/v1/calendars/gregorian/ics?year=2024", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gregorian-2024.ics")
	assert.Contains(t, rec.Body.String(), "1 February 2024")

	rec = s.do(http.MethodGet, "/api/v1/calendars/gregorian/ics", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
