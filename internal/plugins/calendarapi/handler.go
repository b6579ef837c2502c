// Package calendarapi exposes calendar conversions over HTTP: calendar
// shapes, wall time to instant and back, formatting, month grids and the
// date selector round trip.
package calendarapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/dateselect"
	"github.com/keyxmakerx/almanac/internal/middleware"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// DefaultAlias names the configured default calendar in URLs.
const DefaultAlias = "default"

// Handler processes calendar API requests.
type Handler struct {
	registry   *calendar.Registry
	defaultCal string
	step       int
	metrics    *Metrics
}

// NewHandler creates a Handler. defaultCal must resolve in registry; step is
// the default minute step of selectors. metrics may be nil.
func NewHandler(registry *calendar.Registry, defaultCal string, step int, metrics *Metrics) (*Handler, error) {
	if _, err := registry.Resolve(defaultCal); err != nil {
		return nil, err
	}
	return &Handler{registry: registry, defaultCal: defaultCal, step: step, metrics: metrics}, nil
}

// calendarSummary is one entry of the calendar list.
type calendarSummary struct {
	Name    string `json:"name"`
	Builtin bool   `json:"builtin"`
	Default bool   `json:"default"`
	MinYear int    `json:"min_year"`
	MaxYear int    `json:"max_year"`
	Months  int    `json:"months"`
}

// calendarDetail is a calendar's full shape.
type calendarDetail struct {
	Name string `json:"name"`
	calendar.Shape
	Days []int `json:"days"`
}

// ListCalendars returns every registered calendar.
// GET /api/v1/calendars
func (h *Handler) ListCalendars(c echo.Context) error {
	names := h.registry.List()
	out := make([]calendarSummary, 0, len(names))
	for _, name := range names {
		t, err := h.registry.Resolve(name)
		if err != nil {
			// Unregistered between List and Resolve.
			continue
		}
		out = append(out, calendarSummary{
			Name:    name,
			Builtin: calendar.IsBuiltin(name),
			Default: name == h.defaultCal,
			MinYear: t.MinYear(),
			MaxYear: t.MaxYear(),
			Months:  len(t.Months()),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetCalendar returns a calendar's shape.
// GET /api/v1/calendars/:type
func (h *Handler) GetCalendar(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendarDetail{Name: t.Name(), Shape: t.Shape(), Days: t.Days()})
}

// Canonical converts a wall time read in tz to an instant.
// GET /api/v1/calendars/:type/canonical?year&month&day&hour&minute&tz
func (h *Handler) Canonical(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	f, err := wallTimeParams(c)
	if err != nil {
		return err
	}
	tz, err := tzParam(c)
	if err != nil {
		return err
	}

	inst, err := calendar.ToInstant(t, f.year, f.month, f.day, f.hour, f.minute, tz)
	h.metrics.observe(t.Name(), "to_canonical", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"t": inst})
}

// Date converts an instant to date components in tz.
// GET /api/v1/calendars/:type/date?t&tz
func (h *Handler) Date(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	inst, err := instantParam(c)
	if err != nil {
		return err
	}
	tz, err := tzParam(c)
	if err != nil {
		return err
	}

	dc, err := t.FromCanonical(inst, tz)
	h.metrics.observe(t.Name(), "from_canonical", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dc)
}

// Format renders an instant with a strftime-style pattern.
// GET /api/v1/calendars/:type/format?t&pattern&tz&fixday&fixhour
func (h *Handler) Format(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	inst, err := instantParam(c)
	if err != nil {
		return err
	}
	tz, err := tzParam(c)
	if err != nil {
		return err
	}
	pattern := c.QueryParam("pattern")
	if pattern == "" {
		pattern = "%A, %e %B %Y, %H:%M"
	}
	fixDay := c.QueryParam("fixday") != "false"
	fixHour := c.QueryParam("fixhour") != "false"

	s, err := calendar.Format(t, inst, pattern, tz, fixDay, fixHour)
	h.metrics.observe(t.Name(), "format", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"formatted": s})
}

// Month returns a month grid as JSON, or as an HTML fragment for HTMX.
// GET /api/v1/calendars/:type/month?year&month
func (h *Handler) Month(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	year, err := intParam(c, "year", t.MinYear())
	if err != nil {
		return err
	}
	month, err := intParam(c, "month", 1)
	if err != nil {
		return err
	}

	g, err := calendar.MonthGrid(t, year, month)
	h.metrics.observe(t.Name(), "month_grid", err)
	if err != nil {
		return err
	}
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, MonthFragment(t.Name(), g))
	}
	return c.JSON(http.StatusOK, g)
}

// Gregorian maps a date in the calendar to the Gregorian calendar.
// GET /api/v1/calendars/:type/gregorian?year&month&day&hour&minute
func (h *Handler) Gregorian(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	f, err := wallTimeParams(c)
	if err != nil {
		return err
	}

	g, err := t.ConvertToGregorian(f.year, f.month, f.day, f.hour, f.minute)
	h.metrics.observe(t.Name(), "to_gregorian", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

// FromGregorian maps a Gregorian date into the calendar.
// GET /api/v1/calendars/:type/from-gregorian?year&month&day&hour&minute
func (h *Handler) FromGregorian(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	f, err := wallTimeParams(c)
	if err != nil {
		return err
	}

	dc, err := t.ConvertFromGregorian(f.year, f.month, f.day, f.hour, f.minute)
	h.metrics.observe(t.Name(), "from_gregorian", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dc)
}

// ICS returns an iCalendar feed of the month starts of one year.
// GET /api/v1/calendars/:type/ics?year
func (h *Handler) ICS(c echo.Context) error {
	t, err := h.resolve(c)
	if err != nil {
		return err
	}
	year, err := requiredIntParam(c, "year")
	if err != nil {
		return err
	}

	feed, err := MonthStartsICS(t, year, time.Now())
	h.metrics.observe(t.Name(), "ics", err)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		"inline; filename=\""+t.Name()+"-"+strconv.Itoa(year)+".ics\"")
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// selectorRequest carries selector options plus the value to convert.
// Omitted options take the calendar's defaults.
type selectorRequest struct {
	Instant     calendar.Instant `json:"t"`
	Value       dateselect.Value `json:"value"`
	Prefill     bool             `json:"prefill"`
	StartYear   *int             `json:"startyear"`
	StopYear    *int             `json:"stopyear"`
	Timezone    *timezone.Spec   `json:"timezone"`
	Step        *int             `json:"step"`
	Optional    bool             `json:"optional"`
	DefaultTime calendar.Instant `json:"defaulttime"`
}

type decodeResponse struct {
	Value   dateselect.Value   `json:"value"`
	Choices dateselect.Choices `json:"choices"`
}

// DecodeSelector turns an instant into selector fields and option lists.
// With "prefill" the display fallbacks for unset values apply.
// POST /api/v1/calendars/:type/selector/decode
func (h *Handler) DecodeSelector(c echo.Context) error {
	sel, req, err := h.selector(c)
	if err != nil {
		return err
	}

	var v dateselect.Value
	if req.Prefill {
		v, err = sel.Prefill(req.Instant)
	} else {
		v, err = sel.Decode(req.Instant)
	}
	h.metrics.observe(sel.Calendar().Name(), "selector_decode", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, decodeResponse{Value: v, Choices: sel.Choices()})
}

// EncodeSelector turns submitted selector fields into an instant.
// POST /api/v1/calendars/:type/selector/encode
func (h *Handler) EncodeSelector(c echo.Context) error {
	sel, req, err := h.selector(c)
	if err != nil {
		return err
	}

	inst, err := sel.Encode(req.Value)
	h.metrics.observe(sel.Calendar().Name(), "selector_encode", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"t": inst})
}

func (h *Handler) selector(c echo.Context) (*dateselect.Selector, selectorRequest, error) {
	var req selectorRequest
	t, err := h.resolve(c)
	if err != nil {
		return nil, req, err
	}
	if err := c.Bind(&req); err != nil {
		return nil, req, apperror.NewBadRequest("invalid request body")
	}

	opts := dateselect.DefaultOptions(t)
	opts.Step = h.step
	if req.StartYear != nil {
		opts.StartYear = *req.StartYear
	}
	if req.StopYear != nil {
		opts.StopYear = *req.StopYear
	}
	if req.Timezone != nil {
		opts.Timezone = *req.Timezone
	}
	if req.Step != nil {
		opts.Step = *req.Step
	}
	opts.Optional = req.Optional
	opts.DefaultTime = req.DefaultTime

	sel, err := dateselect.New(t, opts)
	if err != nil {
		return nil, req, err
	}
	return sel, req, nil
}

// resolve returns the calendar named by the :type path parameter.
func (h *Handler) resolve(c echo.Context) (calendar.Type, error) {
	name := c.Param("type")
	if name == DefaultAlias {
		name = h.defaultCal
	}
	return h.registry.Resolve(name)
}

// --- Query parameter helpers ---

type wallTime struct {
	year, month, day, hour, minute int
}

func wallTimeParams(c echo.Context) (wallTime, error) {
	var f wallTime
	var err error
	if f.year, err = requiredIntParam(c, "year"); err != nil {
		return f, err
	}
	if f.month, err = requiredIntParam(c, "month"); err != nil {
		return f, err
	}
	if f.day, err = requiredIntParam(c, "day"); err != nil {
		return f, err
	}
	if f.hour, err = intParam(c, "hour", 0); err != nil {
		return f, err
	}
	if f.minute, err = intParam(c, "minute", 0); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	q := c.QueryParam(name)
	if q == "" {
		return def, nil
	}
	v, err := strconv.Atoi(q)
	if err != nil {
		return 0, apperror.NewBadRequest(name + " must be an integer")
	}
	return v, nil
}

func requiredIntParam(c echo.Context, name string) (int, error) {
	if c.QueryParam(name) == "" {
		return 0, apperror.NewBadRequest(name + " is required")
	}
	return intParam(c, name, 0)
}

func instantParam(c echo.Context) (calendar.Instant, error) {
	q := c.QueryParam("t")
	if q == "" {
		return 0, apperror.NewBadRequest("t is required")
	}
	v, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return 0, apperror.NewBadRequest("t must be seconds since the Unix epoch")
	}
	return calendar.Instant(v), nil
}

// tzParam reads the tz query parameter. Absent means the user's zone.
func tzParam(c echo.Context) (timezone.Spec, error) {
	return timezone.Parse(c.QueryParam("tz"))
}
