// Package dateselect converts between stored instants and the field values
// of a date/time selector (year, month, day, hour, minute and an "enabled"
// toggle for optional dates) in any calendar system.
//
// Rendering is left to callers; Choices supplies the option lists a form
// needs.
package dateselect

import (
	"fmt"
	"time"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// DefaultStep is the default minute granularity.
const DefaultStep = 5

// MaxYearSpan bounds StopYear-StartYear, and with it the year choices.
const MaxYearSpan = 10_000

// Options configures a Selector.
type Options struct {
	// StartYear and StopYear bound the year choices.
	StartYear int `json:"startyear"`
	StopYear  int `json:"stopyear"`

	// DefaultTime is shown when the stored value is unset. Zero means the
	// current time.
	DefaultTime calendar.Instant `json:"defaulttime"`

	// Timezone is the zone fields are read and written in.
	Timezone timezone.Spec `json:"timezone"`

	// Step is the minute granularity. Minutes are rounded down to it.
	Step int `json:"step"`

	// Optional adds an enable toggle; a disabled value encodes to
	// calendar.Unset.
	Optional bool `json:"optional"`

	// Now replaces time.Now for the initial display. Nil means time.Now.
	Now func() time.Time `json:"-"`
}

// DefaultOptions returns the defaults for cal: its year range (cut to
// MaxYearSpan years from MinYear), the user's timezone and a five minute
// step.
func DefaultOptions(cal calendar.Type) Options {
	opts := Options{
		StartYear: cal.MinYear(),
		StopYear:  cal.MaxYear(),
		Timezone:  timezone.User(),
		Step:      DefaultStep,
	}
	if opts.StopYear-opts.StartYear > MaxYearSpan {
		opts.StopYear = opts.StartYear + MaxYearSpan
	}
	return opts
}

// Value holds the selector's fields in the selector's calendar.
type Value struct {
	Year    int  `json:"year"`
	Month   int  `json:"month"`
	Day     int  `json:"day"`
	Hour    int  `json:"hour"`
	Minute  int  `json:"minute"`
	Enabled bool `json:"enabled"`
}

// Selector is a date/time selector bound to one calendar.
type Selector struct {
	cal  calendar.Type
	opts Options
}

// New creates a selector for cal.
func New(cal calendar.Type, opts Options) (*Selector, error) {
	if cal == nil {
		return nil, apperror.NewValidation("calendar is required")
	}
	if opts.Step < 1 || opts.Step > 60 {
		return nil, apperror.NewValidation(fmt.Sprintf("step %d must be between 1 and 60", opts.Step))
	}
	if opts.StartYear < -calendar.MaxAbsYear || opts.StopYear > calendar.MaxAbsYear {
		return nil, apperror.NewValidation(fmt.Sprintf("years must stay within -%d..%d", calendar.MaxAbsYear, calendar.MaxAbsYear))
	}
	if opts.StartYear > opts.StopYear {
		return nil, apperror.NewValidation("start year must not exceed stop year")
	}
	if opts.StopYear-opts.StartYear > MaxYearSpan {
		return nil, apperror.NewValidation(fmt.Sprintf("year range must not span more than %d years", MaxYearSpan))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Selector{cal: cal, opts: opts}, nil
}

// Calendar returns the calendar the selector works in.
func (s *Selector) Calendar() calendar.Type { return s.cal }

// Options returns the selector's options.
func (s *Selector) Options() Options { return s.opts }

// RoundDown truncates minute to a multiple of step. It never rounds up and
// so never carries into the hour.
func RoundDown(minute, step int) int {
	if step <= 1 {
		return minute
	}
	return minute - minute%step
}

// Decode turns a stored instant into field values. Unset decodes to a
// disabled value without any calendar conversion.
func (s *Selector) Decode(t calendar.Instant) (Value, error) {
	if t == calendar.Unset {
		return Value{}, nil
	}
	return s.fields(t, true)
}

// Prefill is what a form shows first: an unset instant falls back to
// DefaultTime and then to the current time. For optional selectors the
// value is enabled only when t was set.
func (s *Selector) Prefill(t calendar.Instant) (Value, error) {
	display := t
	if display == calendar.Unset {
		display = s.opts.DefaultTime
	}
	if display == calendar.Unset {
		display = calendar.Instant(s.opts.Now().Unix())
	}
	enabled := true
	if s.opts.Optional {
		enabled = t != calendar.Unset
	}
	return s.fields(display, enabled)
}

func (s *Selector) fields(t calendar.Instant, enabled bool) (Value, error) {
	c, err := s.cal.FromCanonical(t, s.opts.Timezone)
	if err != nil {
		return Value{}, err
	}
	return Value{
		Year:    c.Year,
		Month:   c.Month,
		Day:     c.Day,
		Hour:    c.Hour,
		Minute:  RoundDown(c.Minute, s.opts.Step),
		Enabled: enabled,
	}, nil
}

// Encode turns submitted field values into an instant. A disabled optional
// value encodes to calendar.Unset without calling the calendar.
func (s *Selector) Encode(v Value) (calendar.Instant, error) {
	if s.opts.Optional && !v.Enabled {
		return calendar.Unset, nil
	}
	return calendar.ToInstant(s.cal, v.Year, v.Month, v.Day, v.Hour, v.Minute, s.opts.Timezone)
}

// Choice is one option of a select list.
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Choices holds the option lists of every field.
type Choices struct {
	Days    []Choice `json:"days"`
	Months  []Choice `json:"months"`
	Years   []Choice `json:"years"`
	Hours   []Choice `json:"hours"`
	Minutes []Choice `json:"minutes"`
}

// Choices returns the option lists for the selector's calendar. Hours and
// minutes are zero padded; minutes advance by Step.
func (s *Selector) Choices() Choices {
	var c Choices
	for _, d := range s.cal.Days() {
		c.Days = append(c.Days, Choice{Value: d, Label: fmt.Sprint(d)})
	}
	for i, name := range s.cal.Months() {
		c.Months = append(c.Months, Choice{Value: i + 1, Label: name})
	}
	for y := s.opts.StartYear; y <= s.opts.StopYear; y++ {
		c.Years = append(c.Years, Choice{Value: y, Label: fmt.Sprint(y)})
	}
	for h := 0; h < 24; h++ {
		c.Hours = append(c.Hours, Choice{Value: h, Label: fmt.Sprintf("%02d", h)})
	}
	for m := 0; m < 60; m += s.opts.Step {
		c.Minutes = append(c.Minutes, Choice{Value: m, Label: fmt.Sprintf("%02d", m)})
	}
	return c
}
