// Package calendar provides pluggable calendar systems. Every system exposes
// its shape (months, weekdays, year range) and converts dates to and from one
// canonical form: an Instant, a count of seconds since the Unix epoch.
// Instants are the only values stored or compared across calendar systems.
//
// Built-in systems are Gregorian and tabular Hijri. Custom systems are built
// from operator-defined months, weekdays and a leap rule. Callers obtain a
// Type from a Registry and pass it explicitly; there is no global "active"
// calendar.
//
// All Types are immutable after construction and safe for concurrent use.
package calendar

import "fmt"

// Instant is a timezone-naive absolute point in time: seconds since
// 1970-01-01T00:00:00Z.
type Instant int64

// Unset is the sentinel for an optional date that was not provided. It is
// never produced by a conversion that was actually requested.
const Unset Instant = 0

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// MaxAbsYear bounds every year a calendar accepts, in either direction. It
// keeps day counts far away from int64 overflow.
const MaxAbsYear = 1_000_000

// maxAbsInstant lies beyond every date a valid calendar can produce and far
// enough inside int64 that adding a zone offset cannot overflow.
const maxAbsInstant = 2 * MaxAbsYear * MaxCustomMonths * maxCustomMonthDays * secondsPerDay

// WeekdayName is the short and full canonical name of one weekday.
type WeekdayName struct {
	Short string `json:"shortname" yaml:"short"`
	Full  string `json:"fullname" yaml:"full"`
}

// Shape is the static description of a calendar system.
type Shape struct {
	// MinYear and MaxYear bound the years offered for selection.
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`

	// Months lists month names in order; index 0 is month 1.
	Months []string `json:"months"`

	// Weekdays lists weekday names; index i is the weekday whose Weekday() is i.
	Weekdays []WeekdayName `json:"weekdays"`

	// StartingWeekday is the weekday index shown first in week views.
	StartingWeekday int `json:"starting_weekday"`
}

// DateComponents is a date and time expressed in one calendar system.
type DateComponents struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`

	// Weekday is the 0-based index into the calendar's Weekdays().
	Weekday int `json:"weekday"`

	// YearDay is the 1-based day of the year.
	YearDay int `json:"yearday"`
}

// String formats the components as YYYY-MM-DD HH:MM:SS.
func (c DateComponents) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// GregorianDate is a wall-clock date in the Gregorian calendar.
type GregorianDate struct {
	Year   int `json:"year" yaml:"year"`
	Month  int `json:"month" yaml:"month"`
	Day    int `json:"day" yaml:"day"`
	Hour   int `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute int `json:"minute,omitempty" yaml:"minute,omitempty"`
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
