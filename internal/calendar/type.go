package calendar

import (
	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// Type is one calendar system. Implementations are pure: every method is a
// function of its arguments and the immutable shape the Type was built with.
//
// Operations that receive a structurally invalid date (month outside
// [1, len(Months())], day outside [1, DaysInMonth], hour outside [0,23],
// minute outside [0,59]) fail with an apperror of type invalid_date.
type Type interface {
	// Name is the stable, non-localized identifier (e.g. "gregorian").
	Name() string

	// Days lists every day number any month can have, for day selectors.
	Days() []int
	// Months lists month names; index 0 is month 1.
	Months() []string
	MinYear() int
	MaxYear() int
	NumWeekdays() int
	// Weekdays lists weekday names; index i matches Weekday() == i.
	Weekdays() []WeekdayName
	StartingWeekday() int
	// Shape returns all of the above as one value.
	Shape() Shape

	// Weekday returns the 0-based weekday index of a valid date.
	Weekday(year, month, day int) (int, error)
	// DaysInMonth honors the system's leap rule.
	DaysInMonth(year, month int) (int, error)
	// PrevMonth and NextMonth roll over the year at the first/last month.
	PrevMonth(year, month int) (int, int)
	NextMonth(year, month int) (int, int)

	// ToCanonical converts a wall time in this calendar, read at UTC, to an
	// instant.
	ToCanonical(year, month, day, hour, minute int) (Instant, error)
	// FromCanonical converts an instant to this calendar after applying the
	// zone offset (and DST for named zones) resolved for tz.
	FromCanonical(t Instant, tz timezone.Spec) (DateComponents, error)

	// ConvertToGregorian maps a date in this calendar to the Gregorian one.
	ConvertToGregorian(year, month, day, hour, minute int) (GregorianDate, error)
	// ConvertFromGregorian maps a Gregorian date into this calendar.
	ConvertFromGregorian(year, month, day, hour, minute int) (DateComponents, error)

	// Resolver is the timezone resolver used by FromCanonical.
	Resolver() timezone.Resolver
}

// arithmetic is the per-system leap and intercalation rule. Day numbers are
// days since 1970-01-01 in the proleptic Gregorian calendar, so every system
// shares one timeline. Month and day arguments are already validated.
type arithmetic interface {
	daysInMonth(year, month int) int
	toDays(year, month, day int) int64
	fromDays(days int64) (year, month, day int)
	weekdayAt(days int64) int
}

// Option customizes a built-in Type.
type Option func(*options)

type options struct {
	resolver        timezone.Resolver
	startingWeekday *int
}

// WithResolver sets the resolver FromCanonical uses. The default handles
// fixed offsets only and treats the user sentinel as UTC.
func WithResolver(r timezone.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithStartingWeekday overrides the weekday shown first in week views.
func WithStartingWeekday(idx int) Option {
	return func(o *options) { o.startingWeekday = &idx }
}

func buildOptions(opts []Option) options {
	o := options{resolver: timezone.FixedResolver()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.resolver == nil {
		o.resolver = timezone.FixedResolver()
	}
	return o
}

// system implements Type on top of a shape and an arithmetic. Concrete
// calendars embed it and only supply the rule.
type system struct {
	name     string
	shape    Shape
	days     []int
	arith    arithmetic
	resolver timezone.Resolver
}

func newSystem(name string, shape Shape, maxMonthDays int, arith arithmetic, o options) (system, error) {
	if o.startingWeekday != nil {
		shape.StartingWeekday = *o.startingWeekday
	}
	if shape.StartingWeekday < 0 || shape.StartingWeekday >= len(shape.Weekdays) {
		return system{}, apperror.NewValidation("starting weekday is outside the week")
	}
	days := make([]int, maxMonthDays)
	for i := range days {
		days[i] = i + 1
	}
	return system{name: name, shape: shape, days: days, arith: arith, resolver: o.resolver}, nil
}

func (s *system) Name() string                { return s.name }
func (s *system) Days() []int                 { return s.days }
func (s *system) Months() []string            { return s.shape.Months }
func (s *system) MinYear() int                { return s.shape.MinYear }
func (s *system) MaxYear() int                { return s.shape.MaxYear }
func (s *system) NumWeekdays() int            { return len(s.shape.Weekdays) }
func (s *system) Weekdays() []WeekdayName     { return s.shape.Weekdays }
func (s *system) StartingWeekday() int        { return s.shape.StartingWeekday }
func (s *system) Shape() Shape                { return s.shape }
func (s *system) Resolver() timezone.Resolver { return s.resolver }

func (s *system) numMonths() int { return len(s.shape.Months) }

// DaysInMonth returns the number of days in the given month.
func (s *system) DaysInMonth(year, month int) (int, error) {
	if err := s.checkYearMonth(year, month); err != nil {
		return 0, err
	}
	return s.arith.daysInMonth(year, month), nil
}

// Weekday returns the weekday index of a valid date.
func (s *system) Weekday(year, month, day int) (int, error) {
	if err := s.checkDate(year, month, day); err != nil {
		return 0, err
	}
	return s.arith.weekdayAt(s.arith.toDays(year, month, day)), nil
}

// PrevMonth returns the month before (year, month).
func (s *system) PrevMonth(year, month int) (int, int) {
	if month <= 1 {
		return year - 1, s.numMonths()
	}
	return year, month - 1
}

// NextMonth returns the month after (year, month).
func (s *system) NextMonth(year, month int) (int, int) {
	if month >= s.numMonths() {
		return year + 1, 1
	}
	return year, month + 1
}

// ToCanonical converts a wall time read at UTC to an instant.
func (s *system) ToCanonical(year, month, day, hour, minute int) (Instant, error) {
	if err := s.checkDate(year, month, day); err != nil {
		return 0, err
	}
	if err := checkClock(hour, minute); err != nil {
		return 0, err
	}
	days := s.arith.toDays(year, month, day)
	return Instant(days*secondsPerDay + int64(hour)*secondsPerHour + int64(minute)*secondsPerMinute), nil
}

// FromCanonical converts an instant to date components in zone tz.
func (s *system) FromCanonical(t Instant, tz timezone.Spec) (DateComponents, error) {
	if t < -maxAbsInstant || t > maxAbsInstant {
		return DateComponents{}, apperror.NewInvalidDatef("instant %d is out of range", int64(t))
	}
	off, err := s.resolver.OffsetAt(tz, int64(t))
	if err != nil {
		return DateComponents{}, err
	}
	local := int64(t) + int64(off.Seconds)
	days := floorDiv(local, secondsPerDay)
	sod := int(local - days*secondsPerDay)

	c := s.componentsFor(days)
	c.Hour = sod / secondsPerHour
	c.Minute = sod % secondsPerHour / secondsPerMinute
	c.Second = sod % secondsPerMinute
	return c, nil
}

// ConvertToGregorian maps a date in this calendar to the Gregorian calendar.
func (s *system) ConvertToGregorian(year, month, day, hour, minute int) (GregorianDate, error) {
	if err := s.checkDate(year, month, day); err != nil {
		return GregorianDate{}, err
	}
	if err := checkClock(hour, minute); err != nil {
		return GregorianDate{}, err
	}
	gy, gm, gd := civilFromDays(s.arith.toDays(year, month, day))
	return GregorianDate{Year: gy, Month: gm, Day: gd, Hour: hour, Minute: minute}, nil
}

// ConvertFromGregorian maps a Gregorian date into this calendar.
func (s *system) ConvertFromGregorian(year, month, day, hour, minute int) (DateComponents, error) {
	if err := checkGregorianDate(year, month, day); err != nil {
		return DateComponents{}, err
	}
	if err := checkClock(hour, minute); err != nil {
		return DateComponents{}, err
	}
	c := s.componentsFor(daysFromCivil(year, month, day))
	c.Hour = hour
	c.Minute = minute
	return c, nil
}

func (s *system) componentsFor(days int64) DateComponents {
	y, m, d := s.arith.fromDays(days)
	return DateComponents{
		Year:    y,
		Month:   m,
		Day:     d,
		Weekday: s.arith.weekdayAt(days),
		YearDay: int(days-s.arith.toDays(y, 1, 1)) + 1,
	}
}

func (s *system) checkYearMonth(year, month int) error {
	if year < -MaxAbsYear || year > MaxAbsYear {
		return apperror.NewInvalidDatef("year %d is out of range", year)
	}
	if month < 1 || month > s.numMonths() {
		return apperror.NewInvalidDatef("month %d is out of range 1..%d", month, s.numMonths())
	}
	return nil
}

func (s *system) checkDate(year, month, day int) error {
	if err := s.checkYearMonth(year, month); err != nil {
		return err
	}
	if n := s.arith.daysInMonth(year, month); day < 1 || day > n {
		return apperror.NewInvalidDatef("day %d is out of range 1..%d for %d-%02d", day, n, year, month)
	}
	return nil
}

func checkClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return apperror.NewInvalidDatef("hour %d is out of range 0..23", hour)
	}
	if minute < 0 || minute > 59 {
		return apperror.NewInvalidDatef("minute %d is out of range 0..59", minute)
	}
	return nil
}

// sevenDayWeek numbers weekdays from Sunday. 1970-01-01 was a Thursday.
func sevenDayWeek(days int64) int {
	return int(floorMod(days+4, 7))
}
