package calendar

import (
	"fmt"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// maxCustomMonthDays bounds a single month of a custom calendar.
const maxCustomMonthDays = 400

// maxLeapInterval bounds LeapYearEvery.
const maxLeapInterval = 10000

// MaxCustomMonths and MaxCustomWeekdays bound the length of a custom
// calendar's month and weekday lists.
const (
	MaxCustomMonths   = 100
	MaxCustomWeekdays = 100
)

// CustomMonth is one month of an operator-defined calendar.
type CustomMonth struct {
	Name string `json:"name" yaml:"name"`
	Days int    `json:"days" yaml:"days"`

	// LeapYearDays is added to Days in leap years.
	LeapYearDays int `json:"leap_year_days" yaml:"leap_year_days"`

	// IsIntercalary marks festival months that sit between regular months.
	// They count toward the year and the week like any other month.
	IsIntercalary bool `json:"is_intercalary" yaml:"is_intercalary"`
}

// CustomConfig describes an operator-defined calendar. The calendar is
// anchored to the shared timeline by Epoch: the Gregorian date on which day 1
// of month 1 of EpochYear falls, and EpochWeekday, the weekday index of that
// day.
type CustomConfig struct {
	Name     string
	Months   []CustomMonth
	Weekdays []WeekdayName

	// A year is a leap year when LeapYearEvery > 0 and
	// (year - LeapYearOffset) is a multiple of LeapYearEvery.
	LeapYearEvery  int
	LeapYearOffset int

	EpochYear    int
	Epoch        GregorianDate
	EpochWeekday int

	StartingWeekday int
	MinYear         int
	MaxYear         int
}

// Custom is a calendar built from a CustomConfig.
type Custom struct {
	system
	cfg CustomConfig
}

// NewCustom validates cfg and builds the calendar.
func NewCustom(cfg CustomConfig, opts ...Option) (*Custom, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	months := make([]string, len(cfg.Months))
	maxDays := 0
	for i, m := range cfg.Months {
		months[i] = m.Name
		if n := m.Days + m.LeapYearDays; n > maxDays {
			maxDays = n
		}
	}

	shape := Shape{
		MinYear:         cfg.MinYear,
		MaxYear:         cfg.MaxYear,
		Months:          months,
		Weekdays:        cfg.Weekdays,
		StartingWeekday: cfg.StartingWeekday,
	}
	sys, err := newSystem(cfg.Name, shape, maxDays, newCustomArith(cfg), buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Custom{system: sys, cfg: cfg}, nil
}

// Config returns the configuration the calendar was built from.
func (c *Custom) Config() CustomConfig { return c.cfg }

// IsLeapYear reports whether year receives the months' leap days.
func (c *Custom) IsLeapYear(year int) bool {
	return c.arith.(customArith).isLeap(year)
}

// IsIntercalary reports whether month is an intercalary month.
func (c *Custom) IsIntercalary(month int) bool {
	if month < 1 || month > len(c.cfg.Months) {
		return false
	}
	return c.cfg.Months[month-1].IsIntercalary
}

func (cfg CustomConfig) validate() error {
	if cfg.Name == "" {
		return apperror.NewValidation("calendar name is required")
	}
	if len(cfg.Months) == 0 {
		return apperror.NewValidation("at least one month is required")
	}
	if len(cfg.Months) > MaxCustomMonths {
		return apperror.NewValidation(fmt.Sprintf("at most %d months are allowed", MaxCustomMonths))
	}
	for _, m := range cfg.Months {
		if m.Name == "" {
			return apperror.NewValidation("month names are required")
		}
		if m.Days < 1 || m.Days > maxCustomMonthDays {
			return apperror.NewValidation("month days must be between 1 and 400")
		}
		if m.LeapYearDays < 0 || m.Days+m.LeapYearDays > maxCustomMonthDays {
			return apperror.NewValidation("leap year days must keep the month between 1 and 400 days")
		}
	}
	if len(cfg.Weekdays) == 0 {
		return apperror.NewValidation("at least one weekday is required")
	}
	if len(cfg.Weekdays) > MaxCustomWeekdays {
		return apperror.NewValidation(fmt.Sprintf("at most %d weekdays are allowed", MaxCustomWeekdays))
	}
	for _, w := range cfg.Weekdays {
		if w.Short == "" || w.Full == "" {
			return apperror.NewValidation("weekday short and full names are required")
		}
	}
	if cfg.LeapYearEvery < 0 || cfg.LeapYearEvery > maxLeapInterval {
		return apperror.NewValidation("leap year interval must be between 0 and 10000")
	}
	if cfg.LeapYearOffset < -MaxAbsYear || cfg.LeapYearOffset > MaxAbsYear {
		return apperror.NewValidation("leap year offset is out of range")
	}
	if cfg.MinYear < -MaxAbsYear || cfg.MaxYear > MaxAbsYear {
		return apperror.NewValidation(fmt.Sprintf("year range must stay within -%d..%d", MaxAbsYear, MaxAbsYear))
	}
	if cfg.MinYear > cfg.MaxYear {
		return apperror.NewValidation("minimum year must not exceed maximum year")
	}
	if cfg.EpochWeekday < 0 || cfg.EpochWeekday >= len(cfg.Weekdays) {
		return apperror.NewValidation("epoch weekday is outside the week")
	}
	if cfg.EpochYear < -MaxAbsYear || cfg.EpochYear > MaxAbsYear {
		return apperror.NewValidation("epoch year is out of range")
	}
	if err := checkGregorianDate(cfg.Epoch.Year, cfg.Epoch.Month, cfg.Epoch.Day); err != nil {
		return apperror.NewValidation("epoch date is not a valid Gregorian date")
	}
	return nil
}

// customArith places year y at
//
//	epochDays + (y-EpochYear)*base + extra*(leapsBefore(y) - leapsBefore(EpochYear))
//
// where base is the common-year length and extra the leap days per leap year.
type customArith struct {
	months    []CustomMonth
	every     int64
	offset    int64
	epochYear int64
	epochDays int64
	epochWday int64
	base      int64
	extra     int64
	numWdays  int64
}

func newCustomArith(cfg CustomConfig) customArith {
	a := customArith{
		months:    cfg.Months,
		every:     int64(cfg.LeapYearEvery),
		offset:    int64(cfg.LeapYearOffset),
		epochYear: int64(cfg.EpochYear),
		epochDays: daysFromCivil(cfg.Epoch.Year, cfg.Epoch.Month, cfg.Epoch.Day),
		epochWday: int64(cfg.EpochWeekday),
		numWdays:  int64(len(cfg.Weekdays)),
	}
	for _, m := range cfg.Months {
		a.base += int64(m.Days)
		a.extra += int64(m.LeapYearDays)
	}
	if a.every <= 0 {
		a.extra = 0
	}
	return a
}

func (a customArith) isLeap(year int) bool {
	return a.every > 0 && floorMod(int64(year)-a.offset, a.every) == 0
}

// leapsBefore counts leap years below year, up to a constant.
func (a customArith) leapsBefore(year int64) int64 {
	if a.every <= 0 {
		return 0
	}
	return floorDiv(year-1-a.offset, a.every)
}

func (a customArith) yearStart(year int) int64 {
	y := int64(year)
	leaps := a.leapsBefore(y) - a.leapsBefore(a.epochYear)
	return a.epochDays + (y-a.epochYear)*a.base + leaps*a.extra
}

func (a customArith) daysInMonth(year, month int) int {
	m := a.months[month-1]
	if a.isLeap(year) {
		return m.Days + m.LeapYearDays
	}
	return m.Days
}

func (a customArith) toDays(year, month, day int) int64 {
	d := a.yearStart(year)
	for i := 1; i < month; i++ {
		d += int64(a.daysInMonth(year, i))
	}
	return d + int64(day) - 1
}

func (a customArith) fromDays(days int64) (int, int, int) {
	n := days - a.epochDays
	var year int
	if a.every > 0 {
		year = int(a.epochYear + floorDiv(n*a.every, a.base*a.every+a.extra))
	} else {
		year = int(a.epochYear + floorDiv(n, a.base))
	}
	for a.yearStart(year) > days {
		year--
	}
	for a.yearStart(year+1) <= days {
		year++
	}

	rem := int(days - a.yearStart(year))
	month := 1
	for month < len(a.months) {
		n := a.daysInMonth(year, month)
		if rem < n {
			break
		}
		rem -= n
		month++
	}
	return year, month, rem + 1
}

func (a customArith) weekdayAt(days int64) int {
	return int(floorMod(days-a.epochDays+a.epochWday, a.numWdays))
}
