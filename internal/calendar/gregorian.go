package calendar

import "github.com/keyxmakerx/almanac/internal/apperror"

// GregorianName is the registry identifier of the Gregorian calendar.
const GregorianName = "gregorian"

// Day-number arithmetic follows the standard library's time package: dates
// are counted in 400-year eras starting on March 1st so that the leap day is
// the last day of the computational year.
const (
	daysPer400Years = 365*400 + 97
	daysPer100Years = 365*100 + 24
	daysPer4Years   = 365*4 + 1

	// daysFromMarch0ToUnix is the day number of 1970-01-01 counted from
	// 0000-03-01.
	daysFromMarch0ToUnix = 719468
)

// daysIn is the length of each month in a common year.
var daysIn = [...]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var gregorianMonths = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var sevenWeekdays = []WeekdayName{
	{Short: "Sun", Full: "Sunday"},
	{Short: "Mon", Full: "Monday"},
	{Short: "Tue", Full: "Tuesday"},
	{Short: "Wed", Full: "Wednesday"},
	{Short: "Thu", Full: "Thursday"},
	{Short: "Fri", Full: "Friday"},
	{Short: "Sat", Full: "Saturday"},
}

// Gregorian is the proleptic Gregorian calendar. Years 1900..2050 are offered
// for selection; conversions work for any year.
type Gregorian struct {
	system
}

// NewGregorian creates the Gregorian calendar.
func NewGregorian(opts ...Option) (*Gregorian, error) {
	shape := Shape{
		MinYear:  1900,
		MaxYear:  2050,
		Months:   gregorianMonths,
		Weekdays: sevenWeekdays,
	}
	sys, err := newSystem(GregorianName, shape, 31, gregorianArith{}, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Gregorian{system: sys}, nil
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

type gregorianArith struct{}

func (gregorianArith) daysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysIn[month]
}

func (gregorianArith) toDays(year, month, day int) int64 {
	return daysFromCivil(year, month, day)
}

func (gregorianArith) fromDays(days int64) (int, int, int) {
	return civilFromDays(days)
}

func (gregorianArith) weekdayAt(days int64) int {
	return sevenDayWeek(days)
}

// daysFromCivil returns the number of days from 1970-01-01 to the given
// Gregorian date.
func daysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400 // [0, 399]

	// Month index counted from March: Mar=0 .. Feb=11.
	mp := int64(month) - 3
	if month <= 2 {
		mp += 12
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPer400Years + doe - daysFromMarch0ToUnix
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(days int64) (int, int, int) {
	z := days + daysFromMarch0ToUnix
	era := floorDiv(z, daysPer400Years)
	doe := z - era*daysPer400Years // [0, 146096]

	// The last day of a 4, 100 or 400 year cycle would otherwise spill into
	// the next year; the correction terms pull it back.
	yoe := (doe - doe/(daysPer4Years-1) + doe/daysPer100Years - doe/(daysPer400Years-1)) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if mp >= 10 {
		month = mp - 9
	}
	year := yoe + era*400
	if month <= 2 {
		year++
	}
	return int(year), int(month), int(day)
}

func checkGregorianDate(year, month, day int) error {
	if year < -MaxAbsYear || year > MaxAbsYear {
		return apperror.NewInvalidDatef("year %d is out of range", year)
	}
	if month < 1 || month > 12 {
		return apperror.NewInvalidDatef("month %d is out of range 1..12", month)
	}
	if n := (gregorianArith{}).daysInMonth(year, month); day < 1 || day > n {
		return apperror.NewInvalidDatef("day %d is out of range 1..%d for %d-%02d", day, n, year, month)
	}
	return nil
}
