package calendar

// HijriName is the registry identifier of the tabular Hijri calendar.
const HijriName = "hijri"

// hijriEpoch is the day number of 1 Muharram 1 AH in the civil reckoning
// (16 July 622 Julian, 19 July 622 proleptic Gregorian).
const hijriEpoch int64 = -492148

// The tabular calendar repeats every 30 years of 10631 days, eleven of which
// are leap years.
const (
	hijriCycleYears = 30
	hijriCycleDays  = 10631
)

var hijriMonths = []string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// Hijri is the arithmetical (tabular) Islamic calendar. Odd months have 30
// days and even months 29; in leap years Dhu al-Hijjah has 30. Year y is a
// leap year when (14 + 11y) mod 30 < 11, i.e. years 2, 5, 7, 10, 13, 16, 18,
// 21, 24, 26 and 29 of each cycle.
type Hijri struct {
	system
}

// NewHijri creates the tabular Hijri calendar. Weeks start on Saturday.
func NewHijri(opts ...Option) (*Hijri, error) {
	shape := Shape{
		MinYear:         1317,
		MaxYear:         1473,
		Months:          hijriMonths,
		Weekdays:        sevenWeekdays,
		StartingWeekday: 6,
	}
	sys, err := newSystem(HijriName, shape, 30, hijriArith{}, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Hijri{system: sys}, nil
}

// IsHijriLeapYear reports whether Dhu al-Hijjah of year has 30 days.
func IsHijriLeapYear(year int) bool {
	return floorMod(14+11*int64(year), hijriCycleYears) < 11
}

type hijriArith struct{}

func (hijriArith) daysInMonth(year, month int) int {
	if month == 12 && IsHijriLeapYear(year) {
		return 30
	}
	if month%2 == 1 {
		return 30
	}
	return 29
}

// yearStart returns the day number of 1 Muharram of year.
func (hijriArith) yearStart(year int) int64 {
	y := int64(year)
	return hijriEpoch + (y-1)*354 + floorDiv(3+11*y, hijriCycleYears)
}

func (h hijriArith) toDays(year, month, day int) int64 {
	// Months alternate 30/29, so m-1 full months hold ceil(29.5*(m-1)) days.
	before := (59*int64(month-1) + 1) / 2
	return h.yearStart(year) + before + int64(day) - 1
}

func (h hijriArith) fromDays(days int64) (int, int, int) {
	n := days - hijriEpoch
	year := int(floorDiv(hijriCycleYears*n+10646, hijriCycleDays))
	for h.yearStart(year) > days {
		year--
	}
	for h.yearStart(year+1) <= days {
		year++
	}

	rem := int(days - h.yearStart(year))
	month := 1
	for month < 12 {
		n := h.daysInMonth(year, month)
		if rem < n {
			break
		}
		rem -= n
		month++
	}
	return year, month, rem + 1
}

func (hijriArith) weekdayAt(days int64) int {
	return sevenDayWeek(days)
}
