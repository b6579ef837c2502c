package calendar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

func mustGregorian(t *testing.T, opts ...Option) *Gregorian {
	t.Helper()
	g, err := NewGregorian(opts...)
	require.NoError(t, err)
	return g
}

func mustHijri(t *testing.T) *Hijri {
	t.Helper()
	h, err := NewHijri()
	require.NoError(t, err)
	return h
}

// testCustomConfig is a small calendar: two regular months around a one-day
// festival, a ten-day week and a leap day every fourth year. Year 1 begins on
// 2000-01-01.
func testCustomConfig() CustomConfig {
	return CustomConfig{
		Name: "tenday",
		Months: []CustomMonth{
			{Name: "Frostfall", Days: 30},
			{Name: "Midwinter", Days: 1, IsIntercalary: true},
			{Name: "Thawing", Days: 30, LeapYearDays: 1},
		},
		Weekdays: []WeekdayName{
			{Short: "1st", Full: "Firstday"}, {Short: "2nd", Full: "Secondday"},
			{Short: "3rd", Full: "Thirdday"}, {Short: "4th", Full: "Fourthday"},
			{Short: "5th", Full: "Fifthday"}, {Short: "6th", Full: "Sixthday"},
			{Short: "7th", Full: "Seventhday"}, {Short: "8th", Full: "Eighthday"},
			{Short: "9th", Full: "Ninthday"}, {Short: "10th", Full: "Tenthday"},
		},
		LeapYearEvery: 4,
		EpochYear:     1,
		Epoch:         GregorianDate{Year: 2000, Month: 1, Day: 1},
		MinYear:       -10,
		MaxYear:       50,
	}
}

func mustCustom(t *testing.T) *Custom {
	t.Helper()
	c, err := NewCustom(testCustomConfig())
	require.NoError(t, err)
	return c
}

func allTypes(t *testing.T) []Type {
	return []Type{mustGregorian(t), mustHijri(t), mustCustom(t)}
}

// --- Properties shared by every calendar ---

func TestRoundTrip_AllCalendars(t *testing.T) {
	for _, cal := range allTypes(t) {
		t.Run(cal.Name(), func(t *testing.T) {
			for y := cal.MinYear(); y <= cal.MaxYear(); y++ {
				for m := 1; m <= len(cal.Months()); m++ {
					dim, err := cal.DaysInMonth(y, m)
					require.NoError(t, err)
					for _, d := range []int{1, (dim + 1) / 2, dim} {
						inst, err := cal.ToCanonical(y, m, d, 13, 37)
						require.NoError(t, err)
						c, err := cal.FromCanonical(inst, timezone.UTC())
						require.NoError(t, err)
						if c.Year != y || c.Month != m || c.Day != d || c.Hour != 13 || c.Minute != 37 {
							t.Fatalf("%d-%d-%d 13:37 came back as %s", y, m, d, c)
						}
					}
				}
			}
		})
	}
}

func TestToCanonical_MonotonicAndWeekdayCycle(t *testing.T) {
	for _, cal := range allTypes(t) {
		t.Run(cal.Name(), func(t *testing.T) {
			n := cal.NumWeekdays()
			prev, err := cal.ToCanonical(cal.MinYear(), 1, 1, 0, 0)
			require.NoError(t, err)
			prevWd, err := cal.Weekday(cal.MinYear(), 1, 1)
			require.NoError(t, err)

			y, m, d := cal.MinYear(), 1, 1
			for step := 0; step < 3000; step++ {
				dim, _ := cal.DaysInMonth(y, m)
				if d < dim {
					d++
				} else {
					y, m = cal.NextMonth(y, m)
					d = 1
				}
				inst, err := cal.ToCanonical(y, m, d, 0, 0)
				require.NoError(t, err)
				if inst-prev != secondsPerDay {
					t.Fatalf("%d-%d-%d is %d seconds after the previous day", y, m, d, inst-prev)
				}
				wd, err := cal.Weekday(y, m, d)
				require.NoError(t, err)
				if wd != (prevWd+1)%n {
					t.Fatalf("%d-%d-%d weekday %d follows %d", y, m, d, wd, prevWd)
				}
				prev, prevWd = inst, wd
			}
		})
	}
}

func TestMonthNavigation_Closure(t *testing.T) {
	for _, cal := range allTypes(t) {
		t.Run(cal.Name(), func(t *testing.T) {
			last := len(cal.Months())
			for m := 1; m <= last; m++ {
				py, pm := cal.PrevMonth(2000, m)
				ny, nm := cal.NextMonth(py, pm)
				assert.Equal(t, [2]int{2000, m}, [2]int{ny, nm})

				ny, nm = cal.NextMonth(2000, m)
				py, pm = cal.PrevMonth(ny, nm)
				assert.Equal(t, [2]int{2000, m}, [2]int{py, pm})
			}

			y, m := cal.NextMonth(2000, last)
			assert.Equal(t, [2]int{2001, 1}, [2]int{y, m})
			y, m = cal.PrevMonth(2000, 1)
			assert.Equal(t, [2]int{1999, last}, [2]int{y, m})
		})
	}
}

func TestDayCounts_Consistent(t *testing.T) {
	for _, cal := range allTypes(t) {
		t.Run(cal.Name(), func(t *testing.T) {
			for y := cal.MinYear(); y <= cal.MaxYear(); y++ {
				total := 0
				for m := 1; m <= len(cal.Months()); m++ {
					dim, err := cal.DaysInMonth(y, m)
					require.NoError(t, err)
					total += dim

					_, err = cal.ToCanonical(y, m, dim, 0, 0)
					require.NoError(t, err)
					_, err = cal.ToCanonical(y, m, dim+1, 0, 0)
					require.True(t, apperror.Is(err, apperror.TypeInvalidDate), "%d-%d-%d", y, m, dim+1)
				}

				start, err := cal.ToCanonical(y, 1, 1, 0, 0)
				require.NoError(t, err)
				next, err := cal.ToCanonical(y+1, 1, 1, 0, 0)
				require.NoError(t, err)
				require.Equal(t, int64(total), int64(next-start)/secondsPerDay, "year %d", y)
			}
		})
	}
}

func TestInvalidTuples(t *testing.T) {
	g := mustGregorian(t)
	tests := []struct {
		name              string
		y, m, d, hour, mi int
	}{
		{"month zero", 2024, 0, 1, 0, 0},
		{"month thirteen", 2024, 13, 1, 0, 0},
		{"day zero", 2024, 1, 0, 0, 0},
		{"april 31", 2024, 4, 31, 0, 0},
		{"hour 24", 2024, 1, 1, 24, 0},
		{"negative minute", 2024, 1, 1, 0, -1},
		{"minute 60", 2024, 1, 1, 0, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.ToCanonical(tt.y, tt.m, tt.d, tt.hour, tt.mi)
			assert.True(t, apperror.Is(err, apperror.TypeInvalidDate))
			assert.Equal(t, 422, apperror.SafeCode(err))

			err = Validate(g, tt.y, tt.m, tt.d, tt.hour, tt.mi)
			assert.True(t, apperror.Is(err, apperror.TypeInvalidDate))
		})
	}

	assert.NoError(t, Validate(g, 2024, 2, 29, 23, 59))
}

// --- Gregorian ---

func TestGregorian_LeapYears(t *testing.T) {
	g := mustGregorian(t)

	n, err := g.DaysInMonth(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 29, n)

	n, err = g.DaysInMonth(2023, 2)
	require.NoError(t, err)
	assert.Equal(t, 28, n)

	_, err = g.ToCanonical(2024, 2, 29, 12, 0)
	assert.NoError(t, err)
	_, err = g.ToCanonical(2023, 2, 29, 12, 0)
	assert.True(t, apperror.Is(err, apperror.TypeInvalidDate))

	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2100))
	assert.True(t, IsLeapYear(2024))
}

func TestGregorian_KnownInstants(t *testing.T) {
	g := mustGregorian(t)

	inst, err := g.ToCanonical(1970, 1, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Instant(0), inst)

	inst, err = g.ToCanonical(2024, 2, 29, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, Instant(1709208000), inst)

	c, err := g.FromCanonical(1709208000, timezone.UTC())
	require.NoError(t, err)
	assert.Equal(t, DateComponents{Year: 2024, Month: 2, Day: 29, Hour: 12, Weekday: 4, YearDay: 60}, c)

	// One second before the epoch is the last second of 1969.
	c, err = g.FromCanonical(-1, timezone.UTC())
	require.NoError(t, err)
	assert.Equal(t, "1969-12-31 23:59:59", c.String())
	assert.Equal(t, 365, c.YearDay)
}

func TestGregorian_FromCanonicalAppliesOffset(t *testing.T) {
	g := mustGregorian(t)

	c, err := g.FromCanonical(1709208000, timezone.MustFixed(5.5))
	require.NoError(t, err)
	assert.Equal(t, 17, c.Hour)
	assert.Equal(t, 30, c.Minute)

	c, err = g.FromCanonical(1709208000, timezone.MustFixed(-14))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28 22:00:00", c.String())

	_, err = g.FromCanonical(0, timezone.Named("Europe/Paris"))
	assert.True(t, apperror.Is(err, apperror.TypeTimezone))
}

func TestGregorian_StartingWeekday(t *testing.T) {
	assert.Equal(t, 0, mustGregorian(t).StartingWeekday())
	assert.Equal(t, 1, mustGregorian(t, WithStartingWeekday(1)).StartingWeekday())

	_, err := NewGregorian(WithStartingWeekday(7))
	assert.True(t, apperror.Is(err, apperror.TypeValidation))
}

func TestGregorian_Shape(t *testing.T) {
	g := mustGregorian(t)
	assert.Equal(t, GregorianName, g.Name())
	assert.Equal(t, 1900, g.MinYear())
	assert.Equal(t, 2050, g.MaxYear())
	assert.Equal(t, 7, g.NumWeekdays())
	assert.Len(t, g.Days(), 31)
	assert.Equal(t, 1, g.Days()[0])
	assert.Equal(t, "December", g.Months()[11])
	assert.Equal(t, "Sunday", g.Weekdays()[0].Full)
}

// --- Hijri ---

func TestHijri_KnownDates(t *testing.T) {
	h := mustHijri(t)

	tests := []struct {
		name    string
		greg    GregorianDate
		y, m, d int
	}{
		{"new year 1445", GregorianDate{Year: 2023, Month: 7, Day: 19}, 1445, 1, 1},
		{"ramadan 1445", GregorianDate{Year: 2024, Month: 3, Day: 11}, 1445, 9, 1},
		{"new year 1446", GregorianDate{Year: 2024, Month: 7, Day: 8}, 1446, 1, 1},
		{"gregorian leap day", GregorianDate{Year: 2024, Month: 2, Day: 29}, 1445, 8, 19},
		{"unix epoch", GregorianDate{Year: 1970, Month: 1, Day: 1}, 1389, 10, 22},
		{"first selectable year", GregorianDate{Year: 1899, Month: 5, Day: 12}, 1317, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := h.ConvertFromGregorian(tt.greg.Year, tt.greg.Month, tt.greg.Day, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, [3]int{tt.y, tt.m, tt.d}, [3]int{c.Year, c.Month, c.Day})

			g, err := h.ConvertToGregorian(tt.y, tt.m, tt.d, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.greg, g)
		})
	}
}

func TestHijri_LeapRule(t *testing.T) {
	h := mustHijri(t)
	leap := map[int]bool{2: true, 5: true, 7: true, 10: true, 13: true, 16: true, 18: true, 21: true, 24: true, 26: true, 29: true}
	for y := 1; y <= 30; y++ {
		assert.Equal(t, leap[y], IsHijriLeapYear(y), "year %d", y)
	}

	n, err := h.DaysInMonth(1445, 12)
	require.NoError(t, err)
	assert.Equal(t, 30, n)
	n, err = h.DaysInMonth(1446, 12)
	require.NoError(t, err)
	assert.Equal(t, 29, n)
	n, err = h.DaysInMonth(1446, 9)
	require.NoError(t, err)
	assert.Equal(t, 30, n)
}

func TestHijri_Shape(t *testing.T) {
	h := mustHijri(t)
	assert.Equal(t, 1317, h.MinYear())
	assert.Equal(t, 1473, h.MaxYear())
	assert.Equal(t, 6, h.StartingWeekday())
	assert.Equal(t, "Ramadan", h.Months()[8])
	assert.Len(t, h.Days(), 30)

	wd, err := h.Weekday(1445, 8, 19)
	require.NoError(t, err)
	assert.Equal(t, 4, wd)
}

// --- Custom ---

func TestCustom_Epoch(t *testing.T) {
	c := mustCustom(t)

	inst, err := c.ToCanonical(1, 1, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Instant(946684800), inst)

	dc, err := c.ConvertFromGregorian(2000, 1, 1, 6, 15)
	require.NoError(t, err)
	assert.Equal(t, DateComponents{Year: 1, Month: 1, Day: 1, Hour: 6, Minute: 15, YearDay: 1}, dc)

	// Day 31 of year 1 is the festival.
	dc, err = c.ConvertFromGregorian(2000, 1, 31, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 1}, [2]int{dc.Month, dc.Day})
	assert.True(t, c.IsIntercalary(2))
	assert.False(t, c.IsIntercalary(3))
}

func TestCustom_LeapYears(t *testing.T) {
	c := mustCustom(t)
	assert.True(t, c.IsLeapYear(4))
	assert.True(t, c.IsLeapYear(0))
	assert.True(t, c.IsLeapYear(-4))
	assert.False(t, c.IsLeapYear(1))

	n, err := c.DaysInMonth(4, 3)
	require.NoError(t, err)
	assert.Equal(t, 31, n)
	n, err = c.DaysInMonth(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	// Years 1..3 have 61 days, so year 5 begins 61*3 + 62 days after year 1.
	start, err := c.ToCanonical(1, 1, 1, 0, 0)
	require.NoError(t, err)
	five, err := c.ToCanonical(5, 1, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(245), int64(five-start)/secondsPerDay)

	// Year 0 is a leap year and ends the day before the epoch.
	g, err := c.ConvertToGregorian(0, 3, 31, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, GregorianDate{Year: 1999, Month: 12, Day: 31}, g)
}

func TestCustom_Weekdays(t *testing.T) {
	cfg := testCustomConfig()
	cfg.EpochWeekday = 3
	c, err := NewCustom(cfg)
	require.NoError(t, err)

	wd, err := c.Weekday(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, wd)
	wd, err = c.Weekday(1, 1, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, wd)
	wd, err = c.Weekday(1, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, 3, wd)
}

func TestCustom_NoLeapRule(t *testing.T) {
	cfg := testCustomConfig()
	cfg.LeapYearEvery = 0
	c, err := NewCustom(cfg)
	require.NoError(t, err)

	for y := -8; y <= 8; y++ {
		assert.False(t, c.IsLeapYear(y))
		n, err := c.DaysInMonth(y, 3)
		require.NoError(t, err)
		assert.Equal(t, 30, n)
	}

	dc, err := c.ConvertFromGregorian(2000, 3, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 1, 1}, [3]int{dc.Year, dc.Month, dc.Day})
}

func TestNewCustom_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CustomConfig)
	}{
		{"no name", func(c *CustomConfig) { c.Name = "" }},
		{"no months", func(c *CustomConfig) { c.Months = nil }},
		{"empty month", func(c *CustomConfig) { c.Months[0].Days = 0 }},
		{"huge month", func(c *CustomConfig) { c.Months[0].Days = 401 }},
		{"negative leap days", func(c *CustomConfig) { c.Months[0].LeapYearDays = -1 }},
		{"no weekdays", func(c *CustomConfig) { c.Weekdays = nil }},
		{"unnamed weekday", func(c *CustomConfig) { c.Weekdays[3].Short = "" }},
		{"too many months", func(c *CustomConfig) {
			c.Months = make([]CustomMonth, MaxCustomMonths+1)
			for i := range c.Months {
				c.Months[i] = CustomMonth{Name: "M", Days: 1}
			}
		}},
		{"too many weekdays", func(c *CustomConfig) {
			c.Weekdays = make([]WeekdayName, MaxCustomWeekdays+1)
			for i := range c.Weekdays {
				c.Weekdays[i] = WeekdayName{Short: "W", Full: "Weekday"}
			}
		}},
		{"negative leap interval", func(c *CustomConfig) { c.LeapYearEvery = -4 }},
		{"inverted years", func(c *CustomConfig) { c.MinYear, c.MaxYear = 10, 5 }},
		{"min year below range", func(c *CustomConfig) { c.MinYear = -3_000_000_000 }},
		{"max year above range", func(c *CustomConfig) { c.MaxYear = MaxAbsYear + 1 }},
		{"epoch weekday", func(c *CustomConfig) { c.EpochWeekday = 10 }},
		{"starting weekday", func(c *CustomConfig) { c.StartingWeekday = -1 }},
		{"epoch date", func(c *CustomConfig) { c.Epoch = GregorianDate{Year: 2001, Month: 2, Day: 29} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCustomConfig()
			tt.mutate(&cfg)
			_, err := NewCustom(cfg)
			assert.True(t, apperror.Is(err, apperror.TypeValidation), "got %v", err)
		})
	}
}

func TestFromCanonical_OutOfRange(t *testing.T) {
	cals := []Type{mustGregorian(t), mustHijri(t), mustCustom(t)}
	for _, cal := range cals {
		t.Run(cal.Name(), func(t *testing.T) {
			for _, inst := range []Instant{math.MaxInt64, math.MinInt64, maxAbsInstant + 1} {
				_, err := cal.FromCanonical(inst, timezone.MustFixed(14))
				assert.True(t, apperror.Is(err, apperror.TypeInvalidDate), "instant %d: got %v", inst, err)
			}
		})
	}
}

func TestFromCanonical_ReachesYearBounds(t *testing.T) {
	g := mustGregorian(t)
	for _, year := range []int{-MaxAbsYear, MaxAbsYear} {
		inst, err := g.ToCanonical(year, 12, 31, 23, 59)
		require.NoError(t, err)
		c, err := g.FromCanonical(inst, timezone.UTC())
		require.NoError(t, err)
		assert.Equal(t, year, c.Year)
	}
}
