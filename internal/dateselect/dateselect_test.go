package dateselect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// spyCalendar wraps a real calendar and counts conversions.
type spyCalendar struct {
	calendar.Type
	toCalls   int
	fromCalls int
}

func (s *spyCalendar) ToCanonical(y, m, d, h, mi int) (calendar.Instant, error) {
	s.toCalls++
	return s.Type.ToCanonical(y, m, d, h, mi)
}

func (s *spyCalendar) FromCanonical(t calendar.Instant, tz timezone.Spec) (calendar.DateComponents, error) {
	s.fromCalls++
	return s.Type.FromCanonical(t, tz)
}

func newSpy(t *testing.T) *spyCalendar {
	t.Helper()
	g, err := calendar.NewGregorian()
	require.NoError(t, err)
	return &spyCalendar{Type: g}
}

func newSelector(t *testing.T, cal calendar.Type, mutate func(*Options)) *Selector {
	t.Helper()
	opts := DefaultOptions(cal)
	opts.Timezone = timezone.UTC()
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(cal, opts)
	require.NoError(t, err)
	return s
}

// leapNoonish is 2024-02-29 12:37:00 UTC.
const leapNoonish calendar.Instant = 1709210220

func TestRoundDown(t *testing.T) {
	tests := []struct{ minute, step, want int }{
		{37, 5, 35},
		{0, 5, 0},
		{59, 5, 55},
		{59, 15, 45},
		{37, 1, 37},
		{37, 0, 37},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundDown(tt.minute, tt.step), "RoundDown(%d, %d)", tt.minute, tt.step)
	}
}

func TestDefaultOptions(t *testing.T) {
	spy := newSpy(t)
	opts := DefaultOptions(spy)
	assert.Equal(t, 1900, opts.StartYear)
	assert.Equal(t, 2050, opts.StopYear)
	assert.Equal(t, calendar.Unset, opts.DefaultTime)
	assert.True(t, opts.Timezone.IsUser())
	assert.Equal(t, 5, opts.Step)
	assert.False(t, opts.Optional)
}

func TestNew_Validation(t *testing.T) {
	spy := newSpy(t)

	_, err := New(nil, Options{Step: 5})
	assert.True(t, apperror.Is(err, apperror.TypeValidation))

	opts := DefaultOptions(spy)
	opts.Step = 0
	_, err = New(spy, opts)
	assert.True(t, apperror.Is(err, apperror.TypeValidation))

	opts = DefaultOptions(spy)
	opts.StartYear, opts.StopYear = 2000, 1999
	_, err = New(spy, opts)
	assert.True(t, apperror.Is(err, apperror.TypeValidation))
}

func TestNew_YearSpan(t *testing.T) {
	spy := newSpy(t)

	tests := []struct {
		name        string
		start, stop int
	}{
		{"whole int32 range", -2_000_000_000, 2_000_000_000},
		{"one year too wide", 0, MaxYearSpan + 1},
		{"start below calendar range", -calendar.MaxAbsYear - 1, -calendar.MaxAbsYear + 10},
		{"stop above calendar range", calendar.MaxAbsYear - 10, calendar.MaxAbsYear + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(spy)
			opts.StartYear, opts.StopYear = tt.start, tt.stop
			_, err := New(spy, opts)
			assert.True(t, apperror.Is(err, apperror.TypeValidation), "got %v", err)
		})
	}

	sel := newSelector(t, spy, func(o *Options) { o.StartYear, o.StopYear = -5000, -5000+MaxYearSpan })
	assert.Len(t, sel.Choices().Years, MaxYearSpan+1)
}

// wideCalendar advertises a year range wider than a selector may show.
type wideCalendar struct{ calendar.Type }

func (wideCalendar) MinYear() int { return -calendar.MaxAbsYear }
func (wideCalendar) MaxYear() int { return calendar.MaxAbsYear }

func TestDefaultOptions_CutsWideRange(t *testing.T) {
	cal := wideCalendar{Type: newSpy(t)}
	opts := DefaultOptions(cal)
	assert.Equal(t, -calendar.MaxAbsYear, opts.StartYear)
	assert.Equal(t, -calendar.MaxAbsYear+MaxYearSpan, opts.StopYear)

	_, err := New(cal, opts)
	require.NoError(t, err)
}

func TestDecode_RoundsDownToStep(t *testing.T) {
	s := newSelector(t, newSpy(t), nil)

	v, err := s.Decode(leapNoonish)
	require.NoError(t, err)
	assert.Equal(t, Value{Year: 2024, Month: 2, Day: 29, Hour: 12, Minute: 35, Enabled: true}, v)
}

func TestDecode_UnsetSkipsConversion(t *testing.T) {
	spy := newSpy(t)
	s := newSelector(t, spy, func(o *Options) { o.Optional = true })

	v, err := s.Decode(calendar.Unset)
	require.NoError(t, err)
	assert.False(t, v.Enabled)
	assert.Zero(t, spy.fromCalls)
}

func TestEncode_DisabledSkipsConversion(t *testing.T) {
	spy := newSpy(t)
	s := newSelector(t, spy, func(o *Options) { o.Optional = true })

	got, err := s.Encode(Value{Year: 2024, Month: 2, Day: 29, Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, calendar.Unset, got)
	assert.Zero(t, spy.toCalls)

	// Even an impossible date is ignored when the field is disabled.
	got, err = s.Encode(Value{Year: 2023, Month: 2, Day: 31})
	require.NoError(t, err)
	assert.Equal(t, calendar.Unset, got)
	assert.Zero(t, spy.toCalls)
}

func TestEncode_ConvertsInSelectorTimezone(t *testing.T) {
	spy := newSpy(t)
	s := newSelector(t, spy, func(o *Options) { o.Timezone = timezone.MustFixed(5.5) })

	got, err := s.Encode(Value{Year: 2024, Month: 2, Day: 29, Hour: 17, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, calendar.Instant(1709208000), got)
	assert.Equal(t, 1, spy.toCalls)

	// Required selectors convert whatever Enabled says.
	got, err = s.Encode(Value{Year: 2024, Month: 2, Day: 29, Hour: 17, Minute: 30, Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, calendar.Instant(1709208000), got)
}

func TestEncode_InvalidDate(t *testing.T) {
	s := newSelector(t, newSpy(t), nil)
	_, err := s.Encode(Value{Year: 2023, Month: 2, Day: 29, Enabled: true})
	assert.True(t, apperror.Is(err, apperror.TypeInvalidDate))
}

func TestDecodeEncode_RoundTrip(t *testing.T) {
	h, err := calendar.NewHijri()
	require.NoError(t, err)
	s := newSelector(t, h, func(o *Options) {
		o.Timezone = timezone.MustFixed(-3.5)
		o.Optional = true
	})

	in := Value{Year: 1445, Month: 9, Day: 1, Hour: 4, Minute: 15, Enabled: true}
	inst, err := s.Encode(in)
	require.NoError(t, err)
	out, err := s.Decode(inst)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPrefill_Fallbacks(t *testing.T) {
	fixedNow := time.Date(2030, 6, 15, 8, 44, 0, 0, time.UTC)
	spy := newSpy(t)

	s := newSelector(t, spy, func(o *Options) {
		o.Now = func() time.Time { return fixedNow }
	})
	v, err := s.Prefill(calendar.Unset)
	require.NoError(t, err)
	assert.Equal(t, Value{Year: 2030, Month: 6, Day: 15, Hour: 8, Minute: 40, Enabled: true}, v)

	s = newSelector(t, spy, func(o *Options) {
		o.DefaultTime = leapNoonish
		o.Now = func() time.Time { return fixedNow }
	})
	v, err = s.Prefill(calendar.Unset)
	require.NoError(t, err)
	assert.Equal(t, Value{Year: 2024, Month: 2, Day: 29, Hour: 12, Minute: 35, Enabled: true}, v)

	v, err = s.Prefill(1709208000)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Minute)
	assert.Equal(t, 12, v.Hour)
}

func TestPrefill_OptionalEnabledOnlyWhenSet(t *testing.T) {
	s := newSelector(t, newSpy(t), func(o *Options) {
		o.Optional = true
		o.Now = func() time.Time { return time.Unix(1709208000, 0) }
	})

	v, err := s.Prefill(calendar.Unset)
	require.NoError(t, err)
	assert.False(t, v.Enabled)
	assert.Equal(t, 2024, v.Year)

	v, err = s.Prefill(leapNoonish)
	require.NoError(t, err)
	assert.True(t, v.Enabled)
}

func TestChoices(t *testing.T) {
	spy := newSpy(t)
	s := newSelector(t, spy, func(o *Options) {
		o.StartYear, o.StopYear = 2020, 2025
		o.Step = 15
	})

	c := s.Choices()
	assert.Len(t, c.Days, 31)
	assert.Len(t, c.Months, 12)
	assert.Equal(t, Choice{Value: 12, Label: "December"}, c.Months[11])
	assert.Len(t, c.Years, 6)
	assert.Equal(t, Choice{Value: 2020, Label: "2020"}, c.Years[0])
	assert.Len(t, c.Hours, 24)
	assert.Equal(t, "07", c.Hours[7].Label)
	assert.Equal(t, []Choice{{0, "00"}, {15, "15"}, {30, "30"}, {45, "45"}}, c.Minutes)
	assert.Zero(t, spy.toCalls+spy.fromCalls)
}
