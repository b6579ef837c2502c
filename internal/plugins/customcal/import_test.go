package customcal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
)

func TestExport_RoundTrip(t *testing.T) {
	def := validInput().toDefinition()
	data, err := json.Marshal(BuildExport(def))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format":"almanac-calendar-v1"`)

	result, err := DetectAndParse(data)
	require.NoError(t, err)
	assert.Equal(t, FormatAlmanac, result.Format)

	in := result.Input(ImportOptions{})
	assert.Equal(t, validInput(), in)
	require.NoError(t, in.Validate())

	renamed := result.Input(ImportOptions{Slug: "harptos-copy"})
	assert.Equal(t, "harptos-copy", renamed.Slug)
}

func TestDetectAndParse_AlmanacNewerVersion(t *testing.T) {
	_, err := DetectAndParse([]byte(`{"format":"almanac-calendar-v1","version":2,"calendar":{"name":"X"}}`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.TypeValidation))
	assert.Contains(t, err.Error(), "newer")
}

func TestDetectAndParse_Errors(t *testing.T) {
	_, err := DetectAndParse([]byte(`{"months": [`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.TypeBadRequest))

	_, err = DetectAndParse([]byte(`{"foo": 1}`))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.TypeValidation))
	assert.Contains(t, err.Error(), "unrecognized calendar format")
}

const simpleCalendarV1 = `{
	"calendar": {
		"name": "CALENDAR.Harptos",
		"currentDate": {"year": 1492},
		"leapYear": {"rule": "custom", "customMod": 4},
		"months": [
			{"name": "Hammer", "numberOfDays": 30, "numberOfLeapYearDays": 30},
			{"name": "Midwinter", "numberOfDays": 1, "numberOfLeapYearDays": 2, "intercalary": true}
		],
		"weekdays": [
			{"name": "First", "abbreviation": "1st"},
			{"name": "Second", "abbreviation": "2nd"},
			{"name": "Third", "abbreviation": "3rd"}
		],
		"year": {"numericRepresentation": 1490, "firstWeekday": 2}
	}
}`

func TestDetectAndParse_SimpleCalendarV1(t *testing.T) {
	result, err := DetectAndParse([]byte(simpleCalendarV1))
	require.NoError(t, err)
	assert.Equal(t, FormatSimpleCal, result.Format)
	assert.Equal(t, 1492, result.CurrentYear)

	in := result.Input(ImportOptions{})
	require.NoError(t, in.Validate())
	assert.Equal(t, "harptos", in.Slug)
	assert.Equal(t, "Harptos", in.Name)
	assert.Equal(t, DefaultImportEpoch, in.EpochDate)
	assert.Equal(t, 1, in.EpochYear)
	assert.Equal(t, 1, in.MinYear)
	assert.Equal(t, 2492, in.MaxYear)
	assert.Equal(t, 2, in.EpochWeekday)
	assert.Equal(t, 4, in.LeapYearEvery)
	assert.Equal(t, []calendar.CustomMonth{
		{Name: "Hammer", Days: 30},
		{Name: "Midwinter", Days: 1, LeapYearDays: 1, IsIntercalary: true},
	}, in.Months)
	assert.Equal(t, calendar.WeekdayName{Short: "1st", Full: "First"}, in.Weekdays[0])
}

func TestDetectAndParse_SimpleCalendarV2(t *testing.T) {
	data := `{
		"exportVersion": 2,
		"calendars": [{
			"name": "Greyhawk",
			"leapYear": {"rule": "gregorian"},
			"months": [{"name": "Fireseek", "numberOfDays": 28, "numberOfLeapYearDays": 28}],
			"weekdays": [{"name": "Starday", "abbreviation": "St"}]
		}]
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, FormatSimpleCal, result.Format)
	assert.Equal(t, "Greyhawk", result.Calendar.Name)
	assert.Equal(t, 4, result.Calendar.LeapYearEvery)
	require.NoError(t, result.Input(ImportOptions{}).Validate())
}

func TestDetectAndParse_SimpleCalendarLegacyFields(t *testing.T) {
	data := `{
		"calendar": {
			"name": "Old",
			"monthSettings": [{"name": "Only", "numberOfDays": 10}],
			"weekdaySettings": [{"name": "Oneday"}, {"name": "Twoday"}],
			"yearSettings": {"numericRepresentation": 5, "firstWeekday": 1},
			"leapYearSettings": {"rule": "custom", "customMod": 3}
		}
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 5, result.CurrentYear)
	assert.Equal(t, 3, result.Calendar.LeapYearEvery)

	in := result.Input(ImportOptions{})
	require.NoError(t, in.Validate())
	require.Len(t, in.Months, 1)
	assert.Equal(t, 1, in.EpochWeekday)
	assert.Equal(t, calendar.WeekdayName{Short: "One", Full: "Oneday"}, in.Weekdays[0])
}

func TestDetectAndParse_Calendaria(t *testing.T) {
	data := `{
		"name": "Exandria",
		"days": {
			"hoursPerDay": 24,
			"values": {
				"b": {"name": "Twoday", "abbreviation": "Tw", "ordinal": 2},
				"a": {"name": "Oneday", "abbreviation": "On", "ordinal": 1}
			}
		},
		"months": {"values": {
			"m2": {"name": "Second", "ordinal": 2, "days": 28, "leapDays": 29},
			"m1": {"name": "First", "ordinal": 1, "days": 30}
		}},
		"years": {"yearZero": 800, "firstWeekday": 1, "leapYear": {"leapStart": 2, "leapInterval": 4}},
		"leapYearConfig": {"rule": "custom"}
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, FormatCalendaria, result.Format)

	in := result.Input(ImportOptions{})
	require.NoError(t, in.Validate())
	assert.Equal(t, "exandria", in.Slug)
	assert.Equal(t, 4, in.LeapYearEvery)
	assert.Equal(t, 2, in.LeapYearOffset)
	assert.Equal(t, 1800, in.MaxYear)
	assert.Equal(t, []calendar.CustomMonth{
		{Name: "First", Days: 30},
		{Name: "Second", Days: 28, LeapYearDays: 1},
	}, in.Months)
	assert.Equal(t, []calendar.WeekdayName{
		{Short: "On", Full: "Oneday"},
		{Short: "Tw", Full: "Twoday"},
	}, in.Weekdays)
}

func TestDetectAndParse_CalendariaWeeksOnly(t *testing.T) {
	data := `{
		"months": {"a": {"name": "Alpha", "days": 10, "ordinal": 1}},
		"weeks": {
			"y": {"name": "Yonday", "ordinal": 2},
			"x": {"name": "Xenday", "ordinal": 1}
		}
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, FormatCalendaria, result.Format)

	in := result.Input(ImportOptions{})
	require.NoError(t, in.Validate())
	assert.Equal(t, defaultImportName, in.Name)
	assert.Equal(t, "imported-calendar", in.Slug)
	assert.Equal(t, []calendar.WeekdayName{
		{Short: "Xen", Full: "Xenday"},
		{Short: "Yon", Full: "Yonday"},
	}, in.Weekdays)
}

func TestDetectAndParse_FantasyCalendar(t *testing.T) {
	data := `{
		"name": "Earth Again",
		"static_data": {"year_data": {
			"first_day": 2,
			"global_week": ["Mon", "Tue", "Wed"],
			"timespans": [
				{"name": "Jan", "type": "month", "length": 31},
				{"name": "Feb", "type": "month", "length": 28},
				{"name": "Yule", "type": "intercalary", "length": 1}
			],
			"leap_days": [
				{"timespan": 1, "interval": "400,!100,4", "offset": 0},
				{"timespan": 9, "interval": "4"},
				{"timespan": 2, "interval": "!7"}
			]
		}},
		"dynamic_data": {"year": 2024}
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, FormatFantasyCal, result.Format)

	in := result.Input(ImportOptions{Slug: "earth"})
	require.NoError(t, in.Validate())
	assert.Equal(t, "earth", in.Slug)
	assert.Equal(t, 4, in.LeapYearEvery)
	assert.Equal(t, 1, in.EpochWeekday)
	assert.Equal(t, 3024, in.MaxYear)
	assert.Equal(t, []calendar.CustomMonth{
		{Name: "Jan", Days: 31},
		{Name: "Feb", Days: 28, LeapYearDays: 1},
		{Name: "Yule", Days: 1, IsIntercalary: true},
	}, in.Months)
}

func TestDetectAndParse_Chronicle(t *testing.T) {
	data := `{
		"format": "chronicle-calendar-v1",
		"version": 1,
		"calendar": {
			"name": "Campaign Reckoning",
			"current_year": 10,
			"months": [
				{"name": "Later", "days": 20, "sort_order": 2},
				{"name": "Sooner", "days": 10, "sort_order": 1}
			],
			"weekdays": [{"name": "Sunday", "sort_order": 0}],
			"moons": [{"name": "Selune"}]
		}
	}`
	result, err := DetectAndParse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, FormatChronicle, result.Format)

	in := result.Input(ImportOptions{})
	require.NoError(t, in.Validate())
	assert.Equal(t, "campaign-reckoning", in.Slug)
	require.Len(t, in.Months, 2)
	assert.Equal(t, "Sooner", in.Months[0].Name)
	assert.Equal(t, []calendar.WeekdayName{{Short: "Sun", Full: "Sunday"}}, in.Weekdays)
}

func TestImportResult_InputOptions(t *testing.T) {
	result, err := DetectAndParse([]byte(simpleCalendarV1))
	require.NoError(t, err)

	year := 1400
	in := result.Input(ImportOptions{EpochDate: "1200-03-01", EpochYear: &year})
	require.NoError(t, in.Validate())
	assert.Equal(t, "1200-03-01", in.EpochDate)
	assert.Equal(t, 1400, in.EpochYear)
	assert.Equal(t, 1400, in.MinYear)
	assert.Equal(t, 2492, in.MaxYear)

	result.CurrentYear = 999_999_999
	result.Calendar.EpochWeekday = 7
	in = result.Input(ImportOptions{})
	assert.Equal(t, calendar.MaxAbsYear, in.MaxYear)
	assert.Equal(t, 0, in.EpochWeekday)
	require.NoError(t, in.Validate())
}

func TestLeapInterval(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"4", 4},
		{"400,!100,4", 4},
		{"+8, 12", 8},
		{"!100", 0},
		{"0", 0},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leapInterval(tt.expr), tt.expr)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Calendar of Harptos", "calendar-of-harptos"},
		{"  Dale Reckoning!! ", "dale-reckoning"},
		{"Year_2 of Kings", "year-2-of-kings"},
		{"!!!", "imported"},
		{"", "imported"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.name), tt.name)
	}

	long := slugify(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(long), 64)
	assert.False(t, strings.HasSuffix(long, "-"))
	assert.True(t, slugPattern.MatchString(long))
}

func TestStripLocalizationKey(t *testing.T) {
	assert.Equal(t, "Hammer", stripLocalizationKey("CALENDAR.Month.Hammer"))
	assert.Equal(t, "Hammer", stripLocalizationKey(" Hammer "))
}
