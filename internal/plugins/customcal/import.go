// Package customcal — import.go reads calendar configurations exported by
// other tools and turns them into definition payloads.
//
// # Supported Formats
//
// ## Almanac (almanac-calendar-v1)
// Native format written by BuildExport. Round-trips exactly.
//
// ## Chronicle (chronicle-calendar-v1)
// Chronicle campaign calendar exports: months, weekdays and the leap rule.
//
// ## Simple Calendar (Foundry VTT)
// Identified by a top-level "calendar" key (v1) or "exportVersion" plus a
// "calendars" array (v2). Months use numberOfDays/numberOfLeapYearDays.
//
// ## Calendaria (Foundry VTT)
// Identified by "days.hoursPerDay" or by "months" being a keyed object.
// Entries are ordered by their "ordinal".
//
// ## Fantasy-Calendar
// Identified by "static_data" plus "dynamic_data". Months are timespans and
// leap days add to the timespan they belong to.
//
// Foreign formats carry no anchor to the real timeline, so the epoch comes
// from ImportOptions. Moons, seasons, eras and clock settings have no place
// in a definition and are dropped.
package customcal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
)

// ImportFormat identifies which JSON format was detected.
type ImportFormat string

const (
	FormatAlmanac    ImportFormat = "almanac"
	FormatChronicle  ImportFormat = "chronicle"
	FormatSimpleCal  ImportFormat = "simple-calendar"
	FormatCalendaria ImportFormat = "calendaria"
	FormatFantasyCal ImportFormat = "fantasy-calendar"
	FormatUnknown    ImportFormat = "unknown"
)

const (
	// DefaultImportEpoch anchors foreign calendars when the caller names no
	// epoch date: day 1 of the epoch year falls on the Unix epoch.
	DefaultImportEpoch = "1970-01-01"

	// importYearSpan is how far past the current year an imported calendar's
	// year range reaches.
	importYearSpan = 1000

	defaultImportName = "Imported Calendar"
)

// ImportOptions fills in what foreign formats do not carry. Zero values
// take defaults.
type ImportOptions struct {
	// Slug overrides the slug; by default it is derived from the name.
	Slug string
	// EpochDate is the Gregorian date of day 1 of EpochYear (YYYY-MM-DD).
	EpochDate string
	// EpochYear is the calendar year EpochDate begins. Default 1.
	EpochYear *int
}

// ImportResult is a parsed calendar ready to become an Input.
type ImportResult struct {
	Format   ImportFormat   `json:"format"`
	Calendar ExportCalendar `json:"calendar"`

	// CurrentYear is the foreign format's "now", used to size the year
	// range. Zero when absent.
	CurrentYear int `json:"current_year,omitempty"`

	// anchored is true when the source carried epoch and year range.
	anchored bool
}

// Input finishes the payload: the slug, and for foreign formats the epoch
// and year range. Validation happens on create.
func (r *ImportResult) Input(opts ImportOptions) Input {
	in := r.Calendar.input()
	if opts.Slug != "" {
		in.Slug = opts.Slug
	}
	if in.Slug == "" {
		in.Slug = slugify(in.Name)
	}
	if r.anchored {
		return in
	}

	in.EpochDate = DefaultImportEpoch
	if opts.EpochDate != "" {
		in.EpochDate = opts.EpochDate
	}
	in.EpochYear = 1
	if opts.EpochYear != nil {
		in.EpochYear = *opts.EpochYear
	}
	in.MinYear = in.EpochYear
	in.MaxYear = max(in.EpochYear, r.CurrentYear) + importYearSpan
	if in.MaxYear > calendar.MaxAbsYear {
		in.MaxYear = calendar.MaxAbsYear
	}
	if in.EpochWeekday < 0 || in.EpochWeekday >= len(in.Weekdays) {
		in.EpochWeekday = 0
	}
	return in
}

// DetectAndParse auto-detects the format of raw JSON bytes and parses it.
// Malformed JSON is a bad request; well-formed JSON in no known format is a
// validation error.
func DetectAndParse(data []byte) (*ImportResult, error) {
	if !json.Valid(data) {
		return nil, apperror.NewBadRequest("import file is not valid JSON")
	}

	var (
		result *ImportResult
		err    error
	)
	switch detectFormat(data) {
	case FormatAlmanac:
		result, err = parseAlmanac(data)
	case FormatChronicle:
		result, err = parseChronicle(data)
	case FormatSimpleCal:
		result, err = parseSimpleCalendar(data)
	case FormatCalendaria:
		result, err = parseCalendaria(data)
	case FormatFantasyCal:
		result, err = parseFantasyCalendar(data)
	default:
		return nil, apperror.NewValidation("unrecognized calendar format: expected Almanac, Chronicle, Simple Calendar, Calendaria or Fantasy-Calendar JSON")
	}
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	if result.Calendar.Name == "" {
		result.Calendar.Name = defaultImportName
	}
	return result, nil
}

// detectFormat inspects the top-level keys of the JSON document.
func detectFormat(data []byte) ImportFormat {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return FormatUnknown
	}

	if formatVal, ok := raw["format"]; ok {
		var f string
		if json.Unmarshal(formatVal, &f) == nil {
			switch f {
			case ExportFormat:
				return FormatAlmanac
			case "chronicle-calendar-v1":
				return FormatChronicle
			}
		}
	}

	// Simple Calendar v1: a single "calendar" object.
	if _, ok := raw["calendar"]; ok {
		return FormatSimpleCal
	}
	// Simple Calendar v2: "exportVersion" and a "calendars" array.
	if _, ok := raw["exportVersion"]; ok {
		if _, hasCalendars := raw["calendars"]; hasCalendars {
			return FormatSimpleCal
		}
	}

	if _, hasStatic := raw["static_data"]; hasStatic {
		if _, hasDynamic := raw["dynamic_data"]; hasDynamic {
			return FormatFantasyCal
		}
	}

	if daysRaw, ok := raw["days"]; ok {
		var daysObj map[string]json.RawMessage
		if json.Unmarshal(daysRaw, &daysObj) == nil {
			if _, hasHPD := daysObj["hoursPerDay"]; hasHPD {
				return FormatCalendaria
			}
		}
	}
	if monthsRaw, ok := raw["months"]; ok {
		trimmed := strings.TrimSpace(string(monthsRaw))
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return FormatCalendaria
		}
	}

	return FormatUnknown
}

// --- Native Parsers ---

func parseAlmanac(data []byte) (*ImportResult, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse almanac JSON: %w", err)
	}
	if export.Version > exportVersion {
		return nil, fmt.Errorf("export version %d is newer than supported version %d", export.Version, exportVersion)
	}
	return &ImportResult{Format: FormatAlmanac, Calendar: export.Calendar, anchored: true}, nil
}

// chronicleExport is the part of a Chronicle calendar export that maps onto
// a definition.
type chronicleExport struct {
	Calendar chronicleCalendar `json:"calendar"`
}

type chronicleCalendar struct {
	Name           string             `json:"name"`
	Description    *string            `json:"description"`
	CurrentYear    int                `json:"current_year"`
	LeapYearEvery  int                `json:"leap_year_every"`
	LeapYearOffset int                `json:"leap_year_offset"`
	Months         []ExportMonth      `json:"months"`
	Weekdays       []chronicleWeekday `json:"weekdays"`
}

type chronicleWeekday struct {
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func parseChronicle(data []byte) (*ImportResult, error) {
	var export chronicleExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse chronicle JSON: %w", err)
	}
	c := export.Calendar
	result := &ImportResult{
		Format:      FormatChronicle,
		CurrentYear: c.CurrentYear,
		Calendar: ExportCalendar{
			Name:           c.Name,
			Description:    c.Description,
			LeapYearEvery:  c.LeapYearEvery,
			LeapYearOffset: c.LeapYearOffset,
			Months:         c.Months,
		},
	}
	for _, w := range c.Weekdays {
		result.Calendar.Weekdays = append(result.Calendar.Weekdays, ExportWeekday{
			Name:      w.Name,
			SortOrder: w.SortOrder,
		})
	}
	return result, nil
}

// --- Simple Calendar Parser ---

// scData is the v1 Simple Calendar export structure.
type scData struct {
	Calendar scCalendar `json:"calendar"`
}

// scCalendar holds the Simple Calendar configuration. Supports both v2 field
// names and the v1 legacy aliases (monthSettings, weekdaySettings, ...).
type scCalendar struct {
	Name        string        `json:"name"`
	CurrentDate scCurrentDate `json:"currentDate"`
	LeapYear    scLeapYear    `json:"leapYear"`
	Months      []scMonth     `json:"months"`
	Weekdays    []scWeekday   `json:"weekdays"`
	Year        scYear        `json:"year"`
}

// UnmarshalJSON fills empty v2 fields from their v1 aliases.
func (c *scCalendar) UnmarshalJSON(data []byte) error {
	type alias scCalendar
	var v2 alias
	if err := json.Unmarshal(data, &v2); err != nil {
		return err
	}
	*c = scCalendar(v2)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	legacy := func(key string, dst any) {
		if v, ok := raw[key]; ok {
			_ = json.Unmarshal(v, dst)
		}
	}
	if len(c.Months) == 0 {
		legacy("monthSettings", &c.Months)
	}
	if len(c.Weekdays) == 0 {
		legacy("weekdaySettings", &c.Weekdays)
	}
	if c.Year.NumericRepresentation == 0 {
		legacy("yearSettings", &c.Year)
	}
	if c.LeapYear.Rule == "" {
		legacy("leapYearSettings", &c.LeapYear)
	}
	return nil
}

type scCurrentDate struct {
	Year int `json:"year"`
}

type scLeapYear struct {
	Rule      string `json:"rule"`      // "none", "gregorian", "custom"
	CustomMod int    `json:"customMod"` // interval for the custom rule
}

type scMonth struct {
	Name                 string `json:"name"`
	NumberOfDays         int    `json:"numberOfDays"`
	NumberOfLeapYearDays int    `json:"numberOfLeapYearDays"` // total, not extra
	Intercalary          bool   `json:"intercalary"`
}

type scWeekday struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type scYear struct {
	NumericRepresentation int `json:"numericRepresentation"`
	FirstWeekday          int `json:"firstWeekday"`
}

func parseSimpleCalendar(data []byte) (*ImportResult, error) {
	var v2 struct {
		Calendars []scCalendar `json:"calendars"`
	}
	if err := json.Unmarshal(data, &v2); err == nil && len(v2.Calendars) > 0 {
		return simpleCalendarResult(v2.Calendars[0]), nil
	}

	var sc scData
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse simple calendar JSON: %w", err)
	}
	return simpleCalendarResult(sc.Calendar), nil
}

func simpleCalendarResult(cal scCalendar) *ImportResult {
	result := &ImportResult{
		Format:      FormatSimpleCal,
		CurrentYear: cal.Year.NumericRepresentation,
		Calendar: ExportCalendar{
			Name:         stripLocalizationKey(cal.Name),
			EpochWeekday: cal.Year.FirstWeekday,
		},
	}
	if cal.CurrentDate.Year != 0 {
		result.CurrentYear = cal.CurrentDate.Year
	}

	// "gregorian" is approximated as every fourth year.
	switch cal.LeapYear.Rule {
	case "gregorian":
		result.Calendar.LeapYearEvery = 4
	case "custom":
		if cal.LeapYear.CustomMod > 0 {
			result.Calendar.LeapYearEvery = cal.LeapYear.CustomMod
		}
	}

	for i, m := range cal.Months {
		result.Calendar.Months = append(result.Calendar.Months, ExportMonth{
			Name:          stripLocalizationKey(m.Name),
			Days:          m.NumberOfDays,
			SortOrder:     i,
			IsIntercalary: m.Intercalary,
			LeapYearDays:  max(m.NumberOfLeapYearDays-m.NumberOfDays, 0),
		})
	}
	for i, w := range cal.Weekdays {
		result.Calendar.Weekdays = append(result.Calendar.Weekdays, ExportWeekday{
			Name:      stripLocalizationKey(w.Name),
			Short:     stripLocalizationKey(w.Abbreviation),
			SortOrder: i,
		})
	}
	return result
}

// --- Calendaria Parser ---

type calData struct {
	Name           string                `json:"name"`
	Years          calYears              `json:"years"`
	LeapYearConfig calLeapYear           `json:"leapYearConfig"`
	Months         map[string]calMonth   `json:"-"`
	Days           calDays               `json:"days"`
	Weeks          map[string]calWeekday `json:"weeks"`
}

// UnmarshalJSON reads "months" either as a keyed object or wrapped in
// {"values": {...}}.
func (d *calData) UnmarshalJSON(data []byte) error {
	type alias calData
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = calData(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Months = unmarshalValuedMap[calMonth](raw, "months")
	return nil
}

// unmarshalValuedMap decodes raw[key] as map[string]T, directly or from a
// "values" wrapper.
func unmarshalValuedMap[T any](raw map[string]json.RawMessage, key string) map[string]T {
	fieldRaw, ok := raw[key]
	if !ok {
		return nil
	}
	var direct map[string]T
	if err := json.Unmarshal(fieldRaw, &direct); err == nil && len(direct) > 0 {
		if _, wrapped := direct["values"]; !wrapped {
			return direct
		}
	}
	var wrapper struct {
		Values map[string]T `json:"values"`
	}
	if err := json.Unmarshal(fieldRaw, &wrapper); err == nil {
		return wrapper.Values
	}
	return nil
}

type calYears struct {
	FirstWeekday int         `json:"firstWeekday"`
	YearZero     int         `json:"yearZero"`
	LeapYear     *calLeapGap `json:"leapYear,omitempty"`
}

type calLeapGap struct {
	LeapStart    int `json:"leapStart"`
	LeapInterval int `json:"leapInterval"`
}

type calLeapYear struct {
	Rule string `json:"rule"` // "none", "gregorian", "custom"
}

type calMonth struct {
	Name     string `json:"name"`
	Ordinal  int    `json:"ordinal"`
	Days     int    `json:"days"`
	LeapDays int    `json:"leapDays,omitempty"` // total days in a leap year
}

type calDays struct {
	Values      map[string]calWeekday `json:"values"`
	HoursPerDay int                   `json:"hoursPerDay"`
}

type calWeekday struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Ordinal      int    `json:"ordinal"`
}

func parseCalendaria(data []byte) (*ImportResult, error) {
	var cal calData
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("parse calendaria JSON: %w", err)
	}

	result := &ImportResult{
		Format:      FormatCalendaria,
		CurrentYear: cal.Years.YearZero,
		Calendar: ExportCalendar{
			Name:         stripLocalizationKey(cal.Name),
			EpochWeekday: cal.Years.FirstWeekday,
		},
	}

	switch cal.LeapYearConfig.Rule {
	case "gregorian":
		result.Calendar.LeapYearEvery = 4
	case "custom":
		if cal.Years.LeapYear != nil && cal.Years.LeapYear.LeapInterval > 0 {
			result.Calendar.LeapYearEvery = cal.Years.LeapYear.LeapInterval
			result.Calendar.LeapYearOffset = cal.Years.LeapYear.LeapStart
		}
	}

	monthKeys := sortedByOrdinal(cal.Months, func(m calMonth) int { return m.Ordinal })
	for i, k := range monthKeys {
		m := cal.Months[k]
		result.Calendar.Months = append(result.Calendar.Months, ExportMonth{
			Name:         stripLocalizationKey(m.Name),
			Days:         m.Days,
			SortOrder:    i,
			LeapYearDays: max(m.LeapDays-m.Days, 0),
		})
	}

	// Older exports keep weekdays under "weeks".
	weekdays := cal.Days.Values
	if len(weekdays) == 0 {
		weekdays = cal.Weeks
	}
	for i, k := range sortedByOrdinal(weekdays, func(w calWeekday) int { return w.Ordinal }) {
		w := weekdays[k]
		result.Calendar.Weekdays = append(result.Calendar.Weekdays, ExportWeekday{
			Name:      stripLocalizationKey(w.Name),
			Short:     stripLocalizationKey(w.Abbreviation),
			SortOrder: i,
		})
	}
	return result, nil
}

// sortedByOrdinal returns the keys of m ordered by ordinal, then by key.
func sortedByOrdinal[T any](m map[string]T, ordinal func(T) int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := ordinal(m[keys[i]]), ordinal(m[keys[j]])
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// --- Fantasy-Calendar Parser ---

type fcData struct {
	Name        string        `json:"name"`
	StaticData  fcStaticData  `json:"static_data"`
	DynamicData fcDynamicData `json:"dynamic_data"`
}

type fcStaticData struct {
	YearData fcYearData `json:"year_data"`
}

type fcYearData struct {
	FirstDay   int          `json:"first_day"` // 1-based
	GlobalWeek []string     `json:"global_week"`
	Timespans  []fcTimespan `json:"timespans"`
	LeapDays   []fcLeapDay  `json:"leap_days"`
}

type fcTimespan struct {
	Name   string `json:"name"`
	Type   string `json:"type"` // "month" or "intercalary"
	Length int    `json:"length"`
}

type fcLeapDay struct {
	Timespan int    `json:"timespan"` // month index
	Interval string `json:"interval"` // e.g. "4" or "400,!100,4"
	Offset   int    `json:"offset"`
}

type fcDynamicData struct {
	Year int `json:"year"`
}

func parseFantasyCalendar(data []byte) (*ImportResult, error) {
	var fc fcData
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse fantasy-calendar JSON: %w", err)
	}
	yd := fc.StaticData.YearData

	result := &ImportResult{
		Format:      FormatFantasyCal,
		CurrentYear: fc.DynamicData.Year,
		Calendar: ExportCalendar{
			Name:         fc.Name,
			EpochWeekday: yd.FirstDay - 1,
		},
	}

	for i, ts := range yd.Timespans {
		result.Calendar.Months = append(result.Calendar.Months, ExportMonth{
			Name:          ts.Name,
			Days:          ts.Length,
			SortOrder:     i,
			IsIntercalary: ts.Type == "intercalary",
		})
	}

	// Every leap day shares the rule of the first one that has a usable
	// interval.
	for _, ld := range yd.LeapDays {
		if ld.Timespan < 0 || ld.Timespan >= len(result.Calendar.Months) {
			continue
		}
		every := leapInterval(ld.Interval)
		if every == 0 {
			continue
		}
		if result.Calendar.LeapYearEvery == 0 {
			result.Calendar.LeapYearEvery = every
			result.Calendar.LeapYearOffset = ld.Offset
		}
		result.Calendar.Months[ld.Timespan].LeapYearDays++
	}

	for i, name := range yd.GlobalWeek {
		result.Calendar.Weekdays = append(result.Calendar.Weekdays, ExportWeekday{
			Name:      name,
			SortOrder: i,
		})
	}
	return result, nil
}

// leapInterval reduces a Fantasy-Calendar interval expression to the
// smallest plain interval it includes: "400,!100,4" becomes 4. Exclusions
// ("!100") cannot be expressed and are ignored. Zero means unusable.
func leapInterval(expr string) int {
	best := 0
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "+")
		if part == "" || part[0] == '!' {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		if best == 0 || n < best {
			best = n
		}
	}
	return best
}

// --- Helpers ---

// stripLocalizationKey turns Foundry localization keys such as
// "CALENDAR.Month.Hammer" into their last segment.
func stripLocalizationKey(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// abbreviate returns the first three characters of name.
func abbreviate(name string) string {
	if utf8.RuneCountInString(name) <= 3 {
		return name
	}
	return string([]rune(name)[:3])
}

// slugify derives a slug from a calendar name: lower case, runs of other
// characters collapsed to '-', at most 64 bytes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > 64 {
		slug = strings.TrimRight(slug[:64], "-")
	}
	if slug == "" {
		return "imported"
	}
	return slug
}
