// Package customcal — export.go provides the JSON export of a definition.
// The envelope is the native import format (see import.go).
package customcal

import (
	"sort"

	"github.com/keyxmakerx/almanac/internal/calendar"
)

// ExportFormat tags the native export envelope. Importing an export
// recreates the definition exactly, including its anchor to the timeline.
const ExportFormat = "almanac-calendar-v1"

const exportVersion = 1

// Export is the top-level JSON envelope of a downloaded definition.
type Export struct {
	Format   string         `json:"format"`  // "almanac-calendar-v1"
	Version  int            `json:"version"` // schema version (1)
	Calendar ExportCalendar `json:"calendar"`
}

// ExportCalendar is a definition without its storage identity (ID and
// timestamps).
type ExportCalendar struct {
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	EpochYear       int             `json:"epoch_year"`
	EpochDate       string          `json:"epoch_date"`
	EpochWeekday    int             `json:"epoch_weekday"`
	StartingWeekday int             `json:"starting_weekday"`
	MinYear         int             `json:"min_year"`
	MaxYear         int             `json:"max_year"`
	LeapYearEvery   int             `json:"leap_year_every"`
	LeapYearOffset  int             `json:"leap_year_offset"`
	Months          []ExportMonth   `json:"months"`
	Weekdays        []ExportWeekday `json:"weekdays"`
}

// ExportMonth is one month. SortOrder is 0-based.
type ExportMonth struct {
	Name          string `json:"name"`
	Days          int    `json:"days"`
	SortOrder     int    `json:"sort_order"`
	IsIntercalary bool   `json:"is_intercalary"`
	LeapYearDays  int    `json:"leap_year_days"`
}

// ExportWeekday is one weekday. Name is the full name.
type ExportWeekday struct {
	Name      string `json:"name"`
	Short     string `json:"short"`
	SortOrder int    `json:"sort_order"`
}

// BuildExport wraps a stored definition in the export envelope.
func BuildExport(def *Definition) *Export {
	export := &Export{
		Format:  ExportFormat,
		Version: exportVersion,
		Calendar: ExportCalendar{
			Slug:            def.Slug,
			Name:            def.Name,
			Description:     def.Description,
			EpochYear:       def.EpochYear,
			EpochDate:       def.EpochDate,
			EpochWeekday:    def.EpochWeekday,
			StartingWeekday: def.StartingWeekday,
			MinYear:         def.MinYear,
			MaxYear:         def.MaxYear,
			LeapYearEvery:   def.LeapYearEvery,
			LeapYearOffset:  def.LeapYearOffset,
		},
	}
	for i, m := range def.Months {
		export.Calendar.Months = append(export.Calendar.Months, ExportMonth{
			Name:          m.Name,
			Days:          m.Days,
			SortOrder:     i,
			IsIntercalary: m.IsIntercalary,
			LeapYearDays:  m.LeapYearDays,
		})
	}
	for i, w := range def.Weekdays {
		export.Calendar.Weekdays = append(export.Calendar.Weekdays, ExportWeekday{
			Name:      w.Full,
			Short:     w.Short,
			SortOrder: i,
		})
	}
	return export
}

// input converts the exported calendar back into a create payload, ordering
// months and weekdays by SortOrder.
func (ec ExportCalendar) input() Input {
	months := append([]ExportMonth(nil), ec.Months...)
	sort.SliceStable(months, func(i, j int) bool { return months[i].SortOrder < months[j].SortOrder })
	weekdays := append([]ExportWeekday(nil), ec.Weekdays...)
	sort.SliceStable(weekdays, func(i, j int) bool { return weekdays[i].SortOrder < weekdays[j].SortOrder })

	in := Input{
		Slug:            ec.Slug,
		Name:            ec.Name,
		Description:     ec.Description,
		EpochYear:       ec.EpochYear,
		EpochDate:       ec.EpochDate,
		EpochWeekday:    ec.EpochWeekday,
		StartingWeekday: ec.StartingWeekday,
		MinYear:         ec.MinYear,
		MaxYear:         ec.MaxYear,
		LeapYearEvery:   ec.LeapYearEvery,
		LeapYearOffset:  ec.LeapYearOffset,
	}
	for _, m := range months {
		in.Months = append(in.Months, calendar.CustomMonth{
			Name:          m.Name,
			Days:          m.Days,
			LeapYearDays:  m.LeapYearDays,
			IsIntercalary: m.IsIntercalary,
		})
	}
	for _, w := range weekdays {
		short := w.Short
		if short == "" {
			short = abbreviate(w.Name)
		}
		in.Weekdays = append(in.Weekdays, calendar.WeekdayName{Short: short, Full: w.Name})
	}
	return in
}
