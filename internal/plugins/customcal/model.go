// Package customcal stores operator-defined calendar systems and keeps the
// calendar registry in sync with them. Definitions live in MariaDB (or in
// memory when storage is disabled), are cached in Redis, and may be seeded
// from a YAML file at startup.
package customcal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
	"github.com/keyxmakerx/almanac/internal/sanitize"
)

// epochLayout is the format of Definition.EpochDate.
const epochLayout = "2006-01-02"

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// Column limits of the definition tables, in characters (bytes for the
// description TEXT column).
const (
	maxNameLen         = 200
	maxMonthNameLen    = 100
	maxWeekdayShortLen = 20
	maxWeekdayFullLen  = 100
	maxDescriptionLen  = 65535
)

// Definition is a stored custom calendar. Its Slug is the identifier the
// calendar is registered under.
type Definition struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	// EpochDate is the Gregorian date (YYYY-MM-DD) on which day 1 of month 1
	// of EpochYear falls; EpochWeekday is that day's weekday index.
	EpochYear    int    `json:"epoch_year"`
	EpochDate    string `json:"epoch_date"`
	EpochWeekday int    `json:"epoch_weekday"`

	StartingWeekday int `json:"starting_weekday"`
	MinYear         int `json:"min_year"`
	MaxYear         int `json:"max_year"`

	// LeapYearEvery=0 means no leap years.
	LeapYearEvery  int `json:"leap_year_every"`
	LeapYearOffset int `json:"leap_year_offset"`

	Months   []calendar.CustomMonth `json:"months"`
	Weekdays []calendar.WeekdayName `json:"weekdays"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the validated payload for creating or replacing a definition.
// The same shape is read from the YAML seed file.
type Input struct {
	Slug            string                 `json:"slug" yaml:"slug"`
	Name            string                 `json:"name" yaml:"name"`
	Description     *string                `json:"description,omitempty" yaml:"description,omitempty"`
	EpochYear       int                    `json:"epoch_year" yaml:"epoch_year"`
	EpochDate       string                 `json:"epoch_date" yaml:"epoch_date"`
	EpochWeekday    int                    `json:"epoch_weekday" yaml:"epoch_weekday"`
	StartingWeekday int                    `json:"starting_weekday" yaml:"starting_weekday"`
	MinYear         int                    `json:"min_year" yaml:"min_year"`
	MaxYear         int                    `json:"max_year" yaml:"max_year"`
	LeapYearEvery   int                    `json:"leap_year_every" yaml:"leap_year_every"`
	LeapYearOffset  int                    `json:"leap_year_offset" yaml:"leap_year_offset"`
	Months          []calendar.CustomMonth `json:"months" yaml:"months"`
	Weekdays        []calendar.WeekdayName `json:"weekdays" yaml:"weekdays"`
}

// Sanitized returns a copy with markup stripped from every name and unsafe
// HTML removed from the description.
func (in Input) Sanitized() Input {
	out := in
	out.Slug = strings.TrimSpace(in.Slug)
	out.Name = sanitize.Text(in.Name)
	if in.Description != nil {
		d := sanitize.HTML(*in.Description)
		out.Description = &d
	}
	out.Months = make([]calendar.CustomMonth, len(in.Months))
	for i, m := range in.Months {
		m.Name = sanitize.Text(m.Name)
		out.Months[i] = m
	}
	out.Weekdays = make([]calendar.WeekdayName, len(in.Weekdays))
	for i, w := range in.Weekdays {
		out.Weekdays[i] = calendar.WeekdayName{Short: sanitize.Text(w.Short), Full: sanitize.Text(w.Full)}
	}
	return out
}

// Validate checks the slug and the stored column limits, then builds the
// calendar once, which checks everything else. Whatever passes fits the
// MariaDB schema, so both repositories accept the same input.
func (in Input) Validate() error {
	if !slugPattern.MatchString(in.Slug) {
		return apperror.NewValidation("slug must be 1-64 characters of a-z, 0-9, '-' or '_'")
	}
	if calendar.IsBuiltin(in.Slug) {
		return apperror.NewValidation(fmt.Sprintf("slug %q is reserved for a built-in calendar", in.Slug))
	}
	if in.Name == "" {
		return apperror.NewValidation("name is required")
	}
	if err := checkLen("name", in.Name, maxNameLen); err != nil {
		return err
	}
	if in.Description != nil && len(*in.Description) > maxDescriptionLen {
		return apperror.NewValidation(fmt.Sprintf("description must be at most %d bytes", maxDescriptionLen))
	}
	if len(in.Months) > calendar.MaxCustomMonths {
		return apperror.NewValidation(fmt.Sprintf("at most %d months are allowed", calendar.MaxCustomMonths))
	}
	for i, m := range in.Months {
		if err := checkLen(fmt.Sprintf("month %d name", i+1), m.Name, maxMonthNameLen); err != nil {
			return err
		}
	}
	if len(in.Weekdays) > calendar.MaxCustomWeekdays {
		return apperror.NewValidation(fmt.Sprintf("at most %d weekdays are allowed", calendar.MaxCustomWeekdays))
	}
	for i, w := range in.Weekdays {
		if err := checkLen(fmt.Sprintf("weekday %d short name", i+1), w.Short, maxWeekdayShortLen); err != nil {
			return err
		}
		if err := checkLen(fmt.Sprintf("weekday %d full name", i+1), w.Full, maxWeekdayFullLen); err != nil {
			return err
		}
	}
	_, err := in.toDefinition().Build()
	return err
}

func checkLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return apperror.NewValidation(fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

func (in Input) toDefinition() *Definition {
	return &Definition{
		Slug:            in.Slug,
		Name:            in.Name,
		Description:     in.Description,
		EpochYear:       in.EpochYear,
		EpochDate:       in.EpochDate,
		EpochWeekday:    in.EpochWeekday,
		StartingWeekday: in.StartingWeekday,
		MinYear:         in.MinYear,
		MaxYear:         in.MaxYear,
		LeapYearEvery:   in.LeapYearEvery,
		LeapYearOffset:  in.LeapYearOffset,
		Months:          in.Months,
		Weekdays:        in.Weekdays,
	}
}

// Build turns the definition into a calendar registered under its slug.
func (d *Definition) Build(opts ...calendar.Option) (*calendar.Custom, error) {
	epoch, err := time.Parse(epochLayout, d.EpochDate)
	if err != nil {
		return nil, apperror.NewValidation("epoch date must be YYYY-MM-DD")
	}
	return calendar.NewCustom(calendar.CustomConfig{
		Name:            d.Slug,
		Months:          d.Months,
		Weekdays:        d.Weekdays,
		LeapYearEvery:   d.LeapYearEvery,
		LeapYearOffset:  d.LeapYearOffset,
		EpochYear:       d.EpochYear,
		Epoch:           calendar.GregorianDate{Year: epoch.Year(), Month: int(epoch.Month()), Day: epoch.Day()},
		EpochWeekday:    d.EpochWeekday,
		StartingWeekday: d.StartingWeekday,
		MinYear:         d.MinYear,
		MaxYear:         d.MaxYear,
	}, opts...)
}
