package calendar

import "github.com/keyxmakerx/almanac/internal/timezone"

// ToInstant converts a wall time read in zone tz to an instant. The offset is
// resolved for the local time, so wall times inside a DST change use the
// offset in force at that wall-clock reading.
func ToInstant(t Type, year, month, day, hour, minute int, tz timezone.Spec) (Instant, error) {
	wall, err := t.ToCanonical(year, month, day, hour, minute)
	if err != nil {
		return 0, err
	}
	off, err := t.Resolver().OffsetForLocal(tz, int64(wall))
	if err != nil {
		return 0, err
	}
	return wall - Instant(off.Seconds), nil
}

// Validate reports whether (year, month, day, hour, minute) is a valid wall
// time in t. It returns nil or an invalid_date error.
func Validate(t Type, year, month, day, hour, minute int) error {
	if _, err := t.DaysInMonth(year, month); err != nil {
		return err
	}
	if _, err := t.Weekday(year, month, day); err != nil {
		return err
	}
	return checkClock(hour, minute)
}
