// Package timezone describes which zone a calendar conversion happens in and
// resolves it to a UTC offset. A zone is a fixed offset in hours, a named
// IANA zone, or the sentinel "current user's zone" (99 in textual form).
//
// The calendar core treats resolution as an opaque call through Resolver; it
// never consults the zone database itself.
package timezone

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// UserSentinel is the numeric value that selects the current user's zone.
const UserSentinel = 99

// maxOffsetHours bounds fixed offsets (UTC-14..UTC+14 covers every civil zone).
const maxOffsetHours = 14

// Kind identifies how a Spec is resolved.
type Kind int

const (
	// KindUser resolves through the resolver's configured user zone.
	KindUser Kind = iota
	// KindFixed is a constant offset in hours.
	KindFixed
	// KindNamed is an IANA zone name whose offset and DST vary with the instant.
	KindNamed
)

// Spec selects the zone used by a conversion. The zero value is User().
type Spec struct {
	kind  Kind
	hours float64
	name  string
}

// User returns the sentinel spec meaning "use the current user's zone".
func User() Spec {
	return Spec{kind: KindUser}
}

// UTC returns a zero fixed offset.
func UTC() Spec {
	return Spec{kind: KindFixed}
}

// Fixed returns a fixed offset of the given hours. Fractional half and
// quarter hours are allowed (5.5, 5.75, -3.5).
func Fixed(hours float64) (Spec, error) {
	if math.IsNaN(hours) || math.Abs(hours) > maxOffsetHours {
		return Spec{}, apperror.NewTimezone(fmt.Sprintf("offset %v hours is out of range", hours), nil)
	}
	if q := hours * 4; q != math.Trunc(q) {
		return Spec{}, apperror.NewTimezone(fmt.Sprintf("offset %v hours is not a multiple of a quarter hour", hours), nil)
	}
	return Spec{kind: KindFixed, hours: hours}, nil
}

// MustFixed is Fixed for constant offsets known to be valid. It panics on error.
func MustFixed(hours float64) Spec {
	s, err := Fixed(hours)
	if err != nil {
		panic(err)
	}
	return s
}

// Named returns a spec for an IANA zone such as "Asia/Tehran". The name is
// not checked here; resolution fails later if the zone is unknown.
func Named(name string) Spec {
	return Spec{kind: KindNamed, name: strings.TrimSpace(name)}
}

// Parse reads the textual form used by configuration and query strings:
// "99" is the user sentinel, any other number is a fixed offset in hours and
// anything else is a zone name. An empty string is the user sentinel.
func Parse(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return User(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f == UserSentinel {
			return User(), nil
		}
		return Fixed(f)
	}
	return Named(s), nil
}

// Kind reports how the spec is resolved.
func (s Spec) Kind() Kind { return s.kind }

// Hours returns the fixed offset. Only meaningful for KindFixed.
func (s Spec) Hours() float64 { return s.hours }

// Name returns the zone name. Only meaningful for KindNamed.
func (s Spec) Name() string { return s.name }

// IsUser reports whether the spec is the user sentinel.
func (s Spec) IsUser() bool { return s.kind == KindUser }

// String returns the textual form accepted by Parse.
func (s Spec) String() string {
	switch s.kind {
	case KindFixed:
		return strconv.FormatFloat(s.hours, 'f', -1, 64)
	case KindNamed:
		return s.name
	default:
		return strconv.Itoa(UserSentinel)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Spec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Spec) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Offset is the resolved distance from UTC at a particular instant.
type Offset struct {
	// Seconds east of UTC.
	Seconds int
	// DST is true when daylight saving time is in effect. Always false for
	// fixed offsets.
	DST bool
}
