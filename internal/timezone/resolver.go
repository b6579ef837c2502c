package timezone

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// Resolver supplies the UTC offset that applies to a Spec.
//
// OffsetAt answers for an absolute instant (seconds since the Unix epoch).
// OffsetForLocal answers for a wall-clock time, given as seconds since the
// epoch computed with UTC arithmetic; it is what input conversion needs, where
// the offset depends on the local date the user picked.
type Resolver interface {
	OffsetAt(spec Spec, instant int64) (Offset, error)
	OffsetForLocal(spec Spec, local int64) (Offset, error)
}

// LocationResolver resolves specs with the Go runtime's zone database.
// The user sentinel maps to UserZone. Loaded locations are cached; the
// resolver is safe for concurrent use.
type LocationResolver struct {
	userZone Spec
	cache    sync.Map // zone name -> *time.Location
}

// NewLocationResolver creates a resolver whose user sentinel resolves to
// userZone. userZone must not itself be the sentinel.
func NewLocationResolver(userZone Spec) (*LocationResolver, error) {
	if userZone.IsUser() {
		return nil, apperror.NewTimezone("user timezone must be a fixed offset or a zone name", nil)
	}
	r := &LocationResolver{userZone: userZone}
	if userZone.kind == KindNamed {
		if _, err := r.location(userZone.name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// UserZone returns the zone the sentinel resolves to.
func (r *LocationResolver) UserZone() Spec {
	return r.userZone
}

// OffsetAt implements Resolver.
func (r *LocationResolver) OffsetAt(spec Spec, instant int64) (Offset, error) {
	spec = r.effective(spec)
	switch spec.kind {
	case KindFixed:
		return fixedOffset(spec.hours), nil
	case KindNamed:
		loc, err := r.location(spec.name)
		if err != nil {
			return Offset{}, err
		}
		t := time.Unix(instant, 0).In(loc)
		_, secs := t.Zone()
		return Offset{Seconds: secs, DST: t.IsDST()}, nil
	}
	return Offset{}, apperror.NewTimezone("user timezone is not configured", nil)
}

// OffsetForLocal implements Resolver. Wall times that fall in a DST gap or
// overlap resolve the way time.Date does: a single, deterministic offset.
func (r *LocationResolver) OffsetForLocal(spec Spec, local int64) (Offset, error) {
	spec = r.effective(spec)
	switch spec.kind {
	case KindFixed:
		return fixedOffset(spec.hours), nil
	case KindNamed:
		loc, err := r.location(spec.name)
		if err != nil {
			return Offset{}, err
		}
		w := time.Unix(local, 0).UTC()
		t := time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), 0, loc)
		_, secs := t.Zone()
		return Offset{Seconds: secs, DST: t.IsDST()}, nil
	}
	return Offset{}, apperror.NewTimezone("user timezone is not configured", nil)
}

func (r *LocationResolver) effective(spec Spec) Spec {
	if spec.IsUser() {
		return r.userZone
	}
	return spec
}

func (r *LocationResolver) location(name string) (*time.Location, error) {
	if name == "" {
		return nil, apperror.NewTimezone("timezone name is empty", nil)
	}
	if v, ok := r.cache.Load(name); ok {
		return v.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperror.NewTimezone(fmt.Sprintf("unknown timezone %q", name), err)
	}
	r.cache.Store(name, loc)
	return loc, nil
}

func fixedOffset(hours float64) Offset {
	return Offset{Seconds: int(math.Round(hours * 3600))}
}

// Fixed offsets need no zone database; this resolver is handy for tests and
// for callers that never use named zones.
type fixedOnly struct{}

// FixedResolver returns a Resolver that handles fixed offsets only and treats
// the user sentinel as UTC. Named zones fail with a timezone error.
func FixedResolver() Resolver { return fixedOnly{} }

func (fixedOnly) OffsetAt(spec Spec, _ int64) (Offset, error) {
	switch spec.kind {
	case KindFixed:
		return fixedOffset(spec.hours), nil
	case KindUser:
		return Offset{}, nil
	}
	return Offset{}, apperror.NewTimezone(fmt.Sprintf("named timezone %q is not supported", spec.name), nil)
}

func (f fixedOnly) OffsetForLocal(spec Spec, local int64) (Offset, error) {
	return f.OffsetAt(spec, local)
}
