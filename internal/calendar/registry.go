// Package calendar — registry.go maps calendar names to implementations.
// Built-in calendars are always present; custom definitions are added and
// removed at runtime.
package calendar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/timezone"
)

// RegistryConfig configures the built-in calendars of a Registry.
type RegistryConfig struct {
	// Resolver is handed to every built-in calendar. Nil means fixed
	// offsets only.
	Resolver timezone.Resolver

	// GregorianStartingWeekday is the first column of Gregorian week views.
	GregorianStartingWeekday int
}

// Registry maps calendar identifiers to Types. Built-in calendars are always
// present; custom calendars come and go at runtime. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	types    map[string]Type
	resolver timezone.Resolver
}

// IsBuiltin reports whether name identifies a built-in calendar.
func IsBuiltin(name string) bool {
	return name == GregorianName || name == HijriName
}

// NewRegistry creates a registry holding the built-in calendars.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Resolver == nil {
		cfg.Resolver = timezone.FixedResolver()
	}
	greg, err := NewGregorian(WithResolver(cfg.Resolver), WithStartingWeekday(cfg.GregorianStartingWeekday))
	if err != nil {
		return nil, fmt.Errorf("building gregorian calendar: %w", err)
	}
	hijri, err := NewHijri(WithResolver(cfg.Resolver))
	if err != nil {
		return nil, fmt.Errorf("building hijri calendar: %w", err)
	}
	return &Registry{
		types: map[string]Type{
			GregorianName: greg,
			HijriName:     hijri,
		},
		resolver: cfg.Resolver,
	}, nil
}

// Resolver returns the timezone resolver built-in calendars use. Custom
// calendars should be built with WithResolver(r.Resolver()).
func (r *Registry) Resolver() timezone.Resolver {
	return r.resolver
}

// Resolve returns the calendar registered under name.
func (r *Registry) Resolve(name string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	if !ok {
		return nil, apperror.NewUnsupportedCalendar(name)
	}
	return t, nil
}

// Register adds t. It fails if the name is taken.
func (r *Registry) Register(t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Name()]; ok {
		return apperror.NewConflict(fmt.Sprintf("calendar %q is already registered", t.Name()))
	}
	r.types[t.Name()] = t
	return nil
}

// Replace adds t or swaps out the calendar of the same name. Built-in
// calendars cannot be replaced.
func (r *Registry) Replace(t Type) error {
	if IsBuiltin(t.Name()) {
		return apperror.NewConflict(fmt.Sprintf("calendar %q is built in", t.Name()))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name()] = t
	return nil
}

// Unregister removes a custom calendar.
func (r *Registry) Unregister(name string) error {
	if IsBuiltin(name) {
		return apperror.NewConflict(fmt.Sprintf("calendar %q is built in", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; !ok {
		return apperror.NewUnsupportedCalendar(name)
	}
	delete(r.types, name)
	return nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
