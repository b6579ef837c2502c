// Package customcal — service.go holds the business logic for custom
// calendar definitions: validation, persistence, caching and registration
// with the calendar registry.
package customcal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/calendar"
)

// DefinitionService manages custom calendar definitions. Every successful
// mutation is mirrored into the calendar registry, so a created calendar can
// be resolved immediately and a deleted one stops resolving.
type DefinitionService interface {
	Create(ctx context.Context, input Input) (*Definition, error)
	Get(ctx context.Context, slug string) (*Definition, error)
	List(ctx context.Context) ([]Definition, error)
	Update(ctx context.Context, slug string, input Input) (*Definition, error)
	Delete(ctx context.Context, slug string) error

	// LoadAll registers every stored definition and unregisters custom
	// calendars that are no longer stored. Invalid definitions are logged
	// and skipped. Returns the number registered.
	LoadAll(ctx context.Context) (int, error)

	// Seed creates the given definitions unless a definition with the same
	// slug already exists.
	Seed(ctx context.Context, inputs []Input) error
}

type definitionService struct {
	repo     DefinitionRepository
	cache    DefinitionCache
	registry *calendar.Registry
	now      func() time.Time
}

// NewDefinitionService creates a service over repo. cache may be nil.
func NewDefinitionService(repo DefinitionRepository, cache DefinitionCache, registry *calendar.Registry) DefinitionService {
	return &definitionService{repo: repo, cache: cache, registry: registry, now: time.Now}
}

// timestamp is the current time at the precision of a DATETIME column.
func (s *definitionService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *definitionService) build(def *Definition) (*calendar.Custom, error) {
	return def.Build(calendar.WithResolver(s.registry.Resolver()))
}

// Create sanitizes and validates input, stores it and registers the calendar.
func (s *definitionService) Create(ctx context.Context, input Input) (*Definition, error) {
	input = input.Sanitized()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, fmt.Errorf("check existing definition: %w", err)
	}
	if existing != nil {
		return nil, apperror.NewConflict(fmt.Sprintf("calendar %q already exists", input.Slug))
	}

	def := input.toDefinition()
	def.ID = uuid.NewString()
	def.CreatedAt = s.timestamp()
	def.UpdatedAt = def.CreatedAt
	cal, err := s.build(def)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("create definition: %w", err)
	}
	if err := s.registry.Replace(cal); err != nil {
		return nil, err
	}

	slog.Info("calendar definition created", slog.String("slug", def.Slug), slog.String("id", def.ID))
	return def, nil
}

// Get returns a definition, trying the cache first.
func (s *definitionService) Get(ctx context.Context, slug string) (*Definition, error) {
	if s.cache != nil {
		def, err := s.cache.Get(ctx, slug)
		if err != nil {
			slog.Warn("definition cache read failed", slog.String("slug", slug), slog.Any("error", err))
		} else if def != nil {
			return def, nil
		}
	}

	def, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get definition: %w", err)
	}
	if def == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("calendar definition %q not found", slug))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, def); err != nil {
			slog.Warn("definition cache write failed", slog.String("slug", slug), slog.Any("error", err))
		}
	}
	return def, nil
}

// List returns every stored definition.
func (s *definitionService) List(ctx context.Context) ([]Definition, error) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return defs, nil
}

// Update replaces a definition. The slug cannot change.
func (s *definitionService) Update(ctx context.Context, slug string, input Input) (*Definition, error) {
	input = input.Sanitized()
	if input.Slug == "" {
		input.Slug = slug
	}
	if input.Slug != slug {
		return nil, apperror.NewValidation("slug cannot be changed")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get definition: %w", err)
	}
	if existing == nil {
		return nil, apperror.NewNotFound(fmt.Sprintf("calendar definition %q not found", slug))
	}

	def := input.toDefinition()
	def.ID = existing.ID
	def.CreatedAt = existing.CreatedAt
	def.UpdatedAt = s.timestamp()
	cal, err := s.build(def)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("update definition: %w", err)
	}
	s.invalidate(ctx, slug)
	if err := s.registry.Replace(cal); err != nil {
		return nil, err
	}

	slog.Info("calendar definition updated", slog.String("slug", slug))
	return def, nil
}

// Delete removes a definition and unregisters its calendar.
func (s *definitionService) Delete(ctx context.Context, slug string) error {
	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("get definition: %w", err)
	}
	if existing == nil {
		return apperror.NewNotFound(fmt.Sprintf("calendar definition %q not found", slug))
	}
	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}
	s.invalidate(ctx, slug)

	if err := s.registry.Unregister(slug); err != nil && !apperror.Is(err, apperror.TypeUnsupportedCalendar) {
		return err
	}
	slog.Info("calendar definition deleted", slog.String("slug", slug))
	return nil
}

// LoadAll brings the registry in line with the store. It runs at startup and
// on the resync schedule, which picks up edits made through other instances.
func (s *definitionService) LoadAll(ctx context.Context) (int, error) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list definitions: %w", err)
	}

	stored := make(map[string]bool, len(defs))
	for _, d := range defs {
		stored[d.Slug] = true
	}
	for _, name := range s.registry.List() {
		if calendar.IsBuiltin(name) || stored[name] {
			continue
		}
		if err := s.registry.Unregister(name); err == nil {
			slog.Info("calendar definition removed elsewhere", slog.String("slug", name))
		}
	}

	n := 0
	for i := range defs {
		cal, err := s.build(&defs[i])
		if err != nil {
			slog.Warn("skipping invalid calendar definition",
				slog.String("slug", defs[i].Slug),
				slog.Any("error", err),
			)
			continue
		}
		if err := s.registry.Replace(cal); err != nil {
			slog.Warn("skipping calendar definition",
				slog.String("slug", defs[i].Slug),
				slog.Any("error", err),
			)
			continue
		}
		n++
	}
	return n, nil
}

// Seed stores inputs that are not stored yet. Existing definitions win so an
// operator's API edits survive restarts.
func (s *definitionService) Seed(ctx context.Context, inputs []Input) error {
	for _, in := range inputs {
		existing, err := s.repo.GetBySlug(ctx, in.Slug)
		if err != nil {
			return fmt.Errorf("check seed %q: %w", in.Slug, err)
		}
		if existing != nil {
			slog.Debug("seed already stored", slog.String("slug", in.Slug))
			continue
		}
		if _, err := s.Create(ctx, in); err != nil {
			return fmt.Errorf("seed %q: %w", in.Slug, err)
		}
	}
	return nil
}

func (s *definitionService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, slug); err != nil {
		slog.Warn("definition cache invalidation failed", slog.String("slug", slug), slog.Any("error", err))
	}
}
