package customcal

import (
	"context"
	"sort"
	"sync"

	"github.com/keyxmakerx/almanac/internal/apperror"
)

// memoryRepo keeps definitions in process memory. It backs the service when
// storage is disabled, so seeded and API-created calendars last until exit.
type memoryRepo struct {
	mu   sync.RWMutex
	defs map[string]Definition // by slug
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() DefinitionRepository {
	return &memoryRepo{defs: make(map[string]Definition)}
}

// Create stores a copy of def. Slugs are unique.
func (r *memoryRepo) Create(_ context.Context, def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Slug]; ok {
		return apperror.NewConflict("definition already exists")
	}
	r.defs[def.Slug] = *def
	return nil
}

// GetBySlug returns a copy of the definition, or (nil, nil) if not found.
func (r *memoryRepo) GetBySlug(_ context.Context, slug string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[slug]
	if !ok {
		return nil, nil
	}
	return &def, nil
}

// List returns every definition ordered by slug.
func (r *memoryRepo) List(_ context.Context) ([]Definition, error) {
	r.mu.RLock()
	defs := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	r.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Slug < defs[j].Slug })
	return defs, nil
}

// Update replaces the stored definition with the same ID.
func (r *memoryRepo) Update(_ context.Context, def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slug, d := range r.defs {
		if d.ID == def.ID {
			delete(r.defs, slug)
			r.defs[def.Slug] = *def
			return nil
		}
	}
	return nil
}

// Delete removes a definition by ID.
func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slug, d := range r.defs {
		if d.ID == id {
			delete(r.defs, slug)
		}
	}
	return nil
}
