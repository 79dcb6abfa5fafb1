package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/helixir/property-service/internal/domain"
)

// Compile-time interface verification.
var _ PropertyRepository = (*MemoryPropertyRepository)(nil)

// MemoryPropertyRepository keeps properties in process memory.
// Ids are assigned sequentially starting at 1 and are never reused.
type MemoryPropertyRepository struct {
	mu         sync.RWMutex
	properties map[int64]*domain.Property
	nextID     int64
}

// NewMemoryPropertyRepository creates an empty in-memory repository.
func NewMemoryPropertyRepository() *MemoryPropertyRepository {
	return &MemoryPropertyRepository{
		properties: make(map[int64]*domain.Property),
		nextID:     1,
	}
}

// Seed inserts the given properties in order, assigning fresh ids.
func (r *MemoryPropertyRepository) Seed(ctx context.Context, properties []*domain.Property) error {
	for _, p := range properties {
		if _, err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored properties.
func (r *MemoryPropertyRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.properties)
}

func (r *MemoryPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.properties))
	for id, p := range r.properties {
		if filter.matches(p) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]*domain.Property, 0)
	if filter.Offset >= len(ids) {
		return results, nil
	}
	end := len(ids)
	if len(ids)-filter.Offset > filter.Limit {
		end = filter.Offset + filter.Limit
	}
	for _, id := range ids[filter.Offset:end] {
		results = append(results, r.properties[id].Clone())
	}
	return results, nil
}

func (r *MemoryPropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.properties[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
	}
	return p.Clone(), nil
}

func (r *MemoryPropertyRepository) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if p == nil {
		return nil, domain.NewValidationError("property", "property cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := p.Clone()
	stored.ID = r.nextID
	r.nextID++
	r.properties[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryPropertyRepository) Update(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.properties[id]
	if !ok {
		return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	r.properties[id] = working
	return working.Clone(), nil
}

func (r *MemoryPropertyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.properties[id]; !ok {
		return 0, nil
	}
	delete(r.properties, id)
	return 1, nil
}
