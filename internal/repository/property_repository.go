package repository

import (
	"context"
	"math"

	"github.com/helixir/property-service/internal/domain"
)

// PropertyRepository handles property persistence.
type PropertyRepository interface {
	// List returns properties matching the filter ordered by ascending id.
	// An offset past the end yields an empty slice, not an error.
	List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, error)

	// Get retrieves a property by id.
	// Returns domain.ErrNotFound if no property has that id.
	Get(ctx context.Context, id int64) (*domain.Property, error)

	// Create inserts a new property and returns it with the store-assigned id.
	// Any id already set on p is ignored.
	Create(ctx context.Context, p *domain.Property) (*domain.Property, error)

	// Update loads the property, applies fn and persists the result.
	// The read-modify-write runs under the store's row lock where one exists.
	// If fn returns an error nothing is written and that error is returned.
	// Returns domain.ErrNotFound if no property has that id.
	Update(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error)

	// Delete removes the property and returns the number of rows affected (0 or 1).
	Delete(ctx context.Context, id int64) (int64, error)
}

// PropertyFilter specifies criteria for listing properties.
type PropertyFilter struct {
	// Type restricts results to an exact type match when non-nil.
	Type *string

	// Limit specifies maximum number of results (default: 100, max: 100).
	Limit int

	// Offset specifies the number of results to skip.
	Offset int
}

// NewPageFilter builds a filter for a 1-based page of the given size.
// Pages below 1 are treated as the first page.
func NewPageFilter(page, limit int, propertyType *string) PropertyFilter {
	if page < 1 {
		page = 1
	}
	f := PropertyFilter{Type: propertyType, Limit: limit}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	if page-1 > math.MaxInt/f.Limit {
		f.Offset = math.MaxInt
		return f
	}
	f.Offset = (page - 1) * f.Limit
	return f
}

// Validate normalizes pagination values. It never rejects a filter.
func (f *PropertyFilter) Validate() error {
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}

// matches reports whether p satisfies the filter's predicates.
func (f PropertyFilter) matches(p *domain.Property) bool {
	if f.Type != nil {
		return p.Type != nil && *p.Type == *f.Type
	}
	return true
}
