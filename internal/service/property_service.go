// Package service contains the property business operations.
//
// It sits between the HTTP handlers and the repository. Handlers hand it
// already validated identifiers and payloads; it shapes them into repository
// calls and records the outcome.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/helixir/property-service/internal/domain"
	"github.com/helixir/property-service/internal/observability"
	"github.com/helixir/property-service/internal/repository"
)

// PropertyService implements the property use cases over a repository.
type PropertyService struct {
	repo    repository.PropertyRepository
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewPropertyService creates a property service. metrics may be nil.
func NewPropertyService(repo repository.PropertyRepository, metrics *observability.Metrics, logger zerolog.Logger) *PropertyService {
	return &PropertyService{
		repo:    repo,
		metrics: metrics,
		logger:  logger.With().Str("component", "property-service").Logger(),
	}
}

// List returns one page of properties.
func (s *PropertyService) List(ctx context.Context, filter repository.PropertyFilter) ([]*domain.Property, error) {
	return s.repo.List(ctx, filter)
}

// Get returns the property with the given id.
func (s *PropertyService) Get(ctx context.Context, id int64) (*domain.Property, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new property built from a validated create payload.
func (s *PropertyService) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	created, err := s.repo.Create(ctx, in.NewProperty())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPropertyCreated()
	logger := observability.WithPropertyContext(observability.LoggerFromContext(ctx, s.logger), "create", created.ID)
	logger.Info().Msg("property created")
	return created, nil
}

// Update merges the supplied fields onto the stored property.
// Fields absent from in keep their stored values.
func (s *PropertyService) Update(ctx context.Context, id int64, in domain.PropertyInput) (*domain.Property, error) {
	updated, err := s.repo.Update(ctx, id, func(p *domain.Property) error {
		in.ApplyTo(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPropertyUpdated()
	logger := observability.WithPropertyContext(observability.LoggerFromContext(ctx, s.logger), "update", id)
	logger.Debug().Msg("property updated")
	return updated, nil
}

// Delete removes the property. Deleting an unknown id is a NotFoundError.
func (s *PropertyService) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
	}

	s.metrics.RecordPropertyDeleted()
	logger := observability.WithPropertyContext(observability.LoggerFromContext(ctx, s.logger), "delete", id)
	logger.Info().Msg("property deleted")
	return nil
}

// Seed creates each property in order and returns how many were stored.
func (s *PropertyService) Seed(ctx context.Context, properties []*domain.Property) (int, error) {
	for i, p := range properties {
		if _, err := s.repo.Create(ctx, p); err != nil {
			return i, err
		}
	}
	s.logger.Info().Int("count", len(properties)).Msg("properties seeded")
	return len(properties), nil
}
