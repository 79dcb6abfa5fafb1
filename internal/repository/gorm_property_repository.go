package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helixir/property-service/internal/domain"
)

// propertyRecord is the gorm model backing the properties table.
type propertyRecord struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Address   string  `gorm:"type:text;not null"`
	Price     float64 `gorm:"not null"`
	Bedrooms  float64 `gorm:"not null"`
	Bathrooms float64 `gorm:"not null"`
	Type      *string `gorm:"type:varchar(255);index"`
}

// TableName pins the table name shared with the PostgreSQL schema.
func (propertyRecord) TableName() string {
	return "properties"
}

func recordFromDomain(p *domain.Property) *propertyRecord {
	c := p.Clone()
	return &propertyRecord{
		ID:        c.ID,
		Address:   c.Address,
		Price:     c.Price,
		Bedrooms:  c.Bedrooms,
		Bathrooms: c.Bathrooms,
		Type:      c.Type,
	}
}

func (r *propertyRecord) toDomain() *domain.Property {
	return &domain.Property{
		ID:        r.ID,
		Address:   r.Address,
		Price:     r.Price,
		Bedrooms:  r.Bedrooms,
		Bathrooms: r.Bathrooms,
		Type:      r.Type,
	}
}

// Compile-time interface verification.
var _ PropertyRepository = (*GormPropertyRepository)(nil)

// GormPropertyRepository is a gorm implementation of PropertyRepository, used
// with the MySQL store.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new gorm property repository.
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// AutoMigrate creates or updates the properties table.
func (r *GormPropertyRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&propertyRecord{}); err != nil {
		return fmt.Errorf("failed to migrate properties table: %w", err)
	}
	return nil
}

// List retrieves properties matching the filter ordered by id.
func (r *GormPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var records []propertyRecord
	err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	properties := make([]*domain.Property, len(records))
	for i := range records {
		properties[i] = records[i].toDomain()
	}
	return properties, nil
}

// filterScope applies the type predicate, ordering and page window.
func filterScope(filter PropertyFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Type != nil {
			db = db.Where("type = ?", *filter.Type)
		}
		return db.Order("id ASC").Limit(filter.Limit).Offset(filter.Offset)
	}
}

// Get retrieves a property by its ID.
func (r *GormPropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	var rec propertyRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return rec.toDomain(), nil
}

// Create inserts a new property and returns it with the generated id.
func (r *GormPropertyRepository) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if p == nil {
		return nil, domain.NewValidationError("property", "property cannot be nil")
	}

	rec := recordFromDomain(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return rec.toDomain(), nil
}

// Update locks the row, applies fn and saves the merged record in one transaction.
func (r *GormPropertyRepository) Update(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error) {
	var updated *domain.Property

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec propertyRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
			}
			return fmt.Errorf("failed to query property for update: %w", err)
		}

		p := rec.toDomain()
		if err := fn(p); err != nil {
			return err
		}
		p.ID = id

		if err := tx.Save(recordFromDomain(p)).Error; err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a property and reports how many rows were affected.
func (r *GormPropertyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&propertyRecord{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete property: %w", res.Error)
	}
	return res.RowsAffected, nil
}
