package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/property-service/internal/database"
	"github.com/helixir/property-service/internal/domain"
)

const propertyColumns = "id, address, price, bedrooms, bathrooms, type"

// Compile-time interface verification.
var (
	_ PropertyRepository = (*PgPropertyRepository)(nil)
	_ Transactor         = (*database.DB)(nil)
)

// PgPropertyRepository is a PostgreSQL implementation of PropertyRepository.
type PgPropertyRepository struct {
	db DBTX
}

// NewPgPropertyRepository creates a new PostgreSQL property repository.
func NewPgPropertyRepository(db DBTX) *PgPropertyRepository {
	return &PgPropertyRepository{db: db}
}

// List retrieves properties matching the filter ordered by id.
func (r *PgPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		%s
		ORDER BY id ASC
		LIMIT $%d OFFSET $%d`,
		propertyColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := make([]*domain.Property, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	return properties, nil
}

// Get retrieves a property by its ID.
func (r *PgPropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE id = $1`

	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

// Create inserts a new property and returns it with the generated id.
func (r *PgPropertyRepository) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	if p == nil {
		return nil, domain.NewValidationError("property", "property cannot be nil")
	}

	query := `
		INSERT INTO properties (address, price, bedrooms, bathrooms, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	created := p.Clone()
	err := r.db.QueryRow(ctx, query,
		created.Address, created.Price, created.Bedrooms, created.Bathrooms, created.Type,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return created, nil
}

// Update performs a read-modify-write on a property using SELECT FOR UPDATE.
//
// When the repository was built on a Transactor such as *database.DB, the
// read and write run in one transaction holding the row lock. Otherwise the
// DBTX is taken to be a transaction already.
func (r *PgPropertyRepository) Update(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error) {
	transactor, ok := r.db.(Transactor)
	if !ok {
		return r.updateInTx(ctx, id, fn)
	}

	var updated *domain.Property
	err := transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = NewPgPropertyRepository(tx).updateInTx(ctx, id, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// updateInTx performs the SELECT FOR UPDATE + UPDATE within the current DBTX.
func (r *PgPropertyRepository) updateInTx(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error) {
	selectQuery := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE id = $1
		FOR UPDATE`

	p, err := scanProperty(r.db.QueryRow(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.EntityProperty, domain.FormatID(id))
		}
		return nil, fmt.Errorf("failed to query property for update: %w", err)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.ID = id

	updateQuery := `
		UPDATE properties SET
			address = $1,
			price = $2,
			bedrooms = $3,
			bathrooms = $4,
			type = $5
		WHERE id = $6`

	_, err = r.db.Exec(ctx, updateQuery,
		p.Address, p.Price, p.Bedrooms, p.Bathrooms, p.Type,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return p, nil
}

// Delete removes a property and reports how many rows were affected.
func (r *PgPropertyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete property: %w", err)
	}
	return tag.RowsAffected(), nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(&p.ID, &p.Address, &p.Price, &p.Bedrooms, &p.Bathrooms, &p.Type); err != nil {
		return nil, err
	}
	return &p, nil
}
