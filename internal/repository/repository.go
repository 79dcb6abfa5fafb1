// Package repository provides data access interfaces and implementations
// for the property service.
//
// # Overview
//
// PropertyRepository is the narrow persistence contract the service layer
// depends on: find with filter, find by id, save, merge-and-save and delete
// by id. Several implementations are provided:
//
//   - PgPropertyRepository: PostgreSQL through pgx (the default store)
//   - GormPropertyRepository: MySQL through gorm
//   - MemoryPropertyRepository: process-local store for development and tests
//   - CachedPropertyRepository: read-through ccache decorator around any of the above
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Database errors are wrapped with context using fmt.Errorf and the %w verb.
//
//   - domain.ErrNotFound: the property does not exist
//   - domain.ErrInvalidInput: invalid parameters provided
//
// # Usage Pattern
//
//	db, _ := database.New(ctx, &cfg.Database, logger)
//	repo := repository.NewPgPropertyRepository(db)
//	svc := service.NewPropertyService(repo, metrics, logger)
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/property-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
//
// Repository implementations accept DBTX so the same code runs against a
// pool or inside a transaction:
//
//	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
//	    txRepo := repository.NewPgPropertyRepository(tx)
//	    _, err := txRepo.Create(ctx, p)
//	    return err
//	})
type DBTX = database.DBTX

// Transactor runs fn inside a transaction, committing when fn returns nil.
// *database.DB satisfies it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Page size defaults and limits. The list endpoint never returns more than
// MaxPageLimit records.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// applyPaginationDefaults normalizes limit and offset values for filter queries.
// It clamps limit to [1, MaxPageLimit] and ensures offset >= 0.
func applyPaginationDefaults(limit, offset *int) {
	if *limit <= 0 {
		*limit = DefaultPageLimit
	}
	if *limit > MaxPageLimit {
		*limit = MaxPageLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}
