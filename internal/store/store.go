// Package store opens the property repository selected by configuration.
//
// The server and the seed tool share this wiring so both see the same
// backend, migrations and cache decoration.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/helixir/property-service/internal/config"
	"github.com/helixir/property-service/internal/database"
	"github.com/helixir/property-service/internal/observability"
	"github.com/helixir/property-service/internal/repository"
	"github.com/helixir/property-service/internal/seed"
)

// HealthChecker reports backend health.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Store is an opened property backend.
type Store struct {
	// Properties is the repository, cache-wrapped when enabled.
	Properties repository.PropertyRepository
	// Health is nil for the memory backend.
	Health HealthChecker
	// Driver is the backend name.
	Driver string

	closers []func()
	logger  zerolog.Logger
}

// Open connects to the configured backend, applies schema changes when
// enabled and wraps the repository with the read cache when enabled.
// metrics may be nil.
func Open(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		Driver: cfg.Store.Driver,
		logger: logger.With().Str("component", "store").Logger(),
	}

	var err error
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		err = s.openPostgres(ctx, cfg)
	case config.DriverMySQL:
		err = s.openMySQL(ctx, cfg)
	case config.DriverMemory:
		err = s.openMemory(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Cache.Enabled {
		cached := repository.NewCachedPropertyRepository(s.Properties, repository.CacheConfig{
			TTL:     cfg.Cache.TTL,
			MaxSize: cfg.Cache.MaxSize,
		}, metrics)
		s.Properties = cached
		s.closers = append(s.closers, cached.Close)
		s.logger.Info().
			Dur("ttl", cfg.Cache.TTL).
			Int64("max_size", cfg.Cache.MaxSize).
			Msg("property read cache enabled")
	}

	s.logger.Info().Str("driver", s.Driver).Msg("property store ready")
	return s, nil
}

func (s *Store) openPostgres(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, &cfg.Database, s.logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	s.closers = append(s.closers, db.Close)

	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, s.logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				s.logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	s.Properties = repository.NewPgPropertyRepository(db)
	s.Health = db
	return nil
}

func (s *Store) openMySQL(ctx context.Context, cfg *config.Config) error {
	db, err := database.OpenMySQL(ctx, &cfg.MySQL, s.logger)
	if err != nil {
		return fmt.Errorf("connect to mysql: %w", err)
	}
	s.closers = append(s.closers, db.Close)

	repo := repository.NewGormPropertyRepository(db.Gorm())
	if cfg.MySQL.AutoMigrate {
		if err := repo.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("migrate mysql schema: %w", err)
		}
	}

	s.Properties = repo
	s.Health = db
	return nil
}

func (s *Store) openMemory(ctx context.Context, cfg *config.Config) error {
	repo := repository.NewMemoryPropertyRepository()
	if n := cfg.Store.SeedCount; n > 0 {
		if err := repo.Seed(ctx, seed.Properties(n, cfg.Store.SeedValue)); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
		s.logger.Info().Int("count", n).Msg("memory store seeded")
	}
	s.Properties = repo
	return nil
}

// Close releases backend resources in reverse order of acquisition.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
